// Package auth implements login, registration and cookie-style sessions.
//
// A session is two entries in a domain.SessionStore: "<id>:auth-token" holds
// the signed token and "<id>:user-data" holds the user as JSON. Both expire
// together after the configured session TTL.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"carrental/internal/config"
	"carrental/internal/domain"
	"carrental/internal/events"
	"carrental/internal/metrics"
	"carrental/internal/models"
	"carrental/internal/validation"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenKeySuffix = ":auth-token"
	userKeySuffix  = ":user-data"
)

// RateLimiter is the part of the draft repository used to throttle logins.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Claims are carried in every session token. The token id equals the session id.
type Claims struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	CustomerID int64  `json:"cid,omitempty"`
	jwt.RegisteredClaims
}

type LoginResult struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email_shape"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,min=6"`
}

type Options struct {
	Secret      []byte
	SessionTTL  time.Duration
	BcryptCost  int
	LoginLimit  int
	LoginWindow time.Duration
}

// OptionsFromConfig maps the auth config section to service options.
func OptionsFromConfig(cfg config.AuthConfig) Options {
	return Options{
		Secret:      []byte(cfg.JWTSecret),
		SessionTTL:  cfg.SessionTTL(),
		BcryptCost:  cfg.BcryptCost,
		LoginLimit:  cfg.LoginRateLimit,
		LoginWindow: cfg.LoginWindow(),
	}
}

type Service struct {
	users     domain.UserRepository
	customers domain.CustomerRepository
	sessions  domain.SessionStore
	limiter   RateLimiter
	publisher domain.EventPublisher
	validator *validation.Validator
	opts      Options
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewService(
	users domain.UserRepository,
	customers domain.CustomerRepository,
	sessions domain.SessionStore,
	limiter RateLimiter,
	publisher domain.EventPublisher,
	opts Options,
	logger *zerolog.Logger,
) *Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Duration(models.SessionTTL) * time.Second
	}
	if opts.LoginLimit == 0 {
		opts.LoginLimit = models.LoginRateLimit
	}
	if opts.LoginWindow <= 0 {
		opts.LoginWindow = time.Duration(models.LoginRateWindow) * time.Second
	}
	return &Service{
		users:     users,
		customers: customers,
		sessions:  sessions,
		limiter:   limiter,
		publisher: publisher,
		validator: validation.New(),
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Bootstrap makes sure every configured account exists as a user.
func (s *Service) Bootstrap(ctx context.Context, accounts []config.AccountConfig) error {
	for _, a := range accounts {
		_, err := s.users.GetUserByEmail(ctx, a.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("lookup account %s: %w", a.Email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), s.opts.BcryptCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", a.Email, err)
		}
		user := &models.User{
			Name:         a.Name,
			Email:        strings.ToLower(a.Email),
			Role:         a.Role,
			CustomerID:   a.CustomerID,
			PasswordHash: hash,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("create account %s: %w", a.Email, err)
		}
		s.logger.Debug().Str("email", user.Email).Str("role", user.Role).Msg("Account provisioned")
	}
	return nil
}

// Authenticate checks credentials. Every failure except throttling yields
// ErrAuth so callers cannot tell unknown emails from wrong passwords.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.limiter != nil {
		allowed, err := s.limiter.CheckRateLimit(ctx, "login:"+email, s.opts.LoginLimit, s.opts.LoginWindow)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login rate limit check failed")
		} else if !allowed {
			metrics.IncLogin("throttled")
			return nil, domain.ErrRateLimited
		}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncLogin("failure")
			return nil, domain.ErrAuth
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		metrics.IncLogin("failure")
		return nil, domain.ErrAuth
	}

	token, err := s.issueToken(user, uuid.NewString())
	if err != nil {
		return nil, err
	}
	metrics.IncLogin("success")
	return &LoginResult{Success: true, User: user, Token: token}, nil
}

// Register creates a user-role account and the matching customer record.
// An existing customer with the same email is linked instead of duplicated.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		verr := domain.NewValidationError()
		verr.Add("email", "is already registered")
		return nil, verr
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	customer, err := s.customers.GetCustomerByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		customer = &models.Customer{
			Name:   in.Name,
			Email:  in.Email,
			Phone:  in.Phone,
			Status: models.CustomerActive,
		}
		if err := s.customers.CreateCustomer(ctx, customer); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		Role:         models.RoleUser,
		CustomerID:   customer.ID,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.PublishJSON(events.EventCustomerRegistered, events.CustomerEventPayload{
			CustomerID: customer.ID,
			UserID:     user.ID,
			Name:       user.Name,
			Email:      user.Email,
		})
	}

	token, err := s.issueToken(user, uuid.NewString())
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Int64("customer_id", customer.ID).Msg("Customer registered")
	return &LoginResult{Success: true, User: user, Token: token}, nil
}

// Login authenticates and stores a new session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	res, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, res.User)
}

// RegisterAndLogin registers and opens a session for the new account.
func (s *Service) RegisterAndLogin(ctx context.Context, in RegisterInput) (*Session, error) {
	res, err := s.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, res.User)
}

func (s *Service) persist(ctx context.Context, user *models.User) (*Session, error) {
	sessionID := uuid.NewString()
	token, err := s.issueToken(user, sessionID)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("marshal user data: %w", err)
	}

	if err := s.sessions.Set(ctx, sessionID+tokenKeySuffix, token, s.opts.SessionTTL); err != nil {
		return nil, err
	}
	if err := s.sessions.Set(ctx, sessionID+userKeySuffix, string(data), s.opts.SessionTTL); err != nil {
		return nil, err
	}

	return &Session{
		ID:        sessionID,
		User:      user,
		Token:     token,
		ExpiresAt: s.now().Add(s.opts.SessionTTL),
	}, nil
}

// Restore loads the session with the given id. A missing, expired or
// tampered session yields an anonymous session, not an error.
func (s *Service) Restore(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return Anonymous(), nil
	}

	token, ok, err := s.sessions.Get(ctx, sessionID+tokenKeySuffix)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Anonymous(), nil
	}
	raw, ok, err := s.sessions.Get(ctx, sessionID+userKeySuffix)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Anonymous(), nil
	}

	claims, err := s.ParseToken(token)
	if err != nil || claims.ID != sessionID {
		s.logger.Debug().Err(err).Str("session_id", sessionID).Msg("Discarding invalid session")
		_ = s.sessions.Delete(ctx, sessionID+tokenKeySuffix, sessionID+userKeySuffix)
		return Anonymous(), nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || strconv.FormatInt(user.ID, 10) != claims.Subject {
		_ = s.sessions.Delete(ctx, sessionID+tokenKeySuffix, sessionID+userKeySuffix)
		return Anonymous(), nil
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return &Session{ID: sessionID, User: &user, Token: token, ExpiresAt: expires}, nil
}

// RestoreToken resolves a bearer token to its session. The token must still
// be the one stored for that session, so logging out revokes it.
func (s *Service) RestoreToken(ctx context.Context, token string) (*Session, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return Anonymous(), nil
	}
	sess, err := s.Restore(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if sess.Token != token {
		return Anonymous(), nil
	}
	return sess, nil
}

// Logout removes both session entries.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID+tokenKeySuffix, sessionID+userKeySuffix)
}

func (s *Service) issueToken(user *models.User, tokenID string) (string, error) {
	now := s.now()
	claims := Claims{
		Email:      user.Email,
		Role:       user.Role,
		CustomerID: user.CustomerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.SessionTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry of a session token.
func (s *Service) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.opts.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}
