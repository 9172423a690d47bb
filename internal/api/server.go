// Package api exposes the catalog, auth, booking wizard and admin back office
// over HTTP/JSON.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"carrental/internal/auth"
	"carrental/internal/config"
	"carrental/internal/service"
	"carrental/internal/validation"
	"carrental/internal/wizard"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Services are the collaborators the handlers call into.
type Services struct {
	Cars      *service.CarService
	Bookings  *service.BookingService
	Customers *service.CustomerService
	Auth      *auth.Service
	Wizard    *wizard.Machine
}

// HTTPServer serves the public and admin API.
type HTTPServer struct {
	cfg       config.APIConfig
	authCfg   config.AuthConfig
	svc       Services
	limiter   *rateLimiter
	validator *validation.Validator
	logger    *zerolog.Logger
	now       func() time.Time

	engine *gin.Engine
	server *http.Server
}

func NewHTTPServer(cfg config.APIConfig, authCfg config.AuthConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		cfg:       cfg,
		authCfg:   authCfg,
		svc:       svc,
		limiter:   newRateLimiter(cfg.RateLimit),
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
	s.engine = s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog(), corsMiddleware(s.cfg.CORS), s.rateLimit(), s.sessionMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	v1.GET("/cars", s.listCars)
	v1.GET("/cars/featured", s.featuredCars)
	v1.GET("/cars/options", s.carOptions)
	v1.GET("/cars/:id", s.getCar)
	v1.GET("/cars/:id/related", s.relatedCars)
	v1.GET("/services", s.listServices)
	v1.POST("/quote", s.quote)

	authGroup := v1.Group("/auth")
	authGroup.POST("/login", s.login)
	authGroup.POST("/register", s.register)
	authGroup.POST("/logout", s.logout)
	authGroup.GET("/me", requireLogin(), s.me)

	wz := v1.Group("/wizard")
	wz.POST("", s.startWizard)
	wz.GET("/:id", s.getWizard)
	wz.POST("/:id/dates", s.submitDates)
	wz.POST("/:id/services", s.toggleService)
	wz.POST("/:id/customer", s.submitCustomer)
	wz.POST("/:id/payment", s.submitPayment)
	wz.POST("/:id/back", s.wizardBack)
	wz.DELETE("/:id", s.abandonWizard)

	v1.GET("/me/bookings", requireLogin(), s.myBookings)

	admin := v1.Group("/admin", requireAdmin())
	admin.GET("/bookings", s.adminBookings)
	admin.PATCH("/bookings/:id/status", s.adminBookingStatus)
	admin.GET("/customers", s.adminCustomers)
	admin.PATCH("/customers/:id/status", s.adminCustomerStatus)
	admin.POST("/cars", s.adminCreateCar)
	admin.PUT("/cars/:id", s.adminUpdateCar)
	admin.DELETE("/cars/:id", s.adminDeleteCar)
	admin.GET("/stats", s.adminStats)
	admin.GET("/export", s.adminExport)

	return r
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
