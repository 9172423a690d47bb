package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carrental/internal/api"
	"carrental/internal/auth"
	"carrental/internal/config"
	"carrental/internal/domain"
	"carrental/internal/events"
	"carrental/internal/export"
	"carrental/internal/logging"
	"carrental/internal/metrics"
	"carrental/internal/repository"
	"carrental/internal/service"
	"carrental/internal/wizard"
	"carrental/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

// stateStores are the expiring stores behind wizard drafts and sessions.
type stateStores struct {
	drafts      domain.DraftRepository
	sessions    domain.SessionStore
	sweepers    map[string]worker.Sweeper
	redisClient *redis.Client
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := initStore(cfg, logger)
	if err != nil {
		return err
	}

	state := initStateStores(ctx, cfg, logger)
	if state.redisClient != nil {
		defer (func() { _ = repository.Close(state.redisClient) })()
	}

	bus := events.NewEventBus(logging.Component(logger, "events"))
	eventLog := events.LogHandler(logging.Component(logger, "events"))
	for _, t := range []string{events.EventBookingCreated, events.EventBookingStatusChanged, events.EventCustomerRegistered} {
		bus.Subscribe(t, eventLog)
	}

	authSvc := auth.NewService(store, store, state.sessions, state.drafts, bus, auth.OptionsFromConfig(cfg.Auth), logging.Component(logger, "auth"))
	if err := authSvc.Bootstrap(ctx, cfg.Auth.Accounts); err != nil {
		return fmt.Errorf("provision accounts: %w", err)
	}

	cars := service.NewCarService(store, cfg.Catalog, logging.Component(logger, "cars"))
	bookings := service.NewBookingService(store, bus, logging.Component(logger, "bookings"))
	customers := service.NewCustomerService(store, logging.Component(logger, "customers"))
	machine := wizard.NewMachine(
		state.drafts,
		cars,
		bookings,
		wizard.NewSimulatedPaymentProcessor(cfg.Payment.Delay()),
		logging.Component(logger, "wizard"),
	)

	janitor, err := initJanitor(cfg, state, bookings, logger)
	if err != nil {
		return err
	}
	janitor.Start()
	defer (func() { _ = janitor.Stop() })()

	startMetrics(ctx, cfg, logger)

	httpServer := api.NewHTTPServer(cfg.API, cfg.Auth, api.Services{
		Cars:      cars,
		Bookings:  bookings,
		Customers: customers,
		Auth:      authSvc,
		Wizard:    machine,
	}, logging.Component(logger, "http"))

	return serve(ctx, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(baseLogger, "api-main"), closer, nil
}

func initStore(cfg *config.Config, logger *zerolog.Logger) (*repository.MemoryStore, error) {
	store := repository.NewMemoryStore(cfg.Store.Latency())
	if !cfg.Store.SeedEnabled() {
		logger.Info().Msg("store starts empty")
		return store, nil
	}

	seed := repository.DefaultSeed(time.Now())
	if path := cfg.Store.FleetFile; path != "" {
		fleet, err := repository.LoadFleet(path)
		if err != nil {
			logger.Error().Err(err).Str("fleet_file", path).Msg("load fleet")
			return nil, err
		}
		seed = seed.WithFleet(fleet)
	}
	store.Seed(seed)

	logger.Info().
		Int("cars", len(seed.Cars)).
		Int("customers", len(seed.Customers)).
		Int("bookings", len(seed.Bookings)).
		Msg("store seeded")
	return store, nil
}

// initStateStores prefers redis and falls back to process memory when redis
// is disabled or unreachable.
func initStateStores(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) stateStores {
	memDrafts := repository.NewMemoryDraftRepository(cfg.Wizard.DraftTTL())
	memSessions := repository.NewMemorySessionStore()
	state := stateStores{
		drafts:   memDrafts,
		sessions: memSessions,
		sweepers: map[string]worker.Sweeper{"draft-sweep": memDrafts, "session-sweep": memSessions},
	}
	if !cfg.Redis.Enabled {
		return state
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = client.Close()
		return state
	}
	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")

	state.redisClient = client
	state.drafts = repository.NewFailoverDraftRepository(
		repository.NewRedisDraftRepository(client, cfg.Wizard.DraftTTL()),
		memDrafts,
		logging.Component(logger, "drafts"),
	)
	state.sessions = repository.NewRedisSessionStore(client)
	delete(state.sweepers, "session-sweep")
	return state
}

func initJanitor(cfg *config.Config, state stateStores, bookings *service.BookingService, logger *zerolog.Logger) (*worker.Janitor, error) {
	janitor, err := worker.NewJanitor(logging.Component(logger, "janitor"))
	if err != nil {
		return nil, err
	}
	for name, sw := range state.sweepers {
		if err := janitor.AddSweep(name, cfg.Wizard.SweepEvery(), sw); err != nil {
			return nil, err
		}
	}

	if every := cfg.Exports.Interval(); every > 0 {
		dir := cfg.Exports.Path
		err := janitor.AddJob("bookings-export", every, func(ctx context.Context) error {
			all, err := bookings.GetAllBookings(ctx)
			if err != nil {
				return err
			}
			path, err := export.SaveBookings(dir, all, time.Now())
			if err != nil {
				return err
			}
			logger.Info().Str("path", path).Int("bookings", len(all)).Msg("bookings exported")
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return janitor, nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.API.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
