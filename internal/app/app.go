package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/r4nb1r/ProfilePulse/internal/auth"
	"github.com/r4nb1r/ProfilePulse/internal/config"
	"github.com/r4nb1r/ProfilePulse/internal/event"
	"github.com/r4nb1r/ProfilePulse/internal/gateway"
	handler "github.com/r4nb1r/ProfilePulse/internal/handler/http"
	"github.com/r4nb1r/ProfilePulse/internal/repository"
	"github.com/r4nb1r/ProfilePulse/internal/repository/memory"
	"github.com/r4nb1r/ProfilePulse/internal/repository/postgres"
	redisrepo "github.com/r4nb1r/ProfilePulse/internal/repository/redis"
	"github.com/r4nb1r/ProfilePulse/internal/service"
	"github.com/r4nb1r/ProfilePulse/migrations"
	"github.com/r4nb1r/ProfilePulse/pkg/database"
	"github.com/r4nb1r/ProfilePulse/pkg/health"
	"github.com/r4nb1r/ProfilePulse/pkg/httpclient"
	pkgkafka "github.com/r4nb1r/ProfilePulse/pkg/kafka"
	"github.com/r4nb1r/ProfilePulse/pkg/middleware"
	"github.com/r4nb1r/ProfilePulse/pkg/tracing"
)

const serviceVersion = "0.1.0"

// App wires together all dependencies and runs the service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	profiles       *service.ProfileService
	httpServer     *http.Server
	tracerShutdown func(context.Context) error

	// Background workers (session pruning).
	workers      sync.WaitGroup
	stopWorkers  context.CancelFunc
	startWorkers func(ctx context.Context)
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    config.ServiceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	profileRepo, userRepo, err := a.initStore(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	sessionRepo, err := a.initSessions(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	// Events.
	var events service.EventPublisher = event.Noop{}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(a.producer, logger)
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return a.producer.Ping(ctx)
		})
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// OAuth and the listing gateway.
	oauth := auth.NewOAuthProvider(auth.OAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		AuthURL:      cfg.GoogleAuthURL,
		TokenURL:     cfg.GoogleTokenURL,
	}, &http.Client{Timeout: cfg.GatewayTimeout})

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.GatewayTimeout
	httpCfg.MaxRetries = cfg.GatewayMaxRetries
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("business-profile"),
		logger,
	)
	listing := gateway.NewClient(gateway.ClientConfig{
		AccountsURL: cfg.GBPAccountsURL,
		InfoURL:     cfg.GBPInfoURL,
	}, breaker, oauth, logger)
	gw := gateway.NewResilient(listing, cfg.Mode(), cfg.GatewayTimeout, logger)
	logger.Info("listing gateway configured", slog.String("mode", string(gw.Mode())))

	// Build the dependency graph.
	signer := auth.NewTokenSigner(cfg.SessionSecret)
	userService := service.NewUserService(userRepo, logger)
	if _, err := userService.EnsureUser(ctx, cfg.DemoUsername, cfg.DemoPassword); err != nil {
		a.closeResources()
		return nil, fmt.Errorf("seed account %q: %w", cfg.DemoUsername, err)
	}

	authService := service.NewAuthService(sessionRepo, userRepo, oauth, signer, service.AuthServiceConfig{
		SessionTTL:   cfg.SessionTTL,
		DemoUsername: cfg.DemoUsername,
	}, logger)
	a.profiles = service.NewProfileService(profileRepo, gw, events, service.ProfileServiceConfig{
		Async:   cfg.OrchestrationAsync,
		Timeout: cfg.OrchestrationTimeout,
	}, logger)

	// HTTP router.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	router := handler.NewRouter(a.profiles, authService, signer, healthHandler, logger, handler.RouterConfig{
		ServiceName: config.ServiceName,
		CORS:        cors,
		Cookie: handler.CookieConfig{
			Name:   cfg.SessionCookieName,
			TTL:    cfg.SessionTTL,
			Secure: cfg.SecureCookies(),
		},
		AuthSuccessRedirect: cfg.AuthSuccessRedirect,
		RateLimitRPS:        cfg.RateLimitRPS,
		RateLimitBurst:      cfg.RateLimitBurst,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.GatewayTimeout*2 + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// initStore selects the profile and user store.
func (a *App) initStore(ctx context.Context, hh *health.Handler) (repository.ProfileRepository, repository.UserRepository, error) {
	if a.cfg.StoreDriver != config.DriverPostgres {
		a.logger.Info("using in-memory profile store")
		return memory.NewProfileRepository(), memory.NewUserRepository(), nil
	}

	pool, err := database.NewPostgresPool(ctx, a.cfg.Postgres(), a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", a.cfg.PostgresHost),
		slog.Int("port", a.cfg.PostgresPort),
		slog.String("database", a.cfg.PostgresDB),
	)

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, config.ServiceName); err != nil {
		return nil, nil, fmt.Errorf("register pool metrics: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
		return nil, nil, err
	}
	a.logger.Info("database migrations completed")

	if a.cfg.DBSlowQueryLimit > 0 {
		database.SetSlowQueryLogging(a.cfg.DBSlowQueryLimit, a.logger)
	}

	hh.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	return postgres.NewProfileRepository(pool), postgres.NewUserRepository(pool), nil
}

// initSessions selects the session store and registers the pruning worker
// for the in-memory one.
func (a *App) initSessions(ctx context.Context, hh *health.Handler) (repository.SessionRepository, error) {
	if a.cfg.SessionStore != config.DriverRedis {
		sessions := memory.NewSessionRepository()
		a.startWorkers = func(ctx context.Context) {
			a.workers.Add(1)
			go func() {
				defer a.workers.Done()
				sessions.Run(ctx, a.cfg.SessionPruneInterval, a.logger)
			}()
		}
		return sessions, nil
	}

	client, err := database.NewRedisClient(ctx, a.cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = client
	a.logger.Info("connected to Redis", slog.String("addr", a.cfg.Redis().Addr()))

	hh.RegisterCritical("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return redisrepo.NewSessionRepository(client, a.cfg.SessionTTL), nil
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and background workers and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stop := context.WithCancel(context.Background())
	a.stopWorkers = stop
	if a.startWorkers != nil {
		a.startWorkers(workerCtx)
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight requests)
// 2. Background orchestrations and workers
// 3. Tracer (flush pending spans)
// 4. Kafka producer
// 5. Redis client and PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.HTTPShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.profiles.Wait()
	if a.stopWorkers != nil {
		a.stopWorkers()
	}
	a.workers.Wait()

	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases the tracer and every client that was opened.
func (a *App) closeResources() error {
	var errs []error

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	return errors.Join(errs...)
}
