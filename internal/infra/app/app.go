package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/JorgeDuranS/AppSegura/internal/core/port"
	"github.com/JorgeDuranS/AppSegura/internal/infra/config"
	"github.com/JorgeDuranS/AppSegura/internal/infra/database"
	kafkainfra "github.com/JorgeDuranS/AppSegura/internal/infra/kafka"
	"github.com/JorgeDuranS/AppSegura/internal/infra/logger"
	redisinfra "github.com/JorgeDuranS/AppSegura/internal/infra/redis"
	"github.com/JorgeDuranS/AppSegura/internal/infra/security"
	"github.com/JorgeDuranS/AppSegura/internal/infra/telemetry"
	"github.com/JorgeDuranS/AppSegura/internal/repository/memory"
	postgresrepo "github.com/JorgeDuranS/AppSegura/internal/repository/postgres"
	redisrepo "github.com/JorgeDuranS/AppSegura/internal/repository/redis"
	"github.com/JorgeDuranS/AppSegura/internal/transport/http/middleware"
	"github.com/JorgeDuranS/AppSegura/internal/transport/http/routes"
	"github.com/JorgeDuranS/AppSegura/internal/usecase"
)

// Application owns every long-lived resource. There is no package-level
// state; construct one with New and tear it down by returning from Run.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := telemetry.Attach(cfg, nil); err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	// The key file must be usable before anything is served; refusing to
	// start beats serving data nobody can decrypt.
	cipher, err := security.LoadKeyfile(cfg.Encryption.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load encryption key: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, cfg.Postgres, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	sessionStore := redisrepo.NewSessionStore(redisClient.Client(), cfg.Redis.SessionPrefix, cfg.Session.TTL)
	loginLimiter := memory.NewRateLimitStore()
	registerLimiter := memory.NewRateLimitStore()

	var audit port.AuditPublisher
	var kafkaProducer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			audit = kafkainfra.NewStubPublisher(log)
		} else {
			kafkaProducer = producer
			audit = kafkainfra.NewAuditPublisher(producer, cfg.App, log)
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		audit = kafkainfra.NewStubPublisher(log)
	}

	authService := usecase.NewAuthService(
		repos.Users,
		sessionStore,
		loginLimiter,
		audit,
		log,
		cfg.RateLimit.WindowDuration,
		cfg.RateLimit.LoginMaxAttempts,
		cfg.Session.TTL,
	)
	registrationService := usecase.NewRegistrationService(
		repos.Users,
		security.DefaultPasswordValidator(),
		audit,
		log,
	)
	vaultService := usecase.NewVaultService(repos.Data, cipher, audit, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: middleware.NewRateLimiter(registerLimiter, log),
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Vault:        vaultService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		kafka:  kafkaProducer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.kafka != nil {
			if err := a.kafka.Close(); err != nil {
				a.logger.Warn("failed to close kafka producer", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting AppSegura",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
