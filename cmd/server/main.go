package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	adminsvc "marketgate/internal/admission/admin"
	admissionconfig "marketgate/internal/admission/config"
	"marketgate/internal/admission/controller"
	adminhandler "marketgate/internal/admission/handler"
	"marketgate/internal/admission/metrics"
	"marketgate/internal/admission/middleware"
	"marketgate/internal/admission/observability"
	"marketgate/internal/admission/store/attempts"
	"marketgate/internal/admission/store/blocklist"
	"marketgate/internal/admission/store/resilient"
	"marketgate/internal/admission/store/window"
	"marketgate/internal/admission/workers/sweeper"
	"marketgate/internal/auth/login"
	"marketgate/internal/platform/config"
	"marketgate/internal/platform/database"
	"marketgate/internal/platform/health"
	"marketgate/internal/platform/kafka/producer"
	"marketgate/internal/platform/logger"
	"marketgate/internal/platform/redis"
	httptransport "marketgate/internal/transport/http"
	"marketgate/migrations"
	"marketgate/pkg/platform/middleware/metadata"
	request "marketgate/pkg/platform/middleware/request"
	"marketgate/pkg/requestcontext"
)

const poolStatsInterval = 15 * time.Second

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// infra holds the optional backends selected by configuration.
type infra struct {
	redis    *redis.Client
	db       *database.Pool
	producer *producer.Producer
}

func (i *infra) close(log *slog.Logger) {
	if i.producer != nil {
		if err := i.producer.Close(5 * time.Second); err != nil {
			log.Warn("failed to close kafka producer", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("failed to close redis", "error", err)
		}
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	log.Info("initializing marketgate",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"redis", cfg.Redis.URL != "",
		"database", cfg.Database.URL != "",
		"kafka", cfg.Kafka.Brokers != "",
	)

	backends, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.close(log)

	trustedProxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	admissionMetrics := metrics.New()
	healthHandler := health.New(cfg.Environment)
	sweeps := sweeper.New(
		sweeper.WithLogger(log),
		sweeper.WithInterval(cfg.Sweeper.Interval),
		sweeper.WithMetrics(admissionMetrics),
	)

	deps := controller.Deps{
		Logger:  log,
		Metrics: admissionMetrics,
	}
	if cfg.Throttle.Enabled {
		deps.Throttle = middleware.NewThrottle(cfg.Throttle.RPS, cfg.Throttle.Burst)
	}

	// Memory stores serve alone without Redis, and as the breaker fallback with it.
	localAttempts := attempts.New(attempts.WithIdleTTL(cfg.Sweeper.IdleTTL))
	localWindows := window.New()
	sweeps.Register("attempts", localAttempts)
	sweeps.Register("windows", localWindows)
	deps.AttemptStore = localAttempts
	deps.WindowStore = localWindows

	if backends.redis != nil {
		storeOpts := []resilient.Option{resilient.WithLogger(log)}
		if deps.AttemptStore, err = resilient.NewAttemptStore(
			attempts.NewRedis(backends.redis.Client, cfg.Redis.RecordTTL), localAttempts, storeOpts...,
		); err != nil {
			return err
		}
		if deps.WindowStore, err = resilient.NewWindowStore(
			window.NewRedis(backends.redis.Client), localWindows, storeOpts...,
		); err != nil {
			return err
		}
		healthHandler.RegisterCheck("redis", backends.redis.Health)
	}

	var blocked adminsvc.BlocklistStore
	if backends.db != nil {
		pg := blocklist.NewPostgres(backends.db.DB())
		sweeps.Register("blocklist", sweeper.SweepFunc(func(ctx context.Context, now time.Time) (int, error) {
			return pg.PurgeExpired(requestcontext.WithTime(ctx, now))
		}))
		healthHandler.RegisterCheck("postgres", backends.db.Health)
		deps.Blocklist = pg
		blocked = pg
	} else {
		mem := blocklist.New()
		deps.Blocklist = mem
		blocked = mem
	}

	var publisher *observability.KafkaPublisher
	if backends.producer != nil {
		publisher, err = observability.NewKafkaPublisher(backends.producer, cfg.Kafka.Topic,
			observability.WithKafkaLogger(log),
		)
		if err != nil {
			return err
		}
		deps.AuditPublisher = publisher
		healthHandler.RegisterCheck("kafka", backends.producer.Healthy)
	}

	ctrl, err := controller.New(deps, admissionconfig.DefaultConfig(), middleware.SecurityConfig{
		APIOrigin:   cfg.APIOrigin,
		Production:  cfg.IsProduction(),
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		return err
	}

	credentials, err := login.NewCredentialStore()
	if err != nil {
		return err
	}

	routerDeps := httptransport.Deps{
		Controller:     ctrl,
		Login:          login.New(credentials, log),
		Health:         healthHandler,
		Metrics:        promhttp.Handler(),
		RequestMetrics: request.NewMetrics(prometheus.DefaultRegisterer),
		RequestTimeout: cfg.RequestTimeout,
		AdminToken:     cfg.AdminAPIToken,
		TrustedProxies: trustedProxies,
		Logger:         log,
	}
	if cfg.BusinessUpstream != "" {
		if routerDeps.Upstream, err = httptransport.NewUpstream(cfg.BusinessUpstream, log); err != nil {
			return err
		}
	}
	if cfg.AdminAPIToken != "" {
		adminOpts := []adminsvc.Option{adminsvc.WithLogger(log)}
		if publisher != nil {
			adminOpts = append(adminOpts, adminsvc.WithAuditPublisher(publisher))
		}
		admins, err := adminsvc.New(blocked, ctrl.Lockout(), ctrl, adminOpts...)
		if err != nil {
			return err
		}
		routerDeps.Admin = adminhandler.New(admins, log)
	} else {
		log.Info("admin api disabled, ADMIN_API_TOKEN not set")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httptransport.NewRouter(routerDeps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return sweeps.Start(gctx)
	})
	if backends.redis != nil {
		g.Go(func() error {
			return backends.redis.RunPoolStats(gctx, poolStatsInterval)
		})
	}
	if publisher != nil {
		g.Go(func() error {
			return publisher.Run(gctx)
		})
	}

	return g.Wait()
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	backends := &infra{}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	backends.redis = client

	if cfg.Database.URL != "" {
		pool, err := database.New(ctx, cfg.Database)
		if err != nil {
			backends.close(log)
			return nil, fmt.Errorf("connect database: %w", err)
		}
		backends.db = pool
		if err := pool.Migrate(ctx, migrations.FS); err != nil {
			backends.close(log)
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	if cfg.Kafka.Brokers != "" {
		prod, err := producer.New(producer.Config{
			Brokers:         cfg.Kafka.Brokers,
			Acks:            cfg.Kafka.Acks,
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			backends.close(log)
			return nil, fmt.Errorf("connect kafka: %w", err)
		}
		backends.producer = prod
	}

	return backends, nil
}
