package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"coopreg/internal/application/handler"
	"coopreg/internal/application/service"
	"coopreg/internal/application/store"
	"coopreg/internal/application/verifier"
	jwttoken "coopreg/internal/jwt_token"
	"coopreg/internal/platform/config"
	"coopreg/internal/platform/httpserver"
	"coopreg/internal/platform/metrics"
	"coopreg/internal/platform/postgres"
	"coopreg/internal/platform/redis"
	ratelimit "coopreg/internal/ratelimit/middleware"
	rlmodels "coopreg/internal/ratelimit/models"
	"coopreg/internal/ratelimit/store/bucket"
	"coopreg/pkg/platform/audit"
	kafkapublisher "coopreg/pkg/platform/audit/publishers/kafka"
	logpublisher "coopreg/pkg/platform/audit/publishers/logger"
	outboxmemory "coopreg/pkg/platform/audit/store/memory"
	outboxpostgres "coopreg/pkg/platform/audit/store/postgres"
	"coopreg/pkg/platform/audit/worker"
	"coopreg/pkg/platform/circuit"
	"coopreg/pkg/platform/httputil"
	authmw "coopreg/pkg/platform/middleware/auth"
	"coopreg/pkg/platform/middleware/metadata"
	"coopreg/pkg/platform/middleware/request"
	"coopreg/pkg/platform/middleware/requesttime"
)

// infra holds the optional backing services. Nil fields mean the in-process
// implementation is in use.
type infra struct {
	db    *sql.DB
	redis *redis.Client
}

func (i *infra) close(logger *slog.Logger) {
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			logger.Warn("closing database", "error", err)
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			logger.Warn("closing redis", "error", err)
		}
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.UsesDevSigningKey() {
		logger.Warn("using the development JWT signing key")
	}
	m := metrics.New()

	var deps infra
	defer deps.close(logger)

	st, relayer, err := buildStore(ctx, cfg, logger, &deps)
	if err != nil {
		return err
	}
	limiter, err := buildRateLimiter(ctx, cfg, logger, m, &deps)
	if err != nil {
		return err
	}
	publisher, err := buildPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	docVerifier, err := verifier.New(cfg.Workflow.DocumentVerifier, cfg.Workflow.VerifierHTTPTimeout, logger)
	if err != nil {
		return err
	}
	svc := service.New(st,
		service.WithVerifier(docVerifier),
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithBulkConcurrency(cfg.Workflow.BulkAssignConcurrency),
	)
	tokens := jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer))

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(logger, m.ObserveHTTP))
	r.Use(requesttime.Middleware)
	r.Use(request.Timeout(cfg.Server.RequestTimeout))
	r.Get("/healthz", healthHandler(&deps))
	r.Handle("/metrics", m.Handler())
	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(authmw.RequireAuth(tokens, logger))
		r.Use(limiter.ByMethod())
		handler.New(svc, logger).Register(r)
	})

	relay := worker.NewWorker(relayer, publisher,
		worker.WithInterval(cfg.Outbox.PollInterval),
		worker.WithBatchSize(cfg.Outbox.BatchSize),
		worker.WithRetention(cfg.Outbox.Retention),
		worker.WithLogger(logger),
		worker.WithMetrics(m),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, httpserver.New(cfg.Server.Addr, r), cfg.Server.ShutdownTimeout, logger)
	})
	g.Go(func() error {
		return relay.Run(gctx)
	})
	logger.Info("coopreg started",
		"addr", cfg.Server.Addr,
		"postgres", deps.db != nil,
		"redis", deps.redis != nil,
		"kafka", len(cfg.Kafka.Brokers) > 0,
		"document_verifier", cfg.Workflow.DocumentVerifier,
	)
	return g.Wait()
}

// buildStore returns the application store and the outbox relayer that
// shares its unit of work.
func buildStore(ctx context.Context, cfg config.Config, logger *slog.Logger, deps *infra) (service.Store, audit.Relayer, error) {
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set; applications are kept in memory")
		outbox := outboxmemory.NewInMemoryStore()
		return store.NewInMemory(store.WithMemoryOutbox(outbox)), outbox, nil
	}
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	deps.db = db
	if err := postgres.Migrate(ctx, db, logger); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	outbox := outboxpostgres.New(db)
	return store.NewPostgres(db, store.WithPostgresOutbox(outbox)), outbox, nil
}

func buildRateLimiter(ctx context.Context, cfg config.Config, logger *slog.Logger, m *metrics.Metrics, deps *infra) (*ratelimit.Middleware, error) {
	limit, err := rlmodels.NewLimit(cfg.RateLimit.PerMinute, time.Minute)
	if err != nil {
		return nil, err
	}
	fallback := bucket.NewInMemoryBucketStore()
	var primary ratelimit.Limiter = fallback

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client != nil {
		deps.redis = client
		primary = bucket.NewRedisBucketStore(client.Client)
	}
	checker := ratelimit.NewResilientLimiter(primary, fallback,
		circuit.New("ratelimit-redis", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(2)),
		logger,
	)
	return ratelimit.New(checker, logger,
		ratelimit.WithLimit(rlmodels.ClassRead, limit),
		ratelimit.WithLimit(rlmodels.ClassWrite, limit),
		ratelimit.WithMetrics(m),
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
	), nil
}

func buildPublisher(ctx context.Context, cfg config.Config, logger *slog.Logger) (audit.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return logpublisher.New(logger), nil
	}
	return kafkapublisher.New(ctx, kafkapublisher.Config{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		Partitions:  3,
		EnsureTopic: cfg.Kafka.EnsureTopic,
	}, logger)
}

func healthHandler(deps *infra) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := map[string]string{}
		healthy := true
		if deps.db != nil {
			checks["postgres"] = "ok"
			if err := postgres.Health(ctx, deps.db); err != nil {
				checks["postgres"] = err.Error()
				healthy = false
			}
		}
		if deps.redis != nil {
			checks["redis"] = "ok"
			if err := deps.redis.Health(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			}
		}
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, map[string]any{"healthy": healthy, "checks": checks})
	}
}
