package main

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/availcap/libs/config"
	"github.com/md-rashed-zaman/availcap/libs/db"
	"github.com/md-rashed-zaman/availcap/libs/httpx"
	"github.com/md-rashed-zaman/availcap/libs/kafkax"
	otelx "github.com/md-rashed-zaman/availcap/libs/otel"
	"github.com/md-rashed-zaman/availcap/libs/runtime"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/audit"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/evaluation"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/events"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/grpcserver"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/handlers"
)

func main() {
	service := config.String("SERVICE_NAME", "availability-service")
	port, err := config.Port("PORT", "8085")
	if err != nil {
		panic(err)
	}
	grpcPort, err := config.Port("GRPC_PORT", "9095")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service, config.String("LOG_LEVEL", "info"))

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	var (
		checks []runtime.ReadyCheck
		opts   []evaluation.Option
		lister handlers.EvaluationLister
	)

	if dbURL := strings.TrimSpace(config.String("DATABASE_URL", "")); dbURL != "" {
		pool, err := db.Open(ctx, dbURL, db.OptionsFromEnv())
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()

		repo := audit.NewRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("audit schema setup failed", "err", err)
			panic(err)
		}
		opts = append(opts, evaluation.WithRecorder(repo))
		lister = repo
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
		logger.Info("evaluation audit enabled")
	} else {
		logger.Warn("evaluation audit disabled (DATABASE_URL not set)")
	}

	brokers := config.String("KAFKA_BROKERS", "")
	publisher := events.NewPublisher(logger, events.PublisherConfig{
		Brokers: brokers,
		Topic:   config.String("KAFKA_CONFIRMED_TOPIC", events.DefaultTopic),
	})
	defer func() { _ = publisher.Close() }()
	if publisher.Enabled() {
		opts = append(opts, evaluation.WithPublisher(publisher))
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	limitPerMinute := config.PositiveInt("RATE_LIMIT_PER_MINUTE", 120)
	var rateLimitMW httpx.Middleware
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.PositiveInt("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl:availability"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rateLimitMW = httpx.NewRateLimiter(limitPerMinute, time.Minute).Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	svc := evaluation.NewService(logger, opts...)

	mux := runtime.NewBaseMuxWithReady(checks...)
	api := http.NewServeMux()
	handlers.New(svc, lister, logger).Register(api)
	mux.Handle("/api/", httpx.Chain(api,
		httpx.WithBodyLimit(int64(config.PositiveInt("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 10*time.Second)),
		rateLimitMW,
	))

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods:   config.List("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders:   config.List("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-Id,X-Business-Id"),
			AllowCredentials: config.Bool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           config.Seconds("CORS_MAX_AGE_SECONDS", 10*time.Minute),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
	)
	handler = otelhttp.NewHandler(handler, "availability")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	lis, err := net.Listen("tcp", ":"+grpcPort)
	if err != nil {
		logger.Error("grpc listen failed", "err", err)
		panic(err)
	}
	grpcSrv := grpcserver.NewServer(svc, logger)
	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	grpcSrv.GracefulStop()
	logger.Info("servers stopped")
}
