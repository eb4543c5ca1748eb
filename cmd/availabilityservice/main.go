package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
	"github.com/AliEdi10/artinbooking-sub001/internal/availability/engine"
	availhandler "github.com/AliEdi10/artinbooking-sub001/internal/availability/handler"
	"github.com/AliEdi10/artinbooking-sub001/internal/availability/hold"
	"github.com/AliEdi10/artinbooking-sub001/internal/availability/repository"
	availservice "github.com/AliEdi10/artinbooking-sub001/internal/availability/service"
	outboxworker "github.com/AliEdi10/artinbooking-sub001/internal/outbox"
	"github.com/AliEdi10/artinbooking-sub001/internal/travel"
	"github.com/AliEdi10/artinbooking-sub001/pkg/events"
	"github.com/AliEdi10/artinbooking-sub001/pkg/observability"
)

type appConfig struct {
	HTTPAddr       string
	PostgresDSN    string
	RedisAddr      string
	NATSURL        string
	JWTSecret      string
	RoutingURL     string
	TravelSpeedKPH float64
	TravelCacheTTL time.Duration
	OutboxPoll     time.Duration
	OutboxBatch    int
	OutboxRetry    int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := observability.SetupLogger("availability-service")
	defer logger.Sync() //nolint:errcheck

	shutdown, err := observability.SetupTracer(ctx, "availability-service")
	if err != nil {
		logger.Warn("tracer setup failed", zap.Error(err))
	} else {
		defer shutdown(context.Background())
	}

	cfg := loadConfig()

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("postgres connect", zap.Error(err))
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("postgres ping", zap.Error(err))
		}
		defer db.Close()
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis ping", zap.Error(err))
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		if conn, err := nats.Connect(cfg.NATSURL, nats.Name("availabilityservice")); err == nil {
			natsConn = conn
			defer conn.Drain()
		} else {
			logger.Warn("nats connection failed", zap.Error(err))
		}
	}

	calculator := buildTravelCalculator(redisClient, logger, cfg)
	eng := engine.New(calculator, logger.Named("engine"))

	repo := repository.NewMemoryRepository()
	seedDemoData(repo, logger)

	holds := buildHoldStore(redisClient)
	publisher := events.NewPublisher(natsConn, "availability.events")

	svc := availservice.New(repo, eng, holds, publisher, domain.SystemClock{}, logger.Named("service"))
	availHTTP := availhandler.NewHTTP(svc, cfg.JWTSecret)

	r := chi.NewRouter()
	r.Mount("/", availHTTP.Router())
	r.Mount("/observability", observability.MetricsRouter())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if db != nil && natsConn != nil {
		dispatcher := outboxworker.NewDispatcher(db, natsConn, logger.Named("outbox"), outboxworker.Config{
			PollInterval: cfg.OutboxPoll,
			BatchSize:    cfg.OutboxBatch,
			RetryMax:     cfg.OutboxRetry,
		})
		go func() {
			if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox dispatcher stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Warn("outbox dispatcher disabled", zap.Bool("db", db != nil), zap.Bool("nats", natsConn != nil))
	}

	go func() {
		logger.Info("availability service listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func buildTravelCalculator(redisClient *redis.Client, logger *zap.Logger, cfg appConfig) domain.TravelCalculator {
	estimator := travel.NewEstimator(cfg.TravelSpeedKPH)
	var calculator domain.TravelCalculator = estimator
	if cfg.RoutingURL != "" {
		calculator = travel.NewRemoteCalculator(cfg.RoutingURL, nil, estimator, logger.Named("travel"))
	}
	if redisClient != nil {
		calculator = travel.NewCachedCalculator(calculator, redisClient, cfg.TravelCacheTTL, logger.Named("travelcache"))
	}
	return calculator
}

func buildHoldStore(redisClient *redis.Client) hold.Store {
	if redisClient == nil {
		return hold.NewMemoryStore()
	}
	return hold.NewRedisStore(redisClient, "")
}

// seedDemoData loads a demo school so the service answers requests without a
// database. The persistence-backed repository lives in the booking services.
func seedDemoData(repo *repository.MemoryRepository, logger *zap.Logger) {
	schoolID := uuid.MustParse(getenv("DEMO_SCHOOL_ID", "8a11fa63-1f77-4d08-8b3e-0d214274fb12"))
	driverID := uuid.MustParse(getenv("DEMO_DRIVER_ID", "e0f9a6c9-5b88-4a59-9f41-3f1e6f6b2a01"))
	repo.PutSchoolSettings(domain.SchoolSettings{SchoolID: schoolID, LessonDurationMinutes: "60"})
	repo.PutDriverProfile(domain.DriverProfile{
		ID:              driverID,
		SchoolID:        schoolID,
		ServiceCenter:   &domain.Location{Lat: 52.3702, Lng: 4.8952},
		WorkDayStart:    "09:00",
		WorkDayEnd:      "17:00",
		ServiceRadiusKM: "25",
	})
	logger.Info("seeded demo driver", zap.String("school_id", schoolID.String()), zap.String("driver_id", driverID.String()))
}

func loadConfig() appConfig {
	return appConfig{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		PostgresDSN:    firstNonEmpty(os.Getenv("POSTGRES_DSN"), os.Getenv("DATABASE_URL")),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		NATSURL:        os.Getenv("NATS_URL"),
		JWTSecret:      getenv("JWT_SECRET", "dev-secret"),
		RoutingURL:     os.Getenv("ROUTING_URL"),
		TravelSpeedKPH: parseFloatEnv("TRAVEL_SPEED_KPH", travel.DefaultSpeedKPH),
		TravelCacheTTL: time.Duration(parseIntEnv("TRAVEL_CACHE_TTL_SEC", 300)) * time.Second,
		OutboxPoll:     time.Duration(parseIntEnv("OUTBOX_POLL_MS", 200)) * time.Millisecond,
		OutboxBatch:    parseIntEnv("OUTBOX_BATCH", 100),
		OutboxRetry:    parseIntEnv("OUTBOX_RETRY_MAX", 3),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func parseFloatEnv(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
