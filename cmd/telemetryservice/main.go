package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/AliEdi10/artinbooking-sub001/internal/travel"
	"github.com/AliEdi10/artinbooking-sub001/internal/vehicle"
	"github.com/AliEdi10/artinbooking-sub001/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := observability.SetupLogger("telemetry-service")
	defer logger.Sync() //nolint:errcheck

	shutdown, err := observability.SetupTracer(ctx, "telemetry-service")
	if err != nil {
		logger.Warn("tracer setup failed", zap.Error(err))
	} else {
		defer shutdown(context.Background())
	}

	observer := vehicle.NewObserver()
	estimator := travel.NewEstimator(parseFloatEnv("TRAVEL_SPEED_KPH", travel.DefaultSpeedKPH))

	go runREST(logger, observer, estimator)
	go runGRPC(logger, observer)

	<-ctx.Done()
	logger.Info("shutdown signal received")
}

func runREST(logger *zap.Logger, observer *vehicle.Observer, estimator *travel.Estimator) {
	r := chi.NewRouter()
	r.Mount("/", vehicle.NewHTTP(observer, estimator).Router())
	r.Mount("/observability", observability.MetricsRouter())

	srv := &http.Server{Addr: getenv("HTTP_ADDR", ":8081"), Handler: r, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("telemetry REST listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("telemetry rest server", zap.Error(err))
	}
}

func runGRPC(logger *zap.Logger, observer *vehicle.Observer) {
	lis, err := net.Listen("tcp", getenv("GRPC_ADDR", ":9090"))
	if err != nil {
		logger.Fatal("listen grpc", zap.Error(err))
	}

	srv := grpc.NewServer()
	vehicle.RegisterTelemetryServer(srv, vehicle.NewServer(observer))
	logger.Info("telemetry grpc listening", zap.String("addr", lis.Addr().String()))
	if err := srv.Serve(lis); err != nil {
		logger.Fatal("grpc serve", zap.Error(err))
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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
