package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcfg "travel-concierge/internal/config"
	hhttp "travel-concierge/internal/handler/http"
	hquery "travel-concierge/internal/handler/http/query"
	"travel-concierge/internal/handler/http/requestid"
	"travel-concierge/internal/infra/geocoder"
	"travel-concierge/internal/infra/places"
	"travel-concierge/internal/infra/weather"
	"travel-concierge/internal/observability/tracing"
	"travel-concierge/internal/resilience/circuitbreaker"
	tripUC "travel-concierge/internal/usecase/trip"
)

func main() {
	logger := initLogger()

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	version := getVersion()
	handler := setupServer(logger, cfg, version)

	runServer(logger, handler, version)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// breakerStates adapts the process-wide circuit breaker registry to the
// health handler's reporting interface.
type breakerStates struct{}

func (breakerStates) States() map[string]string {
	return circuitbreaker.States()
}

// setupServer wires the provider clients, the query service, and all routes,
// and returns the HTTP handler with the middleware chain applied.
func setupServer(logger *slog.Logger, cfg *appcfg.Config, version string) http.Handler {
	// One shared transport for all providers; per-attempt deadlines live in
	// the clients, so the http.Client itself carries no timeout.
	httpClient := &http.Client{}

	svc := tripUC.NewService(
		geocoder.NewClient(httpClient, cfg.Geocoder, cfg.UserAgent, cfg.GeocoderRPS),
		weather.NewClient(httpClient, cfg.Weather, cfg.UserAgent),
		places.NewClient(httpClient, cfg.Places, cfg.UserAgent, cfg.PlacesRadiusMeters, cfg.MaxAttractions),
	)

	mux := http.NewServeMux()
	hquery.Register(mux, svc)
	mux.Handle("/health", &hhttp.HealthHandler{Breakers: breakerStates{}, Version: version})
	mux.Handle("/ready", &hhttp.ReadyHandler{})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	return applyMiddleware(logger, mux)
}

// applyMiddleware wraps the handler with the middleware chain.
// Order: Tracing → Request ID → Recovery → Logging → Body Limit → Metrics
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	chain := handler

	// Apply in reverse order (innermost to outermost)
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = requestid.Middleware(chain)
	chain = tracing.Middleware(chain)

	return chain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
