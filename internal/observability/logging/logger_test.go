package logging

import (
	"context"
	"log/slog"
	"testing"

	"travel-concierge/internal/handler/http/requestid"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info level should be enabled by default")
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be disabled by default")
	}
}

func TestNewLogger_DebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	logger := NewLogger()
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled when LOG_LEVEL=debug")
	}
}

func TestWithRequestID(t *testing.T) {
	base := NewLogger()

	ctx := requestid.WithRequestID(context.Background(), "req-42")
	logger := WithRequestID(ctx, base)
	if logger == base {
		t.Error("expected a derived logger carrying the request ID")
	}

	// Without an ID the logger passes through unchanged
	if got := WithRequestID(context.Background(), base); got != base {
		t.Error("expected the original logger when no request ID is present")
	}
}

func TestFromContext(t *testing.T) {
	custom := NewTextLogger()
	ctx := WithLogger(context.Background(), custom)

	if got := FromContext(ctx); got != custom {
		t.Error("expected the logger stored in the context")
	}
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Error("expected the default logger for a bare context")
	}
}
