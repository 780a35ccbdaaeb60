// Command chat is an interactive console for travel queries. It wires the
// same provider clients and query service as the API server, without the
// HTTP surface.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	appcfg "travel-concierge/internal/config"
	"travel-concierge/internal/infra/geocoder"
	"travel-concierge/internal/infra/places"
	"travel-concierge/internal/infra/weather"
	"travel-concierge/internal/observability/logging"
	tripUC "travel-concierge/internal/usecase/trip"
)

func main() {
	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	httpClient := &http.Client{}
	svc := tripUC.NewService(
		geocoder.NewClient(httpClient, cfg.Geocoder, cfg.UserAgent, cfg.GeocoderRPS),
		weather.NewClient(httpClient, cfg.Weather, cfg.UserAgent),
		places.NewClient(httpClient, cfg.Places, cfg.UserAgent, cfg.PlacesRadiusMeters, cfg.MaxAttractions),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("Ask me about a destination (quit/exit to leave).")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		reply, err := svc.Answer(ctx, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error("query failed", slog.Any("error", err))
			continue
		}
		fmt.Println(reply)
	}

	if err := scanner.Err(); err != nil {
		logger.Error("input error", slog.Any("error", err))
		os.Exit(1)
	}
}
