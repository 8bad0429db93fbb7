package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	appLogger "github.com/FACorreiaa/go-tourist-guide/app/logger"
	"github.com/FACorreiaa/go-tourist-guide/config"
	generativeAI "github.com/FACorreiaa/go-tourist-guide/internal/api/generative_ai"
)

var (
	start     = flag.String("start", "Hyderabad", "starting location")
	days      = flag.Int("days", 3, "number of days")
	interests = flag.String("interests", "History,Food", "comma separated interests")
	budget    = flag.String("budget", "Moderate", "budget level")
	season    = flag.String("season", "Winter", "travel season")
)

// Runs the configured generation chain once and prints the plan. Useful for
// checking provider keys and the local model without starting the server.
func main() {
	flag.Parse()

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, closer, err := appLogger.New(cfg.Mode, "")
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer closer.Close()

	ctx := context.Background()
	svc, err := generativeAI.NewServiceFromConfig(ctx, cfg.AI, logger)
	if err != nil {
		logger.Error("Failed to build generation chain", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Generation chain", slog.Any("strategies", svc.Strategies()))

	var tags []string
	for _, tag := range strings.Split(*interests, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	gen, err := svc.GenerateItinerary(ctx, generativeAI.NewRequest(*start, *days, tags, *budget, *season))
	if err != nil {
		logger.Error("Generation failed", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Printf("# %d days from %s (%s)\n\n%s\n", *days, *start, gen.Strategy, gen.Text)
}
