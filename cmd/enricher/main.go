package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/econbrief/news-enricher/internal/app"
	"github.com/econbrief/news-enricher/internal/platform/config"
)

func main() {
	mode := flag.String("mode", "all", "Service mode (collect, process, all, serve)")
	once := flag.Bool("once", false, "Run a single pass and exit (collect, process, all)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	// Health and metrics run in every mode.
	go func() {
		if err := application.ServeHealth(ctx); err != nil {
			logger.Error().Err(err).Msg("health server error")
		}
	}()

	if err := runMode(ctx, application, *mode, *once); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode string, once bool) error {
	switch mode {
	case "collect":
		if once {
			return application.RunCollect(ctx)
		}

		return application.RunLoop(ctx, true, false)
	case "process":
		if once {
			return application.RunProcess(ctx)
		}

		return application.RunLoop(ctx, false, true)
	case "all":
		if once {
			if err := application.RunCollect(ctx); err != nil {
				return err
			}

			return application.RunProcess(ctx)
		}

		return application.RunLoop(ctx, true, true)
	case "serve":
		return application.ServeAPI(ctx)
	default:
		log.Fatalf("Usage: %s --mode=[collect|process|all|serve]", os.Args[0])

		return nil
	}
}
