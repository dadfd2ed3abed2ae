package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"go-wellfound-scraper/internal/api"
	"go-wellfound-scraper/internal/app"
	"go-wellfound-scraper/internal/config"
	"go-wellfound-scraper/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := command().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("❌ server stopped")
	}
}

func command() *cli.Command {
	return &cli.Command{
		Name:  "wellfound-server",
		Usage: "Serve the scrape job API on one logged-in browser page",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Sources: cli.EnvVars("SCRAPER_CONFIG"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd.String("config"))
		},
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.LogLevel)
	log.Info().Str("addr", cfg.Server.Addr).Str("store", cfg.Store.Driver).Msg("🔧 Config loaded")

	a, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer a.Close()

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(a.Orchestrator, cfg.MaxScroll).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// jobs run one at a time on the shared page
	g.Go(func() error {
		return a.Orchestrator.Start(gCtx)
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Msg("🚀 Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace())
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info().Msg("🏁 Server stopped")
	return err
}
