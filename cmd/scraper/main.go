package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"go-wellfound-scraper/internal/app"
	"go-wellfound-scraper/internal/config"
	"go-wellfound-scraper/internal/domain"
	"go-wellfound-scraper/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := command().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("❌ scrape failed")
	}
}

func command() *cli.Command {
	return &cli.Command{
		Name:  "wellfound-scrape",
		Usage: "Run one Wellfound search and save the result as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Sources: cli.EnvVars("SCRAPER_CONFIG"),
			},
			&cli.StringFlag{
				Name:     "role",
				Usage:    "Role facet text, e.g. \"Backend Engineer\"",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "location",
				Usage:    "Location facet text, e.g. \"Remote\"",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "scroll",
				Usage: "How many times to scroll for more results",
				Value: 10,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Directory for the result file",
				Value: "logs",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logging.Setup(cfg.LogLevel)

			details := domain.Details{
				Role:     cmd.String("role"),
				Location: cmd.String("location"),
				Scroll:   int(cmd.Int("scroll")),
			}
			if details.Scroll < 0 || details.Scroll > cfg.MaxScroll {
				return fmt.Errorf("scroll must be between 0 and %d", cfg.MaxScroll)
			}
			return scrapeOnce(ctx, cfg, details, cmd.String("out"))
		},
	}
}

func scrapeOnce(ctx context.Context, cfg *config.Config, details domain.Details, outDir string) error {
	log.Info().Msg("🚀 Starting Wellfound scraper...")
	a, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.Orchestrator.CreateJob(ctx, details)
	if err != nil {
		return err
	}
	job, err := a.Orchestrator.RunJob(ctx, id, details)
	if err != nil {
		return err
	}

	path, err := saveJob(outDir, job)
	if err != nil {
		return err
	}
	log.Info().Str("status", string(job.Status)).Str("path", path).Msg("🏁 Execution finished")

	if job.Status == domain.StatusFailed {
		return fmt.Errorf("job %s failed: %s", job.ID, job.Result.Error)
	}
	return nil
}

// saveJob writes the job to <dir>/scrape-YYYY-MM-DD.json.
func saveJob(dir string, job domain.Job) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	filename := fmt.Sprintf("scrape-%s.json", time.Now().Format("2006-01-02"))
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
