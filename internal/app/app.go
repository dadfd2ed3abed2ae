// Package app wires configuration, storage, the browser session and the
// orchestrator into one runnable unit shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"go-wellfound-scraper/internal/browser"
	"go-wellfound-scraper/internal/config"
	"go-wellfound-scraper/internal/database"
	"go-wellfound-scraper/internal/notify"
	"go-wellfound-scraper/internal/scraper/wellfound"
	"go-wellfound-scraper/internal/service"
	"go-wellfound-scraper/internal/store"
)

type App struct {
	Config       *config.Config
	Store        store.Store
	Session      *browser.Session
	Orchestrator *service.Orchestrator
}

// Bootstrap loads credentials, opens the job store and logs the browser in.
// Any error here is fatal: no job can run without a session.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	creds, err := config.LoadCredentials(cfg.CredentialsPath)
	if err != nil {
		return nil, err
	}
	cookies, err := browser.LoadAuthCookies(cfg.CookiesPath, cfg.BaseURL, browser.CookieNames{
		Primary: cfg.Browser.PrimaryCookie,
		AntiBot: cfg.Browser.AntiBotCookie,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", len(cookies)).Msg("🍪 Loaded session cookies")

	st, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	session, err := browser.Start(ctx, browser.Options{
		BaseURL:     cfg.BaseURL,
		Headless:    cfg.Browser.Headless,
		Timeout:     cfg.Browser.Timeout(),
		LoginSettle: cfg.Timings.LoginSettle(),
		Email:       creds.Email,
		Password:    creds.Password,
		Cookies:     cookies,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	notifier, err := NewNotifier(cfg)
	if err != nil {
		session.Close()
		st.Close()
		return nil, err
	}

	orch := service.NewOrchestrator(service.Deps{
		Store:     st,
		Session:   session,
		Scraper:   wellfound.NewWellfoundScraper(cfg),
		Scheduler: service.NewScheduler(cfg.QueueSize).WithShutdownGrace(cfg.Server.ShutdownGrace()),
		Notifier:  notifier,
		Shots:     browser.NewScreenshotDebugger(cfg.ScreenshotDir),
	})

	return &App{Config: cfg, Store: st, Session: session, Orchestrator: orch}, nil
}

// OpenStore picks the job store backend named in the config.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "postgres":
		log.Info().Msg("🐘 Using PostgreSQL job store")
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "file", "":
		log.Info().Str("path", cfg.Path).Msg("💾 Using file job store")
		fs, err := store.NewFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// NewNotifier returns the Telegram notifier when a bot is configured.
func NewNotifier(cfg *config.Config) (service.Notifier, error) {
	if cfg.TelegramToken == "" {
		return notify.Nop{}, nil
	}
	n, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("🤖 Telegram notifier initialized")
	return n, nil
}

// Close releases the browser and the store. Failures are logged.
func (a *App) Close() {
	if err := a.Session.Close(); err != nil {
		log.Warn().Err(err).Msg("⚠️ browser session did not close cleanly")
	}
	if err := a.Store.Close(); err != nil {
		log.Warn().Err(err).Msg("⚠️ job store did not close cleanly")
	}
}
