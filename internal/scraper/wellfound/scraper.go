package wellfound

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"

	"go-wellfound-scraper/internal/browser"
	"go-wellfound-scraper/internal/config"
	"go-wellfound-scraper/internal/domain"
	"go-wellfound-scraper/internal/scraper"
)

type WellfoundScraper struct {
	baseURL string
	timeout time.Duration
	timings config.Timings
}

var _ scraper.Scraper = (*WellfoundScraper)(nil)

func NewWellfoundScraper(cfg *config.Config) *WellfoundScraper {
	return &WellfoundScraper{
		baseURL: cfg.BaseURL,
		timeout: cfg.Browser.Timeout(),
		timings: cfg.Timings,
	}
}

func (s *WellfoundScraper) Name() string {
	return "Wellfound"
}

func (s *WellfoundScraper) EnsureHome(ctx context.Context, page playwright.Page) error {
	if sameURL(page.URL(), s.baseURL) {
		return nil
	}

	log.Info().Str("from", page.URL()).Msg("🏠 Returning to search home")
	if _, err := page.Goto(s.baseURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   browser.TimeoutMs(s.timeout),
	}); err != nil {
		return interactionError("navigate home", err)
	}
	return s.settle(ctx, "navigate home", s.timings.HomeSettle())
}

// click waits for selector to become visible before clicking it.
func (s *WellfoundScraper) click(ctx context.Context, page playwright.Page, selector, step string) error {
	if err := ctx.Err(); err != nil {
		return interactionError(step, err)
	}
	target := page.Locator(selector).First()
	if err := target.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: browser.TimeoutMs(s.timeout),
	}); err != nil {
		return interactionError(step, err)
	}
	if err := target.Click(playwright.LocatorClickOptions{
		Timeout: browser.TimeoutMs(s.timeout),
	}); err != nil {
		return interactionError(step, err)
	}
	return nil
}

func (s *WellfoundScraper) settle(ctx context.Context, step string, d time.Duration) error {
	if err := browser.Settle(ctx, d); err != nil {
		return interactionError(step, err)
	}
	return nil
}

func interactionError(step string, err error) error {
	var scrapeErr *domain.ScrapeError
	if errors.As(err, &scrapeErr) {
		return err
	}
	kind := domain.InteractionFailure
	if browser.IsTimeout(err) {
		kind = domain.InteractionTimeout
	}
	return &domain.ScrapeError{Kind: kind, Step: step, Err: err}
}

func extractionError(step string, err error) error {
	return &domain.ScrapeError{Kind: domain.ExtractionFailure, Step: step, Err: err}
}

func sameURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}
