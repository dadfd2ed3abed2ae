package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"

	"go-wellfound-scraper/internal/domain"
)

const (
	loginLinkSelector = `a[href="/login"]`
	emailSelector     = "#user_email"
	passwordSelector  = "#user_password"
	submitSelector    = `input[type="submit"]`
)

// Login opens the base URL and submits the email/password form. Timeouts on
// any step are reported as SessionLoginTimeout.
func Login(ctx context.Context, page playwright.Page, opts Options) error {
	log.Info().Str("url", opts.BaseURL).Msg("🔐 Logging in")

	if _, err := page.Goto(opts.BaseURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   TimeoutMs(opts.Timeout),
	}); err != nil {
		return loginError("open home page", err)
	}

	if err := page.Locator(loginLinkSelector).First().Click(playwright.LocatorClickOptions{
		Timeout: TimeoutMs(opts.Timeout),
	}); err != nil {
		return loginError("open login form", err)
	}
	if err := Settle(ctx, opts.LoginSettle); err != nil {
		return loginError("wait for login form", err)
	}

	if err := page.Locator(emailSelector).Fill(opts.Email, playwright.LocatorFillOptions{
		Timeout: TimeoutMs(opts.Timeout),
	}); err != nil {
		return loginError("fill email", err)
	}
	if err := page.Locator(passwordSelector).Fill(opts.Password, playwright.LocatorFillOptions{
		Timeout: TimeoutMs(opts.Timeout),
	}); err != nil {
		return loginError("fill password", err)
	}
	if err := page.Locator(submitSelector).First().Click(playwright.LocatorClickOptions{
		Timeout: TimeoutMs(opts.Timeout),
	}); err != nil {
		return loginError("submit login form", err)
	}
	if err := Settle(ctx, opts.LoginSettle); err != nil {
		return loginError("wait after login", err)
	}

	log.Info().Msg("✅ Logged in")
	return nil
}

func loginError(step string, err error) error {
	kind := domain.SessionInitFailure
	if IsTimeout(err) {
		kind = domain.SessionLoginTimeout
	}
	return &domain.SessionError{Kind: kind, Err: fmt.Errorf("%s: %w", step, err)}
}
