package browser

import (
	"testing"

	"github.com/playwright-community/playwright-go"
)

// setupPlaywright starts a headless page, skipping when no driver is installed.
func setupPlaywright(t *testing.T) playwright.Page {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	pw, err := playwright.Run()
	if err != nil {
		t.Skipf("playwright not available: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		t.Skipf("could not launch browser: %v", err)
	}
	page, err := browser.NewPage()
	if err != nil {
		t.Fatalf("could not create page: %v", err)
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
	})
	return page
}
