package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ScreenshotDebugger saves full-page screenshots for failed jobs.
type ScreenshotDebugger struct {
	outputDir string
}

func NewScreenshotDebugger(dir string) *ScreenshotDebugger {
	return &ScreenshotDebugger{outputDir: dir}
}

// Capture writes <name>_<timestamp>.png and returns its path.
func (s *ScreenshotDebugger) Capture(page playwright.Page, name, message string) (string, error) {
	if page == nil {
		return "", fmt.Errorf("no page to capture")
	}
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", err
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.png", unsafeName.ReplaceAllString(name, "_"), timestamp)
	path := filepath.Join(s.outputDir, filename)
	log.Info().Str("reason", message).Msg("📸 Capturing screenshot")

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to capture screenshot")
		return "", err
	}

	log.Info().Str("path", path).Msg("Screenshot saved")
	return path, nil
}
