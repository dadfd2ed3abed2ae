package wellfound

import (
	"context"

	"github.com/playwright-community/playwright-go"
)

// Paginate scrolls to the bottom times times, settling after each scroll so
// lazy-loaded cards can render. It does not stop early when nothing new loads.
func (s *WellfoundScraper) Paginate(ctx context.Context, page playwright.Page, times int) error {
	for i := 0; i < times; i++ {
		if _, err := page.Evaluate(scrollToBottomJS); err != nil {
			return interactionError("scroll", err)
		}
		if err := s.settle(ctx, "scroll", s.timings.ScrollSettle()); err != nil {
			return err
		}
	}
	return nil
}
