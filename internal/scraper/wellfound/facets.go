package wellfound

import (
	"context"
	"regexp"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"

	"go-wellfound-scraper/internal/browser"
	"go-wellfound-scraper/internal/domain"
)

// zeroResults matches "0 results" but not "10 results" or "1,230 results".
// A plain substring check would read any count ending in zero as an empty search.
var zeroResults = regexp.MustCompile(`(^|[^0-9,.])0 results`)

type facet struct {
	name    string
	control string
	chips   string
}

var (
	roleFacet     = facet{name: "role", control: roleControlSelector, chips: roleChipSelector}
	locationFacet = facet{name: "location", control: locationControlSelector, chips: locationChipSelector}
)

// ApplyFacets opens the saved search and replaces the role filter, then the
// location filter. Both facets share one focus-driven autocomplete, so the
// role must be committed before the location control is opened.
func (s *WellfoundScraper) ApplyFacets(ctx context.Context, page playwright.Page, role, location string) error {
	if err := s.click(ctx, page, savedSearchTabSelector, "open saved search"); err != nil {
		return err
	}
	if err := s.settle(ctx, "open saved search", s.timings.TabSettle()); err != nil {
		return err
	}

	empty, err := hasNoResults(page)
	if err != nil {
		return interactionError("read results header", err)
	}
	if empty {
		return domain.ErrNoResults
	}

	if err := s.setFacet(ctx, page, roleFacet, role); err != nil {
		return err
	}
	return s.setFacet(ctx, page, locationFacet, location)
}

func (s *WellfoundScraper) setFacet(ctx context.Context, page playwright.Page, f facet, value string) error {
	step := "set " + f.name
	if err := s.click(ctx, page, f.control, "open "+f.name+" facet"); err != nil {
		return err
	}

	s.clearChips(ctx, page, f)

	if err := page.Keyboard().Type(value); err != nil {
		return interactionError(step, err)
	}
	if err := s.settle(ctx, step, s.timings.TypeSettle()); err != nil {
		return err
	}
	if err := page.Keyboard().Press("Enter"); err != nil {
		return interactionError(step, err)
	}
	return s.settle(ctx, step, s.timings.EnterSettle())
}

// clearChips removes every selected value of the facet. A chip that cannot be
// clicked is logged and skipped.
func (s *WellfoundScraper) clearChips(ctx context.Context, page playwright.Page, f facet) {
	chips, err := page.Locator(f.chips).ElementHandles()
	if err != nil {
		log.Warn().Err(err).Str("facet", f.name).Msg("⚠️ could not list selected values")
		return
	}
	log.Debug().Str("facet", f.name).Int("count", len(chips)).Msg("Removing existing values")

	for _, chip := range chips {
		if err := chip.Click(playwright.ElementHandleClickOptions{
			Timeout: browser.TimeoutMs(s.timeout),
		}); err != nil {
			log.Warn().Err(err).Str("facet", f.name).Msg("⚠️ Failed to remove a value")
			continue
		}
		if err := browser.Settle(ctx, s.timings.ChipSettle()); err != nil {
			return
		}
	}
}

// hasNoResults reports whether the results header says the search is empty.
// A missing header means results are present.
func hasNoResults(page playwright.Page) (bool, error) {
	header := page.Locator(resultsHeaderSelector)
	count, err := header.Count()
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	text, err := header.First().TextContent()
	if err != nil {
		return false, err
	}
	return zeroResults.MatchString(text), nil
}
