// Package scraper defines the contract every site scraper implements and the
// order a search runs in.
package scraper

import (
	"context"
	"errors"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"

	"go-wellfound-scraper/internal/domain"
)

// Scraper drives one site's search UI on an already authenticated page.
type Scraper interface {
	// Name is the platform name
	Name() string

	// EnsureHome navigates back to the search root when the page is elsewhere.
	EnsureHome(ctx context.Context, page playwright.Page) error

	// ApplyFacets replaces the role and location filters. It returns
	// domain.ErrNoResults when the saved search is already empty.
	ApplyFacets(ctx context.Context, page playwright.Page, role, location string) error

	// Paginate loads more results by scrolling a fixed number of times.
	Paginate(ctx context.Context, page playwright.Page, times int) error

	// Extract reads every loaded company card in document order.
	Extract(ctx context.Context, page playwright.Page) (domain.Listing, error)
}

// Run performs one search: home, facets, pagination, extraction. When the
// search has no results it stops after the facets and returns domain.ErrNoResults.
func Run(ctx context.Context, s Scraper, page playwright.Page, details domain.Details) (domain.Listing, error) {
	logger := log.With().Str("scraper", s.Name()).Str("role", details.Role).Str("location", details.Location).Logger()

	if err := s.EnsureHome(ctx, page); err != nil {
		return nil, err
	}

	logger.Info().Msg("🔍 Applying search facets")
	if err := s.ApplyFacets(ctx, page, details.Role, details.Location); err != nil {
		if errors.Is(err, domain.ErrNoResults) {
			logger.Info().Msg("📭 No results for this search")
		}
		return nil, err
	}

	logger.Info().Int("scroll", details.Scroll).Msg("📜 Loading more results")
	if err := s.Paginate(ctx, page, details.Scroll); err != nil {
		return nil, err
	}

	listing, err := s.Extract(ctx, page)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("companies", len(listing)).Int("roles", listing.RoleCount()).Msg("✅ Extraction finished")
	return listing, nil
}
