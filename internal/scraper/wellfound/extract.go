package wellfound

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/text/unicode/norm"

	"go-wellfound-scraper/internal/domain"
)

type rawRole struct {
	JobName      *string  `json:"jobName"`
	Link         *string  `json:"link"`
	Compensation *string  `json:"compensation"`
	Locations    []string `json:"locations"`
	Posted       *string  `json:"posted"`
}

type rawCompany struct {
	CompanyName    *string   `json:"companyName"`
	CompanyTagline *string   `json:"companyTagline"`
	EmployeeCount  *string   `json:"employeeCount"`
	AvailableJobs  []rawRole `json:"availableJobs"`
}

// Extract reads the rendered cards in one evaluation.
func (s *WellfoundScraper) Extract(ctx context.Context, page playwright.Page) (domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, extractionError("extract", err)
	}
	raw, err := page.Evaluate(extractJS)
	if err != nil {
		return nil, extractionError("evaluate", err)
	}
	listing, err := decodeListing(raw)
	if err != nil {
		return nil, extractionError("decode", err)
	}
	return listing, nil
}

// decodeListing converts the evaluation result into a Listing, filling absent
// or blank fields with the "N/A" sentinel.
func decodeListing(raw interface{}) (domain.Listing, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var companies []rawCompany
	if err := json.Unmarshal(data, &companies); err != nil {
		return nil, fmt.Errorf("unexpected card data: %w", err)
	}

	listing := make(domain.Listing, 0, len(companies))
	for _, c := range companies {
		group := domain.CompanyGroup{
			Name:               orNA(c.CompanyName),
			Tagline:            orNA(c.CompanyTagline),
			EmployeeCountLabel: orNA(c.EmployeeCount),
			Roles:              make([]domain.RoleListing, 0, len(c.AvailableJobs)),
		}
		for _, r := range c.AvailableJobs {
			group.Roles = append(group.Roles, domain.RoleListing{
				Title:             orNA(r.JobName),
				ApplyURL:          orNA(r.Link),
				CompensationLabel: orNA(r.Compensation),
				Locations:         cleanAll(r.Locations),
				PostedLabel:       orNA(r.Posted),
			})
		}
		listing = append(listing, group)
	}
	return listing, nil
}

func orNA(s *string) string {
	if s == nil {
		return domain.NotAvailable
	}
	if t := normalizeText(*s); t != "" {
		return t
	}
	return domain.NotAvailable
}

func cleanAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if t := normalizeText(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeText collapses whitespace runs and composes Unicode to NFC.
func normalizeText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
