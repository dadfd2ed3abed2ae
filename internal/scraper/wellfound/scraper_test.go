package wellfound

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-wellfound-scraper/internal/config"
	"go-wellfound-scraper/internal/domain"
	"go-wellfound-scraper/internal/scraper"
)

//helper start headless browser, skip when the driver is not installed
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

func newTestScraper() *WellfoundScraper {
	cfg := &config.Config{
		BaseURL: "https://wellfound.test/",
		Browser: config.BrowserConfig{TimeoutMs: 2000},
	}
	return NewWellfoundScraper(cfg)
}

func setContent(t *testing.T, page playwright.Page, html string) {
	t.Helper()
	require.NoError(t, page.SetContent(html, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}))
}

const listingFixture = `<html><body>
<div class="styles_component__uTjje">
  <div class="styles_headerContainer__GfbYF">
    <a href="/company/acme"><h2>Acme</h2></a>
    <span class="text-xs">11-50 EMPLOYEES</span>
  </div>
  <div class="styles_component__dBicB">
    <div class="styles_component__Ey28k">
      <div class="styles_info__h20aa">
        <div class="styles_titleBar__f7F5e"><span class="styles_title__xpQDw">Backend Engineer</span></div>
        <span class="styles_compensation__3JnvU">$120k</span>
        <span class="styles_location__O9Z62">Remote</span>
        <span class="styles_location__O9Z62">Berlin</span>
      </div>
      <a class="styles_defaultLink__eZMqw styles_jobLink__US40J" href="/jobs/1"></a>
      <div class="styles_tags__c_S1s"><span>Full time</span><span>2 days ago</span></div>
    </div>
  </div>
</div>
<div class="styles_component__uTjje">
  <div class="styles_headerContainer__GfbYF">
    <a href="/company/beta"><h2>Beta</h2></a>
    <span class="text-md">We ship</span>
  </div>
</div>
</body></html>`

func TestWellfoundScraper_Extract(t *testing.T) {
	page := setupPlaywright(t)
	setContent(t, page, listingFixture)
	s := newTestScraper()

	listing, err := s.Extract(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, listing, 2)

	assert.Equal(t, "Acme", listing[0].Name)
	assert.Equal(t, domain.NotAvailable, listing[0].Tagline)
	require.Len(t, listing[0].Roles, 1)
	assert.Equal(t, domain.RoleListing{
		Title:             "Backend Engineer",
		ApplyURL:          "/jobs/1",
		CompensationLabel: "$120k",
		Locations:         []string{"Remote", "Berlin"},
		PostedLabel:       "2 days ago",
	}, listing[0].Roles[0])
	assert.Equal(t, "Beta", listing[1].Name)
	assert.Empty(t, listing[1].Roles)

	again, err := s.Extract(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, listing, again)
}

// The facet controls focus their input like the site's autocomplete does, and
// every committed value lands in window.__typed as "facet:value".
const facetsFixture = `<html><body>
<script>
window.__typed = [];
function commit(e, input) {
  if (e.key === 'Enter') { window.__typed.push(input.dataset.facet + ':' + input.value); }
}
</script>
<ul><li class="styles_component__JnTf9" data-test="SavedSearchTab-new">New</li></ul>
<h4 class="styles_header__ilUL3">%s</h4>
<div class="styles_roleWrapper__e5l9z">
  <button onclick="document.getElementById('role-input').focus()"><span class="styles_label__ikMuI">Role</span></button>
  <div class="css-xb97g8 select__multi-value__remove" onmousedown="event.preventDefault()" onclick="this.remove()">x</div>
  <div class="css-xb97g8 select__multi-value__remove" onmousedown="event.preventDefault()" onclick="this.remove()">x</div>
  <input id="role-input" data-facet="role" onkeydown="commit(event, this)">
</div>
<div class="styles_locationWrapper__h5BsW">
  <button onclick="document.getElementById('location-input').focus()"><div class="flex-row"><span>Location</span></div></button>
  <div class="css-xb97g8 select__multi-value__remove" onmousedown="event.preventDefault()" onclick="this.remove()">x</div>
  <input id="location-input" data-facet="location" onkeydown="commit(event, this)">
</div>
</body></html>`

const hiddenChip = `<div class="css-xb97g8 select__multi-value__remove" style="display:none">x</div>`

func typedValues(t *testing.T, page playwright.Page) []interface{} {
	t.Helper()
	typed, err := page.Evaluate("window.__typed")
	require.NoError(t, err)
	values, ok := typed.([]interface{})
	require.True(t, ok, "unexpected __typed value %v", typed)
	return values
}

func TestWellfoundScraper_ApplyFacets(t *testing.T) {
	page := setupPlaywright(t)
	s := newTestScraper()

	t.Run("clears chips on both facets", func(t *testing.T) {
		setContent(t, page, fmt.Sprintf(facetsFixture, "24 results"))
		require.NoError(t, s.ApplyFacets(context.Background(), page, "Backend Engineer", "Remote"))

		count, err := page.Locator(".select__multi-value__remove").Count()
		require.NoError(t, err)
		assert.Zero(t, count)

		assert.Equal(t, []interface{}{"role:Backend Engineer", "location:Remote"}, typedValues(t, page),
			"role is committed before the location control is opened")
	})

	t.Run("unclickable chip is skipped", func(t *testing.T) {
		html := fmt.Sprintf(facetsFixture, "24 results")
		html = strings.Replace(html, `<input id="role-input"`, hiddenChip+"\n  "+`<input id="role-input"`, 1)
		setContent(t, page, html)
		short := newTestScraper()
		short.timeout = 300 * time.Millisecond

		require.NoError(t, short.ApplyFacets(context.Background(), page, "Backend Engineer", "Remote"))

		count, err := page.Locator(".select__multi-value__remove").Count()
		require.NoError(t, err)
		assert.Equal(t, 1, count, "only the hidden chip is left")
		assert.Equal(t, []interface{}{"role:Backend Engineer", "location:Remote"}, typedValues(t, page))
	})

	t.Run("zero results short-circuits", func(t *testing.T) {
		setContent(t, page, fmt.Sprintf(facetsFixture, "0 results"))
		err := s.ApplyFacets(context.Background(), page, "Backend Engineer", "Remote")
		assert.ErrorIs(t, err, domain.ErrNoResults)

		count, err := page.Locator(".select__multi-value__remove").Count()
		require.NoError(t, err)
		assert.Equal(t, 3, count, "facets untouched")
	})

	t.Run("missing tab times out", func(t *testing.T) {
		setContent(t, page, "<html><body></body></html>")
		short := newTestScraper()
		short.timeout = 300 * time.Millisecond

		err := short.ApplyFacets(context.Background(), page, "Backend Engineer", "Remote")
		var scrapeErr *domain.ScrapeError
		require.ErrorAs(t, err, &scrapeErr)
		assert.Equal(t, domain.InteractionTimeout, scrapeErr.Kind)
	})
}

func TestRun_NoResultsSkipsExtraction(t *testing.T) {
	page := setupPlaywright(t)
	page.Route("**/*", func(route playwright.Route) {
		route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/html"),
			Body:        fmt.Sprintf(facetsFixture, "0 results"),
		})
	})

	listing, err := scraper.Run(context.Background(), newTestScraper(), page, domain.Details{
		Location: "Remote", Role: "Backend Engineer", Scroll: 2,
	})
	assert.ErrorIs(t, err, domain.ErrNoResults)
	assert.Nil(t, listing)
}

func TestWellfoundScraper_Paginate(t *testing.T) {
	page := setupPlaywright(t)
	setContent(t, page, `<html><body><div style="height: 5000px">tall</div></body></html>`)
	s := newTestScraper()

	require.NoError(t, s.Paginate(context.Background(), page, 0))
	y, err := page.Evaluate("window.scrollY")
	require.NoError(t, err)
	assert.EqualValues(t, 0, y)

	require.NoError(t, s.Paginate(context.Background(), page, 2))
	y, err = page.Evaluate("window.scrollY")
	require.NoError(t, err)
	assert.NotEqualValues(t, 0, y)
}
