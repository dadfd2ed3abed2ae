package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-wellfound-scraper/internal/browser"
	"go-wellfound-scraper/internal/domain"
	"go-wellfound-scraper/internal/service"
	"go-wellfound-scraper/internal/store"
)

// emptySearch behaves like a saved search whose header reads "0 results".
type emptySearch struct{}

func (emptySearch) Name() string { return "Empty" }

func (emptySearch) EnsureHome(context.Context, playwright.Page) error { return nil }

func (emptySearch) ApplyFacets(context.Context, playwright.Page, string, string) error {
	return domain.ErrNoResults
}

func (emptySearch) Paginate(context.Context, playwright.Page, int) error { return nil }

func (emptySearch) Extract(context.Context, playwright.Page) (domain.Listing, error) {
	panic("extraction must not run without results")
}

type testServer struct {
	handler http.Handler
	orch    *service.Orchestrator
	store   *store.FileStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "JobData.json"))
	require.NoError(t, err)

	orch := service.NewOrchestrator(service.Deps{
		Store:     st,
		Session:   browser.Attach(nil),
		Scraper:   emptySearch{},
		Scheduler: service.NewScheduler(10),
	})
	return &testServer{handler: NewServer(orch, 100).Handler(), orch: orch, store: st}
}

func (ts *testServer) do(t *testing.T, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec, body := ts.do(t, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestScrape_CreatesPendingJob(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodPost, "/scrape?location=Remote&role=Backend+Engineer")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Scraping started.", body["message"])
	id, ok := body["job_id"].(string)
	require.True(t, ok)

	job, err := ts.orch.GetJob(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, job.Status)
	assert.Equal(t, domain.Details{Location: "Remote", Role: "Backend Engineer", Scroll: 10}, job.Details)
}

func TestScrape_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"missing role", "/scrape?location=Remote", "role"},
		{"blank location", "/scrape?location=%20%20&role=SRE", "location"},
		{"negative scroll", "/scrape?location=Remote&role=SRE&scroll=-1", "scroll"},
		{"scroll above max", "/scrape?location=Remote&role=SRE&scroll=101", "scroll"},
	}
	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := ts.do(t, http.MethodPost, tt.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation_error", body["code"])
			details, ok := body["details"].([]interface{})
			require.True(t, ok)
			require.NotEmpty(t, details)
			assert.Equal(t, tt.field, details[0].(map[string]interface{})["field"])
		})
	}

	rec, body := ts.do(t, http.MethodPost, "/scrape?location=Remote&role=SRE&scroll=lots")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", body["code"])

	jobs, err := ts.orch.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs, "rejected requests create no job")
}

func TestGetJob_UnknownLeavesStoreUntouched(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.orch.CreateJob(context.Background(), domain.Details{Location: "Remote", Role: "SRE", Scroll: 1})
	require.NoError(t, err)

	before, err := os.ReadFile(ts.store.Path())
	require.NoError(t, err)
	statBefore, err := os.Stat(ts.store.Path())
	require.NoError(t, err)

	rec, body := ts.do(t, http.MethodGet, "/job/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Job ID not found.", body["error"])

	after, err := os.ReadFile(ts.store.Path())
	require.NoError(t, err)
	statAfter, err := os.Stat(ts.store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, statBefore.ModTime(), statAfter.ModTime())
}

func TestGetJob_CorruptStore(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, os.WriteFile(ts.store.Path(), []byte("{not json"), 0644))

	rec, body := ts.do(t, http.MethodGet, "/job/anything")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "store_failure", body["code"])
}

func TestListJobs(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodGet, "/jobs")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["jobs"])

	id, err := ts.orch.CreateJob(context.Background(), domain.Details{Location: "Remote", Role: "SRE", Scroll: 1})
	require.NoError(t, err)

	_, body = ts.do(t, http.MethodGet, "/jobs")
	jobs := body["jobs"].([]interface{})
	require.Len(t, jobs, 1)
	summary := jobs[0].(map[string]interface{})
	assert.Equal(t, id, summary["job_id"])
	assert.Equal(t, "pending", summary["status"])
	assert.Nil(t, summary["completed_at"])
	assert.NotContains(t, summary, "result")
}

func TestScrape_NoResultsScenario(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ts.orch.Start(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	_, body := ts.do(t, http.MethodPost, "/scrape?location=Remote&role=Backend%20Engineer&scroll=2")
	id := body["job_id"].(string)

	var job map[string]interface{}
	require.Eventually(t, func() bool {
		_, job = ts.do(t, http.MethodGet, "/job/"+id)
		return job["status"] == "completed"
	}, 2*time.Second, 10*time.Millisecond)

	result := job["result"].(map[string]interface{})
	assert.Equal(t, "No results found.", result["error"])
	assert.Equal(t, "no_results", result["outcome"])
	assert.NotContains(t, result, "job_data")
	assert.NotNil(t, job["completed_at"])
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
