package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"go-wellfound-scraper/internal/browser"
	"go-wellfound-scraper/internal/domain"
	"go-wellfound-scraper/internal/store"
)

// fakeScraper records every call and tracks how many run at once.
type fakeScraper struct {
	mu    sync.Mutex
	calls []string

	active int32
	peak   int32
	delay  time.Duration

	facetsErr  error
	extractErr error
	panicOn    string
	listing    domain.Listing

	holdUntilCancel bool
}

func (f *fakeScraper) enter(name string) func() {
	n := atomic.AddInt32(&f.active, 1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.panicOn == name {
		atomic.AddInt32(&f.active, -1)
		panic("boom in " + name)
	}
	time.Sleep(f.delay)
	return func() { atomic.AddInt32(&f.active, -1) }
}

func (f *fakeScraper) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeScraper) Count(name string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeScraper) Name() string { return "Fake" }

func (f *fakeScraper) EnsureHome(ctx context.Context, page playwright.Page) error {
	defer f.enter("home")()
	if f.holdUntilCancel {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (f *fakeScraper) ApplyFacets(ctx context.Context, page playwright.Page, role, location string) error {
	defer f.enter("facets")()
	return f.facetsErr
}

func (f *fakeScraper) Paginate(ctx context.Context, page playwright.Page, times int) error {
	defer f.enter("paginate")()
	return nil
}

func (f *fakeScraper) Extract(ctx context.Context, page playwright.Page) (domain.Listing, error) {
	defer f.enter("extract")()
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.listing, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	jobs []domain.Job
}

func (n *recordingNotifier) JobFinished(ctx context.Context, job domain.Job) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, job)
	return nil
}

func (n *recordingNotifier) Jobs() []domain.Job {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Job(nil), n.jobs...)
}

// blockingNotifier holds every send until release is closed or the send times out.
type blockingNotifier struct {
	release chan struct{}
	entered atomic.Int32
}

func (n *blockingNotifier) JobFinished(ctx context.Context, job domain.Job) error {
	n.entered.Add(1)
	select {
	case <-n.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// rejectingUpdates fails every Update so terminal writes never land.
type rejectingUpdates struct {
	*store.FileStore
}

func (s rejectingUpdates) Update(ctx context.Context, id string, fn func(*domain.Job) error) (domain.Job, error) {
	return domain.Job{}, &domain.StoreError{Op: "update", Err: errors.New("disk full")}
}

type testEnv struct {
	orch     *Orchestrator
	store    *store.FileStore
	session  *browser.Session
	scraper  *fakeScraper
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T, fake *fakeScraper, queueSize int) *testEnv {
	t.Helper()
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "JobData.json"))
	require.NoError(t, err)

	session := browser.Attach(nil)
	notifier := &recordingNotifier{}
	orch := NewOrchestrator(Deps{
		Store:     st,
		Session:   session,
		Scraper:   fake,
		Scheduler: NewScheduler(queueSize),
		Notifier:  notifier,
	})
	return &testEnv{orch: orch, store: st, session: session, scraper: fake, notifier: notifier}
}
