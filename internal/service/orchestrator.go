package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"

	"go-wellfound-scraper/internal/browser"
	"go-wellfound-scraper/internal/domain"
	"go-wellfound-scraper/internal/logging"
	"go-wellfound-scraper/internal/scraper"
	"go-wellfound-scraper/internal/store"
)

// PageLocker hands out exclusive use of the browser page.
type PageLocker interface {
	Acquire(ctx context.Context) (*browser.Handle, error)
	Release(h *browser.Handle)
}

// Notifier is told about every job that reaches a terminal state.
type Notifier interface {
	JobFinished(ctx context.Context, job domain.Job) error
}

// Screenshotter captures the page when a job fails.
type Screenshotter interface {
	Capture(page playwright.Page, name, message string) (string, error)
}

// notifyTimeout bounds one notification so a slow chat API cannot pile up senders.
const notifyTimeout = 10 * time.Second

type Deps struct {
	Store     store.Store
	Session   PageLocker
	Scraper   scraper.Scraper
	Scheduler *Scheduler
	Notifier  Notifier
	Shots     Screenshotter
	Now       func() time.Time
}

// Orchestrator owns the job lifecycle: it creates pending records, runs
// scrapes one at a time on the shared page and writes the terminal record.
type Orchestrator struct {
	store     store.Store
	session   PageLocker
	scraper   scraper.Scraper
	scheduler *Scheduler
	notifier  Notifier
	shots     Screenshotter
	now       func() time.Time

	notifyTimeout time.Duration
	notifying     sync.WaitGroup
}

func NewOrchestrator(deps Deps) *Orchestrator {
	o := &Orchestrator{
		store:     deps.Store,
		session:   deps.Session,
		scraper:   deps.Scraper,
		scheduler: deps.Scheduler,
		notifier:  deps.Notifier,
		shots:     deps.Shots,
		now:       deps.Now,

		notifyTimeout: notifyTimeout,
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.scheduler == nil {
		o.scheduler = NewScheduler(0)
	}
	return o
}

// CreateJob writes a pending record and returns its id. No browser work happens here.
func (o *Orchestrator) CreateJob(ctx context.Context, details domain.Details) (string, error) {
	id := uuid.NewString()
	if err := o.store.Create(ctx, domain.NewPendingJob(id, details, o.now())); err != nil {
		return "", err
	}
	logging.Job(id).Info().Str("role", details.Role).Str("location", details.Location).Int("scroll", details.Scroll).Msg("📝 job created")
	return id, nil
}

// Submit creates a job and queues it. When the queue cannot take it the job is
// finalized as failed right away; the id is returned either way so the caller
// can poll it.
func (o *Orchestrator) Submit(ctx context.Context, details domain.Details) (string, error) {
	id, err := o.CreateJob(ctx, details)
	if err != nil {
		return "", err
	}

	if err := o.scheduler.Submit(Task{JobID: id, Details: details}); err != nil {
		logging.Job(id).Warn().Err(err).Msg("⚠️ job rejected by scheduler")
		if _, ferr := o.finish(ctx, id, domain.StatusFailed, domain.FailureResult(err)); ferr != nil {
			// nothing will pick the job up again
			logging.Job(id).Error().Err(ferr).Msg("❌ rejected job left pending")
			return "", ferr
		}
	}
	return id, nil
}

// Start runs queued jobs until ctx is done, then fails whatever is still queued.
func (o *Orchestrator) Start(ctx context.Context) error {
	left := o.scheduler.Run(ctx, func(runCtx context.Context, task Task) {
		if _, err := o.RunJob(runCtx, task.JobID, task.Details); err != nil {
			logging.Job(task.JobID).Error().Err(err).Msg("❌ could not record job outcome")
		}
	})

	cleanup := context.WithoutCancel(ctx)
	for _, task := range left {
		result := domain.FailureResult(fmt.Errorf("shutting down before the job started: %w", domain.ErrSessionClosed))
		if _, err := o.finish(cleanup, task.JobID, domain.StatusFailed, result); err != nil {
			logging.Job(task.JobID).Error().Err(err).Msg("❌ could not fail queued job")
		}
	}
	o.waitNotifications()
	return nil
}

// RunJob scrapes on the shared page and writes the terminal record. Scrape
// failures end up on the job; the returned error is only about recording it.
func (o *Orchestrator) RunJob(ctx context.Context, id string, details domain.Details) (domain.Job, error) {
	logger := logging.Job(id)

	current, err := o.store.Get(ctx, id)
	if err != nil {
		return domain.Job{}, err
	}
	if current.IsTerminal() {
		return current, domain.ErrJobFinalized
	}

	started := time.Now()
	logger.Info().Msg("🚀 job started")

	listing, err := o.scrape(ctx, id, details)

	var status domain.JobStatus
	var result domain.Result
	switch {
	case err == nil:
		status, result = domain.StatusCompleted, domain.ListingResult(listing)
	case errors.Is(err, domain.ErrNoResults):
		status, result = domain.StatusCompleted, domain.NoResultsResult()
	default:
		status, result = domain.StatusFailed, domain.FailureResult(err)
		logger.Error().Err(err).Str("kind", result.ErrorKind).Msg("❌ job failed")
	}

	// the record is written even when the shutdown grace cancelled the scrape
	job, ferr := o.finish(context.WithoutCancel(ctx), id, status, result)
	if ferr != nil {
		return domain.Job{}, ferr
	}
	logger.Info().Str("status", string(job.Status)).Str("outcome", string(result.Outcome)).Dur("took", time.Since(started)).Msg("🏁 job finished")

	if o.notifier != nil {
		o.notify(ctx, job)
	}
	return job, nil
}

// notify sends off the worker goroutine so the next job can take the page.
func (o *Orchestrator) notify(ctx context.Context, job domain.Job) {
	o.notifying.Add(1)
	go func() {
		defer o.notifying.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.notifyTimeout)
		defer cancel()
		if err := o.notifier.JobFinished(sendCtx, job); err != nil {
			logging.Job(job.ID).Warn().Err(err).Msg("⚠️ notification failed")
		}
	}()
}

func (o *Orchestrator) waitNotifications() {
	done := make(chan struct{})
	go func() {
		o.notifying.Wait()
		close(done)
	}()

	timer := time.NewTimer(o.notifyTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		log.Warn().Dur("waited", o.notifyTimeout).Msg("⚠️ gave up waiting for notifications")
	}
}

// scrape holds the page for the whole search and always releases it.
func (o *Orchestrator) scrape(ctx context.Context, id string, details domain.Details) (listing domain.Listing, err error) {
	h, err := o.session.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire page: %w", err)
	}
	defer o.session.Release(h)

	defer func() {
		if r := recover(); r != nil {
			listing = nil
			err = fmt.Errorf("scrape panicked: %v", r)
		}
		if err != nil && !errors.Is(err, domain.ErrNoResults) {
			o.capture(h.Page(), id, err)
		}
	}()

	return scraper.Run(ctx, o.scraper, h.Page(), details)
}

func (o *Orchestrator) capture(page playwright.Page, id string, cause error) {
	if o.shots == nil || page == nil {
		return
	}
	if _, err := o.shots.Capture(page, "job-"+id, cause.Error()); err != nil {
		logging.Job(id).Warn().Err(err).Msg("⚠️ failure screenshot not saved")
	}
}

func (o *Orchestrator) finish(ctx context.Context, id string, status domain.JobStatus, result domain.Result) (domain.Job, error) {
	return o.store.Update(ctx, id, func(j *domain.Job) error {
		return j.Finish(status, result, o.now())
	})
}

func (o *Orchestrator) GetJob(ctx context.Context, id string) (domain.Job, error) {
	return o.store.Get(ctx, id)
}

// ListJobs returns payload-free summaries ordered by creation time.
func (o *Orchestrator) ListJobs(ctx context.Context) ([]domain.JobSummary, error) {
	jobs, err := o.store.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.JobSummary, 0, len(jobs))
	for _, j := range jobs {
		summaries = append(summaries, j.Summary())
	}
	return summaries, nil
}

// QueueDepth is the number of jobs waiting for the page.
func (o *Orchestrator) QueueDepth() int {
	return o.scheduler.Pending()
}
