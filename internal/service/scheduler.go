package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"go-wellfound-scraper/internal/domain"
)

// Task is one queued scrape.
type Task struct {
	JobID   string
	Details domain.Details
}

// Scheduler is a bounded queue drained by a single worker. The browser page
// is the only execution resource, so more workers would only wait on it.
type Scheduler struct {
	queue chan Task
	grace time.Duration

	mu      sync.RWMutex
	stopped bool
}

func NewScheduler(size int) *Scheduler {
	if size <= 0 {
		size = 100
	}
	return &Scheduler{queue: make(chan Task, size)}
}

// WithShutdownGrace caps how long a running task may outlive the Run context.
// Zero leaves it uncapped.
func (s *Scheduler) WithShutdownGrace(d time.Duration) *Scheduler {
	s.grace = d
	return s
}

// Submit enqueues without blocking. It fails with domain.ErrQueueFull when the
// buffer is full and domain.ErrSessionClosed once the scheduler has stopped.
func (s *Scheduler) Submit(task Task) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return domain.ErrSessionClosed
	}

	select {
	case s.queue <- task:
		log.Debug().Str("job_id", task.JobID).Int("queued", len(s.queue)).Msg("job submitted")
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Run executes tasks one at a time until ctx is done. A task already running
// when ctx ends keeps going for up to the shutdown grace, after which its
// context is cancelled. Tasks still queued at that point are returned to the caller.
func (s *Scheduler) Run(ctx context.Context, handler func(context.Context, Task)) []Task {
	log.Info().Int("capacity", cap(s.queue)).Msg("starting job scheduler")
	runCtx, cancelRun := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelRun()
	if s.grace > 0 {
		grace := s.grace
		stopWatch := context.AfterFunc(ctx, func() {
			time.AfterFunc(grace, cancelRun)
		})
		defer stopWatch()
	}

	for {
		if ctx.Err() != nil {
			log.Info().Msg("stopping job scheduler")
			return s.stop()
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping job scheduler")
			return s.stop()
		case task := <-s.queue:
			handler(runCtx, task)
		}
	}
}

// Pending reports how many tasks wait in the queue.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

func (s *Scheduler) stop() []Task {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	var left []Task
	for {
		select {
		case task := <-s.queue:
			left = append(left, task)
		default:
			return left
		}
	}
}
