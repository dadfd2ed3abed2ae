package domain

import "time"

type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Outcome separates the three terminal shapes a job can take, so clients
// never have to guess the outcome from the payload.
type Outcome string

const (
	OutcomeListing   Outcome = "listing"
	OutcomeNoResults Outcome = "no_results"
	OutcomeError     Outcome = "error"
)

// NoResultsMessage is the soft outcome text written when the search header reports zero matches.
const NoResultsMessage = "No results found."

// Details are the request parameters of a scrape. Immutable once the job exists.
type Details struct {
	Location string `json:"location"`
	Role     string `json:"role"`
	Scroll   int    `json:"scroll"`
}

// Result is the terminal payload of a job. JobData is set for every listing
// outcome, zero companies included.
type Result struct {
	Outcome   Outcome  `json:"outcome"`
	JobData   *Listing `json:"job_data,omitempty"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
}

// Job is one unit of scrape work and its outcome.
// CompletedAt and Result are non-nil exactly when Status is not pending.
type Job struct {
	ID          string     `json:"id"`
	Status      JobStatus  `json:"status"`
	Details     Details    `json:"details"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Result      *Result    `json:"result"`
}

// JobSummary is the payload-free view served by the job list.
type JobSummary struct {
	ID          string     `json:"job_id"`
	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func NewPendingJob(id string, details Details, now time.Time) Job {
	return Job{
		ID:        id,
		Status:    StatusPending,
		Details:   details,
		CreatedAt: now.UTC(),
	}
}

func (j Job) IsTerminal() bool {
	return j.Status != StatusPending
}

func (j Job) Summary() JobSummary {
	return JobSummary{
		ID:          j.ID,
		Status:      j.Status,
		CreatedAt:   j.CreatedAt,
		CompletedAt: j.CompletedAt,
	}
}

// Finish moves a pending job to its terminal state. It is the only way a job
// record leaves pending and it refuses to touch a job that already finished.
func (j *Job) Finish(status JobStatus, result Result, now time.Time) error {
	if j.IsTerminal() {
		return ErrJobFinalized
	}
	if status == StatusPending {
		return ErrInvalidTransition
	}
	completed := now.UTC()
	j.Status = status
	j.CompletedAt = &completed
	j.Result = &result
	return nil
}

func ListingResult(listing Listing) Result {
	if listing == nil {
		listing = Listing{}
	}
	return Result{Outcome: OutcomeListing, JobData: &listing}
}

func NoResultsResult() Result {
	return Result{Outcome: OutcomeNoResults, Error: NoResultsMessage}
}

func FailureResult(err error) Result {
	return Result{
		Outcome:   OutcomeError,
		Error:     err.Error(),
		ErrorKind: ErrorKindOf(err),
	}
}
