package services

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus tracks a background exchange job through its lifetime.
type JobStatus string

const (
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is one bulk exchange operation (import from stream or URL). Bulk
// operations must not block the interactive surface, so they queue here and
// completion is observed by polling or by sink notifications.
type Job struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Status    JobStatus `json:"status"`
	DeckID    int64     `json:"deck_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type queuedJob struct {
	id  string
	run func() (int64, error)
}

// ExchangeWorker runs exchange jobs one at a time in the background. Imports
// serialize so two bulk writes never interleave on the single-writer store.
type ExchangeWorker struct {
	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	queue    chan queuedJob
	jobs     map[string]*Job
	logger   *slog.Logger
}

// NewExchangeWorker creates a new worker instance
func NewExchangeWorker(logger *slog.Logger) *ExchangeWorker {
	return &ExchangeWorker{
		stopChan: make(chan struct{}),
		queue:    make(chan queuedJob, 16),
		jobs:     make(map[string]*Job),
		logger:   logger,
	}
}

// Start begins the background worker
func (w *ExchangeWorker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("exchange worker started")
	go w.run()
}

// Stop gracefully stops the worker; queued jobs that have not started are
// dropped.
func (w *ExchangeWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopChan)
	w.running = false
	w.logger.Info("exchange worker stopped")
}

// Enqueue registers a job and queues it for execution. run returns the id of
// the deck the job produced, if any.
func (w *ExchangeWorker) Enqueue(kind string, run func() (int64, error)) *Job {
	job := &Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    JobRunning,
		CreatedAt: time.Now(),
	}

	w.mu.Lock()
	w.jobs[job.ID] = job
	w.mu.Unlock()

	select {
	case w.queue <- queuedJob{id: job.ID, run: run}:
	case <-w.stopChan:
		w.finish(job.ID, 0, errWorkerStopped)
	}

	return w.snapshot(job.ID)
}

// Job returns a copy of the job's current state.
func (w *ExchangeWorker) Job(id string) (*Job, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	job, ok := w.jobs[id]
	if !ok {
		return nil, false
	}
	copied := *job
	return &copied, true
}

func (w *ExchangeWorker) run() {
	for {
		select {
		case job := <-w.queue:
			deckID, err := job.run()
			w.finish(job.id, deckID, err)
			if err != nil {
				w.logger.Error("exchange job failed", "job_id", job.id, "error", err)
			} else {
				w.logger.Info("exchange job finished", "job_id", job.id, "deck_id", deckID)
			}
		case <-w.stopChan:
			return
		}
	}
}

func (w *ExchangeWorker) finish(id string, deckID int64, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	job, ok := w.jobs[id]
	if !ok {
		return
	}
	if err != nil {
		job.Status = JobFailed
		job.Error = err.Error()
		return
	}
	job.Status = JobDone
	job.DeckID = deckID
}

func (w *ExchangeWorker) snapshot(id string) *Job {
	job, _ := w.Job(id)
	return job
}

var errWorkerStopped = errors.New("exchange worker stopped")
