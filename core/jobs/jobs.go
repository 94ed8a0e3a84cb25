// Package jobs tracks fire-and-forget background tasks in process memory.
// A job is created pending, flips to running when its task starts, and
// ends complete or failed. Finished jobs stay queryable for the lifetime
// of the process.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/campusmaps/studyspot/core/logger"
)

// Status is the lifecycle state of a job. There are no transitions out
// of the terminal states, no retry and no cancellation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Job is the queryable record of one background task.
type Job struct {
	JobID     uuid.UUID       `json:"job_id"`
	Status    Status          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Task produces the job result. A returned error fails the job with the
// error text as its result.
type Task func(ctx context.Context) (interface{}, error)

// Tracker keeps all jobs of the process. The zero value is not usable,
// create trackers with NewTracker.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{jobs: map[uuid.UUID]*Job{}}
}

// Run registers a new pending job and starts its task on a detached
// goroutine. It returns the job id immediately; callers poll Get for the
// outcome. The passed context only carries values (such as the request
// logger), the task is not cancelled when the originating request ends.
func (t *Tracker) Run(ctx context.Context, task Task) uuid.UUID {
	now := time.Now().UTC()
	job := &Job{
		JobID:     uuid.New(),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.mu.Lock()
	t.jobs[job.JobID] = job
	t.mu.Unlock()

	rlog := logger.FromContext(ctx)
	go func() {
		ctx := logger.WithLogger(context.Background(), rlog)
		defer func() {
			if r := recover(); r != nil {
				rlog.Errorf("job %s panicked: %v", job.JobID, r)
				t.finish(job.JobID, StatusFailed, fmt.Sprintf("panic: %v", r))
			}
		}()

		t.setStatus(job.JobID, StatusRunning)
		result, err := task(ctx)
		if err != nil {
			rlog.Infof("job %s failed: %v", job.JobID, err)
			t.finish(job.JobID, StatusFailed, err.Error())
			return
		}
		t.finish(job.JobID, StatusComplete, result)
	}()
	return job.JobID
}

// Get returns a snapshot of the job, and whether it exists.
func (t *Tracker) Get(id uuid.UUID) (Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (t *Tracker) setStatus(id uuid.UUID, status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job := t.jobs[id]
	job.Status = status
	job.UpdatedAt = time.Now().UTC()
}

func (t *Tracker) finish(id uuid.UUID, status Status, result interface{}) {
	raw, err := json.Marshal(result)
	if err != nil {
		status = StatusFailed
		raw, _ = json.Marshal(err.Error())
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	job := t.jobs[id]
	job.Status = status
	job.Result = raw
	job.UpdatedAt = time.Now().UTC()
}
