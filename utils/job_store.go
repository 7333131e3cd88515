package utils

import (
	"sync"
	"time"

	"shopfront-backend/dtos"

	"github.com/google/uuid"
)

// JobStore keeps background task runs in memory for status polling.
type JobStore struct {
	jobs map[uuid.UUID]*dtos.TaskJob
	mu   sync.RWMutex
}

// Global job store instance
var Store = NewJobStore()

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[uuid.UUID]*dtos.TaskJob)}
}

// CleanupOldJobs removes finished jobs older than 1 hour.
func (js *JobStore) CleanupOldJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	cutoff := time.Now().Add(-1 * time.Hour)
	for id, job := range js.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(js.jobs, id)
		}
	}
}

// CreateJob registers a new pending job of the given kind.
func (js *JobStore) CreateJob(kind string) *dtos.TaskJob {
	// Clean up old jobs on each new creation
	js.CleanupOldJobs()

	js.mu.Lock()
	defer js.mu.Unlock()

	job := &dtos.TaskJob{
		ID:         uuid.New(),
		Kind:       kind,
		Status:     dtos.JobStatusPending,
		EnqueuedAt: time.Now(),
	}

	js.jobs[job.ID] = job
	return job
}

// GetJob retrieves a snapshot of a job by ID.
func (js *JobStore) GetJob(id uuid.UUID) (dtos.TaskJob, bool) {
	js.mu.RLock()
	defer js.mu.RUnlock()

	job, exists := js.jobs[id]
	if !exists {
		return dtos.TaskJob{}, false
	}
	return *job, true
}

// SetProcessing marks a job as picked up by a worker.
func (js *JobStore) SetProcessing(id uuid.UUID) {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[id]; exists {
		job.Status = dtos.JobStatusProcessing
		job.Attempts++
		now := time.Now()
		job.StartedAt = &now
	}
}

// UpdateJob applies a mutation to a job under the store lock.
func (js *JobStore) UpdateJob(id uuid.UUID, updates func(*dtos.TaskJob)) {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[id]; exists {
		updates(job)
	}
}

// CompleteJob marks a job as finished with the given status.
func (js *JobStore) CompleteJob(id uuid.UUID, status string) {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[id]; exists {
		job.Status = status
		now := time.Now()
		job.CompletedAt = &now
	}
}
