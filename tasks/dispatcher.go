package tasks

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"shopfront-backend/dtos"
	"shopfront-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task kinds accepted by the dispatcher.
const (
	TaskRecomputePrices    = "recompute_prices"
	TaskRecomputeAllPrices = "recompute_all_prices"
	TaskLifecycleSweep     = "lifecycle_sweep"
)

// maxAttempts gives every task one redelivery. The underlying operations are
// idempotent, so running a task twice is harmless.
const maxAttempts = 2

var ErrQueueFull = errors.New("task queue is full")

type task struct {
	kind        string
	promotionID uuid.UUID
	jobID       uuid.UUID
	attempts    int
}

// Dispatcher is the async boundary of the promotion engine: callers enqueue
// work and move on, a small worker pool executes it out of the request path.
// Each submission registers a job in the job store for status polling.
type Dispatcher struct {
	db      *gorm.DB
	store   *utils.JobStore
	queue   chan task
	wg      sync.WaitGroup
	now     func() time.Time
	workers int
	started bool
	closed  bool
	mu      sync.Mutex
}

func NewDispatcher(db *gorm.DB, store *utils.JobStore, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 2
	}

	return &Dispatcher{
		db:      db,
		store:   store,
		queue:   make(chan task, queueSize),
		now:     time.Now,
		workers: workers,
	}
}

// Start launches the worker pool. Safe to call once.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Shutdown stops accepting work, drains the queue, and waits for in-flight
// tasks until the context expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.started || d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnqueueRecompute submits a single-promotion price recomputation.
func (d *Dispatcher) EnqueueRecompute(promotionID uuid.UUID) (uuid.UUID, error) {
	return d.enqueue(task{kind: TaskRecomputePrices, promotionID: promotionID})
}

// EnqueueRecomputeAll submits a full reconciliation over every association row.
func (d *Dispatcher) EnqueueRecomputeAll() (uuid.UUID, error) {
	return d.enqueue(task{kind: TaskRecomputeAllPrices})
}

// EnqueueSweep submits one lifecycle sweep over all scheduled promotions.
func (d *Dispatcher) EnqueueSweep() (uuid.UUID, error) {
	return d.enqueue(task{kind: TaskLifecycleSweep})
}

func (d *Dispatcher) enqueue(t task) (uuid.UUID, error) {
	job := d.store.CreateJob(t.kind)
	t.jobID = job.ID

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.store.UpdateJob(job.ID, func(j *dtos.TaskJob) {
			j.Error = "dispatcher is shut down"
		})
		d.store.CompleteJob(job.ID, dtos.JobStatusFailed)
		return job.ID, errors.New("dispatcher is shut down")
	}

	select {
	case d.queue <- t:
		return job.ID, nil
	default:
		d.store.UpdateJob(job.ID, func(j *dtos.TaskJob) {
			j.Error = ErrQueueFull.Error()
		})
		d.store.CompleteJob(job.ID, dtos.JobStatusFailed)
		return job.ID, ErrQueueFull
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for t := range d.queue {
		d.run(t)
	}
}

func (d *Dispatcher) run(t task) {
	d.store.SetProcessing(t.jobID)

	err := d.execute(t)
	if err == nil {
		d.store.CompleteJob(t.jobID, dtos.JobStatusCompleted)
		return
	}

	t.attempts++
	if t.attempts < maxAttempts && d.redeliver(t) {
		log.Printf("task %s (job %s) failed, redelivering: %v", t.kind, t.jobID, err)
		return
	}

	log.Printf("task %s (job %s) failed permanently: %v", t.kind, t.jobID, err)
	d.store.UpdateJob(t.jobID, func(j *dtos.TaskJob) {
		j.Error = err.Error()
	})
	d.store.CompleteJob(t.jobID, dtos.JobStatusFailed)
}

// redeliver requeues a failed task without blocking the worker. The lock is
// held across the send so Shutdown cannot close the queue mid-send; a full
// queue means the task fails like any exhausted one.
func (d *Dispatcher) redeliver(t task) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- t:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) execute(t task) error {
	switch t.kind {
	case TaskRecomputePrices:
		stats, err := RecomputePromotionPrices(d.db, t.promotionID)
		if err != nil {
			return err
		}
		d.store.UpdateJob(t.jobID, func(j *dtos.TaskJob) {
			j.Updated = stats.Updated
			j.Skipped = stats.Skipped
		})
		return nil

	case TaskRecomputeAllPrices:
		stats, err := RecomputeAllPrices(d.db)
		d.store.UpdateJob(t.jobID, func(j *dtos.TaskJob) {
			j.Updated = stats.Updated
			j.Skipped = stats.Skipped
		})
		return err

	case TaskLifecycleSweep:
		stats, err := RunLifecycleSweep(d.db, d.now())
		if err != nil {
			return err
		}
		d.store.UpdateJob(t.jobID, func(j *dtos.TaskJob) {
			j.Evaluated = stats.Evaluated
			j.Activated = stats.Activated
			j.Deactivated = stats.Deactivated
			j.Expired = stats.Expired
		})
		if stats.Failed > 0 {
			return errors.New("lifecycle sweep finished with failed promotions")
		}
		return nil

	default:
		return errors.New("unknown task kind: " + t.kind)
	}
}
