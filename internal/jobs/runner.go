// Package jobs tracks batches large enough to run the pipeline in the
// background instead of inline with the HTTP request: an atomic
// progress record plus a cancellable goroutine per job.
package jobs

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/rawblock/forensics-engine/internal/engine"
	"github.com/rawblock/forensics-engine/internal/scoring"
	"github.com/rawblock/forensics-engine/pkg/models"
)

// Status is the lifecycle state of one tracked batch job.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Progress is the JobProgress shape the /progress endpoint returns.
type Progress struct {
	BatchID  string `json:"batch_id"`
	Status   Status `json:"status"`
	RowCount int    `json:"row_count"`
	Error    string `json:"error,omitempty"`
}

type job struct {
	progress atomic.Value // holds Progress
	cancel   context.CancelFunc
	result   *models.ResultDocument
	mu       sync.Mutex
}

// Runner tracks in-flight and completed batch jobs in memory. A restart
// loses in-memory job state; db.PostgresStore.GetBatchStatus is the
// fallback the progress endpoint uses once a job record is gone.
type Runner struct {
	mu   sync.RWMutex
	jobs map[string]*job

	// onComplete fires once per finished job, with the final result
	// (nil on failure) — the HTTP layer wires this to persistence and
	// the WebSocket hub.
	onComplete func(batchID string, doc *models.ResultDocument, err error)
}

func NewRunner(onComplete func(batchID string, doc *models.ResultDocument, err error)) *Runner {
	return &Runner{
		jobs:       make(map[string]*job),
		onComplete: onComplete,
	}
}

// Start launches the pipeline for raw in the background under batchID and
// returns immediately. The returned context.CancelFunc lets a caller
// (e.g. a service shutdown hook) abort the job early; the engine itself
// still runs to completion on its own goroutine once started, since
// engine.Analyze offers no internal cancellation point.
func (r *Runner) Start(batchID string, raw []models.RawRecord, policy scoring.Policy) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())

	j := &job{cancel: cancel}
	j.progress.Store(Progress{BatchID: batchID, Status: StatusRunning, RowCount: len(raw)})

	r.mu.Lock()
	r.jobs[batchID] = j
	r.mu.Unlock()

	go func() {
		doc, err := engine.AnalyzeWithPolicy(raw, policy)

		select {
		case <-ctx.Done():
			log.Printf("[jobs] batch %s cancelled before completion", batchID)
			return
		default:
		}

		j.mu.Lock()
		if err != nil {
			j.progress.Store(Progress{BatchID: batchID, Status: StatusFailed, RowCount: len(raw), Error: err.Error()})
		} else {
			j.result = doc
			j.progress.Store(Progress{BatchID: batchID, Status: StatusCompleted, RowCount: len(raw)})
		}
		j.mu.Unlock()

		if r.onComplete != nil {
			r.onComplete(batchID, doc, err)
		}
	}()

	return cancel
}

// Progress returns the current state of a tracked job.
func (r *Runner) Progress(batchID string) (Progress, bool) {
	r.mu.RLock()
	j, ok := r.jobs[batchID]
	r.mu.RUnlock()
	if !ok {
		return Progress{}, false
	}
	return j.progress.Load().(Progress), true
}

// Result returns the finished Result Document for a completed job, if any.
func (r *Runner) Result(batchID string) (*models.ResultDocument, bool) {
	r.mu.RLock()
	j, ok := r.jobs[batchID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.result != nil
}
