package jobs

import (
	"fmt"
	"testing"
	"time"

	"github.com/rawblock/forensics-engine/internal/scoring"
	"github.com/rawblock/forensics-engine/pkg/models"
)

func rec(source, target string, amount float64) models.RawRecord {
	return models.RawRecord{Source: source, Target: target, Amount: fmt.Sprintf("%f", amount)}
}

func waitForCompletion(t *testing.T, r *Runner, batchID string) Progress {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p, ok := r.Progress(batchID)
		if ok && p.Status != StatusRunning {
			return p
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job did not complete in time")
	return Progress{}
}

func TestRunnerTracksCompletedJob(t *testing.T) {
	var done *models.ResultDocument
	r := NewRunner(func(batchID string, doc *models.ResultDocument, err error) {
		done = doc
	})

	raw := []models.RawRecord{rec("A", "B", 1000)}
	r.Start("batch-1", raw, scoring.DefaultPolicy())

	p := waitForCompletion(t, r, "batch-1")
	if p.Status != StatusCompleted {
		t.Fatalf("expected completed status, got %v (err=%s)", p.Status, p.Error)
	}
	if done == nil {
		t.Fatal("expected onComplete to receive a result document")
	}

	result, ok := r.Result("batch-1")
	if !ok || result == nil {
		t.Fatal("expected Result to return the finished document")
	}
}

func TestRunnerUnknownBatchProgress(t *testing.T) {
	r := NewRunner(nil)
	if _, ok := r.Progress("does-not-exist"); ok {
		t.Fatal("expected unknown batch to report not found")
	}
}
