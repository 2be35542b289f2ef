package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/manifestlabs/manifest/internal/pipeline"
)

type fakeProcessor struct {
	mu     sync.Mutex
	runs   []string
	err    error
	panics bool
}

func (f *fakeProcessor) Process(_ context.Context, videoID, _ string, _ pipeline.Settings) (*pipeline.AnalysisResult, error) {
	if f.panics {
		panic("bad asset")
	}
	f.mu.Lock()
	f.runs = append(f.runs, videoID)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.AnalysisResult{Duration: 10}, nil
}

func TestWorkerPoolProcessesJobs(t *testing.T) {
	proc := &fakeProcessor{}
	pool := New(zerolog.Nop(), proc, 2)
	pool.Start(context.Background())

	var jobs []Job
	for _, id := range []string{"a", "b", "c"} {
		job, err := pool.Enqueue(id, id+".mp4", pipeline.DefaultSettings())
		if err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
		jobs = append(jobs, job)
	}

	pool.Stop()

	proc.mu.Lock()
	runs := len(proc.runs)
	proc.mu.Unlock()
	if runs != 3 {
		t.Errorf("processed %d jobs, want 3", runs)
	}

	for _, job := range jobs {
		got, ok := pool.Job(job.ID)
		if !ok {
			t.Fatalf("job %s not found", job.ID)
		}
		if got.Status != StatusCompleted {
			t.Errorf("job %s status = %s, want %s", job.ID, got.Status, StatusCompleted)
		}
		if got.Result == nil || got.Result.Duration != 10 {
			t.Errorf("job %s missing result", job.ID)
		}
	}
}

func TestWorkerPoolRecordsFailure(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("probe failed")}
	pool := New(zerolog.Nop(), proc, 1)
	pool.Start(context.Background())

	job, err := pool.Enqueue("bad", "bad.mp4", pipeline.DefaultSettings())
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	pool.Stop()

	got, _ := pool.Job(job.ID)
	if got.Status != StatusFailed {
		t.Errorf("status = %s, want %s", got.Status, StatusFailed)
	}
	if got.Err == nil {
		t.Error("expected job error")
	}
}

func TestWorkerPoolSurvivesPanic(t *testing.T) {
	proc := &fakeProcessor{panics: true}
	pool := New(zerolog.Nop(), proc, 1)
	pool.Start(context.Background())

	job, err := pool.Enqueue("panicky", "p.mp4", pipeline.DefaultSettings())
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	pool.Stop()

	got, _ := pool.Job(job.ID)
	if got.Status != StatusFailed {
		t.Errorf("status = %s, want %s after panic", got.Status, StatusFailed)
	}
}

func TestWorkerPoolEnqueueAfterStopFails(t *testing.T) {
	proc := &fakeProcessor{}
	pool := New(zerolog.Nop(), proc, 1)
	pool.Start(context.Background())
	pool.Stop()

	if _, err := pool.Enqueue("late", "late.mp4", pipeline.DefaultSettings()); err == nil {
		t.Error("expected error enqueueing into a stopped pool")
	}

	// Stop is idempotent
	pool.Stop()
}

func TestWorkerPoolJobReturnsSnapshot(t *testing.T) {
	proc := &fakeProcessor{}
	pool := New(zerolog.Nop(), proc, 1)
	pool.Start(context.Background())

	job, err := pool.Enqueue("a", "a.mp4", pipeline.DefaultSettings())
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	pool.Stop()

	got, _ := pool.Job(job.ID)
	got.Status = StatusFailed

	again, _ := pool.Job(job.ID)
	if again.Status != StatusCompleted {
		t.Errorf("mutating a snapshot changed the tracked job: %s", again.Status)
	}
}

func TestWorkerPoolUniqueJobIDs(t *testing.T) {
	proc := &fakeProcessor{}
	pool := New(zerolog.Nop(), proc, 1)
	pool.Start(context.Background())

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		job, err := pool.Enqueue("v", "v.mp4", pipeline.DefaultSettings())
		if err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
		if seen[job.ID] {
			t.Fatalf("duplicate job id %s", job.ID)
		}
		seen[job.ID] = true
	}

	pool.Stop()
}
