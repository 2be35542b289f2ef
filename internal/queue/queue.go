package queue

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/manifestlabs/manifest/internal/pipeline"
)

// Job status values
type Status string

const (
	StatusQueued     Status = "QUEUED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

const jobBuffer = 100

// Processor runs one analysis; satisfied by pipeline.Pipeline
type Processor interface {
	Process(ctx context.Context, videoID, videoPath string, settings pipeline.Settings) (*pipeline.AnalysisResult, error)
}

// Job is one queued pipeline run
type Job struct {
	ID        string
	VideoID   string
	VideoPath string
	Settings  pipeline.Settings
	Status    Status
	Err       error
	Result    *pipeline.AnalysisResult
	CreatedAt time.Time
}

// WorkerPool dispatches pipeline runs to a fixed set of workers. It is
// the optional asynchronous entry point; the pipeline itself never
// depends on it.
type WorkerPool struct {
	logger    zerolog.Logger
	processor Processor
	workers   int

	jobs chan *Job
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
	index  map[string]*Job
}

// New creates a worker pool; workers defaults to 1 when non-positive
func New(logger zerolog.Logger, processor Processor, workers int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}

	return &WorkerPool{
		logger:    logger.With().Str("component", "queue").Logger(),
		processor: processor,
		workers:   workers,
		jobs:      make(chan *Job, jobBuffer),
		index:     make(map[string]*Job),
	}
}

// Start launches the workers. They drain the queue until Stop is
// called or the context is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.logger.Info().Int("workers", wp.workers).Msg("starting worker pool")
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Enqueue registers a new job and returns a snapshot of it. It fails
// fast when the queue is full or already stopped.
func (wp *WorkerPool) Enqueue(videoID, videoPath string, settings pipeline.Settings) (Job, error) {
	job := &Job{
		ID:        uuid.New().String(),
		VideoID:   videoID,
		VideoPath: videoPath,
		Settings:  settings,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
	}

	// The lock is held across the send so Stop cannot close the channel
	// between the closed check and the send
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.closed {
		return Job{}, fmt.Errorf("worker pool is stopped")
	}

	select {
	case wp.jobs <- job:
		wp.index[job.ID] = job
		wp.logger.Info().Str("job_id", job.ID).Str("video_id", videoID).Msg("job enqueued")
		return *job, nil
	default:
		return Job{}, fmt.Errorf("job queue is full")
	}
}

// Job returns a snapshot of the job with the given id. Workers keep
// mutating the tracked job; the copy is safe to read without the pool's
// lock.
func (wp *WorkerPool) Job(id string) (Job, bool) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	job, ok := wp.index[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Stop closes the queue and waits for in-flight jobs to finish
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	wp.mu.Unlock()

	close(wp.jobs)
	wp.wg.Wait()
	wp.logger.Info().Msg("worker pool stopped")
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	logger := wp.logger.With().Int("worker", id).Logger()

	for job := range wp.jobs {
		if ctx.Err() != nil {
			wp.setOutcome(job, nil, ctx.Err())
			continue
		}
		wp.runJob(ctx, logger, job)
	}
}

// runJob executes one job with panic recovery so a bad asset can never
// take a worker down
func (wp *WorkerPool) runJob(ctx context.Context, logger zerolog.Logger, job *Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("job_id", job.ID).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("panic while processing job")
			wp.setOutcome(job, nil, fmt.Errorf("worker panic: %v", r))
		}
	}()

	wp.setStatus(job, StatusProcessing)
	logger.Info().Str("job_id", job.ID).Str("video_id", job.VideoID).Msg("processing job")

	result, err := wp.processor.Process(ctx, job.VideoID, job.VideoPath, job.Settings)
	wp.setOutcome(job, result, err)

	if err != nil {
		logger.Error().Err(err).Str("job_id", job.ID).Msg("job failed")
	} else {
		logger.Info().Str("job_id", job.ID).Msg("job complete")
	}
}

func (wp *WorkerPool) setStatus(job *Job, status Status) {
	wp.mu.Lock()
	job.Status = status
	wp.mu.Unlock()
}

func (wp *WorkerPool) setOutcome(job *Job, result *pipeline.AnalysisResult, err error) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	job.Result = result
	job.Err = err
	if err != nil {
		job.Status = StatusFailed
	} else {
		job.Status = StatusCompleted
	}
}
