package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classsync/scheduler-core/internal/dto"
	appErrors "github.com/classsync/scheduler-core/pkg/errors"
	"github.com/classsync/scheduler-core/pkg/jobs"
)

// AsyncJobStatus is the lifecycle state of a submitted generation job.
type AsyncJobStatus string

const (
	AsyncJobQueued   AsyncJobStatus = "queued"
	AsyncJobRunning  AsyncJobStatus = "running"
	AsyncJobComplete AsyncJobStatus = "complete"
	AsyncJobFailed   AsyncJobStatus = "failed"
)

// AsyncJobResult is the polled outcome of a submitted generation job.
type AsyncJobResult struct {
	Status   AsyncJobStatus
	Response *dto.GenerateTimetableResponse
	Err      error
}

const asyncGenerateJobType = "generate_timetable"

// AsyncScheduleGenerator runs GA generation requests on a background
// worker pool instead of blocking the caller, since a full GA run can
// take much longer than an interactive request should block for.
type AsyncScheduleGenerator struct {
	inner *ScheduleGeneratorService
	queue *jobs.Queue

	mu      sync.Mutex
	results map[string]AsyncJobResult
}

// NewAsyncScheduleGenerator wraps inner with a worker queue of the given
// concurrency. The queue is started immediately against ctx.
func NewAsyncScheduleGenerator(ctx context.Context, inner *ScheduleGeneratorService, workers int, logger *zap.Logger) *AsyncScheduleGenerator {
	a := &AsyncScheduleGenerator{
		inner:   inner,
		results: make(map[string]AsyncJobResult),
	}
	a.queue = jobs.NewQueue(asyncGenerateJobType, a.handle, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	a.queue.Start(ctx)
	return a
}

// Stop drains and stops the underlying worker pool.
func (a *AsyncScheduleGenerator) Stop() {
	a.queue.Stop()
}

// Submit enqueues a generation request and returns immediately with a job
// ID the caller can poll via Result.
func (a *AsyncScheduleGenerator) Submit(req dto.GenerateTimetableRequest) (string, error) {
	jobID := uuid.NewString()

	a.mu.Lock()
	a.results[jobID] = AsyncJobResult{Status: AsyncJobQueued}
	a.mu.Unlock()

	if err := a.queue.Enqueue(jobs.Job{ID: jobID, Type: asyncGenerateJobType, Payload: req}); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue timetable generation job")
	}
	return jobID, nil
}

// Result polls the current status of a submitted job.
func (a *AsyncScheduleGenerator) Result(jobID string) (AsyncJobResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	result, ok := a.results[jobID]
	return result, ok
}

func (a *AsyncScheduleGenerator) handle(ctx context.Context, job jobs.Job) error {
	a.setStatus(job.ID, AsyncJobResult{Status: AsyncJobRunning})

	req, ok := job.Payload.(dto.GenerateTimetableRequest)
	if !ok {
		err := appErrors.Clone(appErrors.ErrInternal, "malformed generation job payload")
		a.setStatus(job.ID, AsyncJobResult{Status: AsyncJobFailed, Err: err})
		return err
	}

	resp, err := a.inner.Generate(ctx, req)
	if err != nil {
		a.setStatus(job.ID, AsyncJobResult{Status: AsyncJobFailed, Err: err})
		return err
	}

	a.setStatus(job.ID, AsyncJobResult{Status: AsyncJobComplete, Response: resp})
	return nil
}

func (a *AsyncScheduleGenerator) setStatus(jobID string, result AsyncJobResult) {
	a.mu.Lock()
	a.results[jobID] = result
	a.mu.Unlock()
}
