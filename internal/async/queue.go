package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
	"github.com/joseph-ayodele/nutrition-extractor/internal/entity"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document waiting for extraction.
type Job struct {
	Path        string
	Credential  string
	SubmittedAt time.Time
	TraceID     string
}

// JobResult is what a worker reports for a finished job.
type JobResult struct {
	Job      Job
	Status   constants.JobStatus
	Result   entity.ExtractionResult
	Err      error
	Duration time.Duration
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
