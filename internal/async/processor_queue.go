package async

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/nutrition-extractor/constants"
	"github.com/joseph-ayodele/nutrition-extractor/internal/common"
	"github.com/joseph-ayodele/nutrition-extractor/internal/entity"
)

// Processor is the extraction pipeline as seen by workers.
type Processor interface {
	Process(ctx context.Context, doc []byte, credential string) entity.ExtractionResult
}

// ReadFunc loads a job's document.
type ReadFunc func(path string) ([]byte, error)

type ProcessorQueue struct {
	proc    Processor
	sink    func(JobResult)
	read    ReadFunc
	logger  *slog.Logger
	workers int
	timeout time.Duration
	maxSize int64

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}
func WithMaxFileSize(n int64) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.maxSize = n
		}
	}
}
func WithReader(fn ReadFunc) Option {
	return func(q *ProcessorQueue) {
		if fn != nil {
			q.read = fn
		}
	}
}

// NewProcessorQueue starts the workers. sink receives every JobResult and is
// called from worker goroutines, so it must be safe for concurrent use.
func NewProcessorQueue(proc Processor, sink func(JobResult), logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = func(JobResult) {}
	}
	q := &ProcessorQueue{
		proc:    proc,
		sink:    sink,
		read:    os.ReadFile,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		maxSize: constants.MaxFileSize,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					res := q.run(job)
					if res.Err != nil {
						q.logger.Error("queue.job.failed", "worker_id", workerID, "path", job.Path, "trace_id", job.TraceID, "error", res.Err)
					} else {
						q.logger.Info("queue.job.done", "worker_id", workerID, "path", job.Path, "trace_id", job.TraceID,
							"success", res.Result.Success, "source", res.Result.Source, "elapsed_ms", res.Duration.Milliseconds())
					}
					q.sink(res)
				}

				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(job Job) JobResult {
	start := time.Now()
	out := JobResult{Job: job, Status: constants.JobStatusFailed}

	doc, err := q.read(job.Path)
	if err != nil {
		out.Err = fmt.Errorf("read %s: %w", job.Path, err)
		out.Duration = time.Since(start)
		return out
	}
	v := common.NewValidator().
		Field("file", doc, common.Required, common.MaxSize(q.maxSize)).
		Field("filename", job.Path, common.AllowedExtension)
	if err := v.Error(); err != nil {
		out.Err = err
		out.Duration = time.Since(start)
		return out
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	ctx = common.WithRequestID(ctx, job.TraceID)
	out.Result = q.proc.Process(ctx, doc, job.Credential)
	cancel()

	out.Duration = time.Since(start)
	if out.Result.Success {
		out.Status = constants.JobStatusDone
	}
	return out
}

// Enqueue blocks while the buffer is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	if job.TraceID == "" {
		job.TraceID = uuid.New().String()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "path", job.Path)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.enqueue.ok", "path", job.Path, "trace_id", job.TraceID)
		return nil
	default:
	}
	q.logger.Warn("queue.enqueue.backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
