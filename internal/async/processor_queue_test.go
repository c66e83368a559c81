package async

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
	"github.com/joseph-ayodele/nutrition-extractor/internal/common"
	"github.com/joseph-ayodele/nutrition-extractor/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	mu    sync.Mutex
	docs  []string
	reqID []string
}

func (p *recordingProcessor) Process(ctx context.Context, doc []byte, _ string) entity.ExtractionResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs = append(p.docs, string(doc))
	p.reqID = append(p.reqID, common.RequestIDFromContext(ctx))
	if strings.Contains(string(doc), "broken") {
		return entity.NewFailedResult("Extraction failed: broken", 0)
	}
	return entity.ExtractionResult{Success: true, Nutrients: entity.NewNutrientRecord(), Source: constants.SourceFallback}
}

func fakeFiles(files map[string]string) ReadFunc {
	return func(path string) ([]byte, error) {
		if s, ok := files[path]; ok {
			return []byte(s), nil
		}
		return nil, errors.New("no such file")
	}
}

func TestProcessorQueueRunsJobs(t *testing.T) {
	files := map[string]string{
		"a.pdf":      "%PDF a",
		"b.pdf":      "%PDF broken",
		"notes.docx": "%PDF c",
	}
	proc := &recordingProcessor{}
	var mu sync.Mutex
	results := map[string]JobResult{}
	q := NewProcessorQueue(proc, func(r JobResult) {
		mu.Lock()
		defer mu.Unlock()
		results[r.Job.Path] = r
	}, nil, WithWorkers(2), WithQueueSize(1), WithReader(fakeFiles(files)))

	for _, p := range []string{"a.pdf", "b.pdf", "notes.docx", "missing.pdf"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p, TraceID: "t-" + p}))
	}
	q.Shutdown(context.Background())

	require.Len(t, results, 4)
	assert.Equal(t, constants.JobStatusDone, results["a.pdf"].Status)
	assert.Equal(t, constants.JobStatusFailed, results["b.pdf"].Status)
	assert.NoError(t, results["b.pdf"].Err)
	assert.True(t, common.IsInvalidInput(results["notes.docx"].Err))
	assert.Error(t, results["missing.pdf"].Err)

	assert.Len(t, proc.docs, 2)
	assert.ElementsMatch(t, []string{"t-a.pdf", "t-b.pdf"}, proc.reqID)
}

func TestEnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&recordingProcessor{}, nil, nil, WithReader(fakeFiles(nil)))
	q.Shutdown(context.Background())

	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{Path: "a.pdf"}), ErrQueueClosed)
	assert.NotPanics(t, func() { q.Shutdown(context.Background()) })
}

func TestEnqueueRespectsContextWhenFull(t *testing.T) {
	block := make(chan struct{})
	q := NewProcessorQueue(&recordingProcessor{}, nil, nil,
		WithWorkers(1), WithQueueSize(1),
		WithReader(func(string) ([]byte, error) { <-block; return []byte("%PDF"), nil }),
	)
	defer func() {
		close(block)
		q.Shutdown(context.Background())
	}()

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "1.pdf"}))
	// the worker may or may not have picked up the first job yet
	_ = q.Enqueue(context.Background(), Job{Path: "2.pdf"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{Path: "3.pdf"})
	if err == nil {
		err = q.Enqueue(ctx, Job{Path: "4.pdf"})
	}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
