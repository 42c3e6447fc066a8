// Package prefetch loads subtitle availability for videos the viewer has not
// opened yet, so list regions (related videos, live shows) can carry
// "(cc: …)" labels. Jobs are deduplicated while pending and worked off by a
// small worker pool; results are ephemeral, the manifest client owns caching.
package prefetch

import (
	"context"
	"sync"

	"github.com/commasubs/subtitle-overlay/internal/sub"
	"github.com/commasubs/subtitle-overlay/pkg/log"
)

// Loader is the slice of the manifest client the queue needs.
type Loader interface {
	Load(ctx context.Context, mediaID string) (sub.Manifest, error)
	Languages(mediaID string) ([]string, bool)
}

// Job asks for the language list of one media id. Apply runs on a worker
// goroutine once the languages are known.
type Job struct {
	// DedupeKey collapses identical pending work, e.g. mediaID plus the
	// label slot identity. Empty keys are never deduplicated.
	DedupeKey string
	MediaID   string
	Apply     func(langs []string)
}

// Queue is a deduplicating label-prefetch worker pool.
type Queue struct {
	loader  Loader
	workers int

	mu      sync.Mutex
	pending map[string]struct{}
	started bool

	jobs     chan Job
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewQueue builds a queue with the given worker count (minimum one).
func NewQueue(loader Loader, workers int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		loader:  loader,
		workers: workers,
		pending: make(map[string]struct{}),
		jobs:    make(chan Job, 256),
		stopCh:  make(chan struct{}),
	}
}

// Start launches the workers. Calling Start twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx)
	}
}

// Stop shuts the workers down and waits for in-flight jobs.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() { close(q.stopCh) })
	q.wg.Wait()
}

// Enqueue schedules a job. It reports false when the job was dropped as a
// duplicate or because the queue is saturated.
func (q *Queue) Enqueue(job Job) bool {
	if job.Apply == nil || job.MediaID == "" {
		return false
	}

	q.mu.Lock()
	if job.DedupeKey != "" {
		if _, dup := q.pending[job.DedupeKey]; dup {
			q.mu.Unlock()
			return false
		}
		q.pending[job.DedupeKey] = struct{}{}
	}
	q.mu.Unlock()

	select {
	case q.jobs <- job:
		return true
	default:
		q.release(job.DedupeKey)
		log.Warn("prefetch queue full, dropping %s", job.MediaID)
		return false
	}
}

func (q *Queue) work(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-q.stopCh:
			return
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			q.run(ctx, job)
		}
	}
}

func (q *Queue) run(ctx context.Context, job Job) {
	defer q.release(job.DedupeKey)

	if _, err := q.loader.Load(ctx, job.MediaID); err != nil {
		log.Warn("prefetch %s: %v", job.MediaID, err)
		return
	}

	langs, _ := q.loader.Languages(job.MediaID)
	job.Apply(langs)
}

func (q *Queue) release(key string) {
	if key == "" {
		return
	}
	q.mu.Lock()
	delete(q.pending, key)
	q.mu.Unlock()
}
