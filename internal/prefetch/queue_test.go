package prefetch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commasubs/subtitle-overlay/internal/sub"
)

type fakeLoader struct {
	mu    sync.Mutex
	langs map[string][]string
	loads map[string]int
	gate  chan struct{}
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		langs: make(map[string][]string),
		loads: make(map[string]int),
	}
}

func (f *fakeLoader) Load(_ context.Context, mediaID string) (sub.Manifest, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.loads[mediaID]++
	f.mu.Unlock()
	return sub.Manifest{ID: mediaID}, nil
}

func (f *fakeLoader) Languages(mediaID string) ([]string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	langs, ok := f.langs[mediaID]
	return langs, ok
}

func (f *fakeLoader) loadCount(mediaID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[mediaID]
}

func TestQueue_AppliesLanguages(t *testing.T) {
	loader := newFakeLoader()
	loader.langs["vid1"] = []string{"en", "ko"}

	q := NewQueue(loader, 2)
	q.Start(context.Background())
	defer q.Stop()

	var mu sync.Mutex
	var got []string
	ok := q.Enqueue(Job{
		DedupeKey: "vid1#slot0",
		MediaID:   "vid1",
		Apply: func(langs []string) {
			mu.Lock()
			got = langs
			mu.Unlock()
		},
	})
	require.True(t, ok)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"en", "ko"}, got)
}

func TestQueue_DeduplicatesPendingKeys(t *testing.T) {
	loader := newFakeLoader()
	loader.gate = make(chan struct{})

	q := NewQueue(loader, 1)
	q.Start(context.Background())
	defer q.Stop()

	apply := func([]string) {}
	require.True(t, q.Enqueue(Job{DedupeKey: "k", MediaID: "vid1", Apply: apply}))
	assert.False(t, q.Enqueue(Job{DedupeKey: "k", MediaID: "vid1", Apply: apply}))

	// A different slot for the same video is separate work.
	assert.True(t, q.Enqueue(Job{DedupeKey: "k2", MediaID: "vid1", Apply: apply}))

	close(loader.gate)

	require.Eventually(t, func() bool {
		return loader.loadCount("vid1") == 2
	}, time.Second, 10*time.Millisecond)

	// Once drained the key is reusable.
	assert.True(t, q.Enqueue(Job{DedupeKey: "k", MediaID: "vid1", Apply: apply}))
}

func TestQueue_RejectsInvalidJobs(t *testing.T) {
	q := NewQueue(newFakeLoader(), 1)

	assert.False(t, q.Enqueue(Job{MediaID: "vid1"}))
	assert.False(t, q.Enqueue(Job{Apply: func([]string) {}}))
}
