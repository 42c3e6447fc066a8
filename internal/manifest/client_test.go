package manifest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commasubs/subtitle-overlay/internal/sub"
)

type cdnStub struct {
	mu        sync.Mutex
	manifests map[string]sub.Manifest
	status    map[string]int
	hits      map[string]int
}

func newCDNStub() *cdnStub {
	return &cdnStub{
		manifests: make(map[string]sub.Manifest),
		status:    make(map[string]int),
		hits:      make(map[string]int),
	}
}

func (s *cdnStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/m/{id}/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		s.mu.Lock()
		s.hits[id]++
		code, forced := s.status[id]
		m, ok := s.manifests[id]
		s.mu.Unlock()

		if forced {
			w.WriteHeader(code)
			return
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(m)
	})
	mux.HandleFunc("/t/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("WEBVTT\n\n00:00.000 --> 00:02.000\nhello\n"))
	})
	return mux
}

func (s *cdnStub) hitCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[id]
}

func testManifest(id string) sub.Manifest {
	return sub.Manifest{
		ID: id,
		Subtitles: []sub.Track{
			{ID: "t1", LangCode: "en", LangName: "English", Generator: "human", Team: "subs", Updated: 1700000000},
			{ID: "t2", LangCode: "ko", LangName: "Korean", Generator: "machine", Team: "auto", Updated: 1700000001},
		},
	}
}

func TestClient_LoadCachesSuccess(t *testing.T) {
	stub := newCDNStub()
	stub.manifests["vid1"] = testManifest("vid1")
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := NewClient(srv.URL, 0)

	m, err := c.Load(context.Background(), "vid1")
	require.NoError(t, err)
	assert.Len(t, m.Subtitles, 2)

	// Second load is served from cache with no freshness check.
	_, err = c.Load(context.Background(), "vid1")
	require.NoError(t, err)
	assert.Equal(t, 1, stub.hitCount("vid1"))
	assert.True(t, c.Cached("vid1"))

	langs, ok := c.Languages("vid1")
	require.True(t, ok)
	assert.Equal(t, []string{"en", "ko"}, langs)
}

func TestClient_NotFoundIsNotCached(t *testing.T) {
	stub := newCDNStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := NewClient(srv.URL, 0)

	m, err := c.Load(context.Background(), "vid404")
	require.NoError(t, err)
	assert.Empty(t, m.Subtitles)
	assert.False(t, c.Cached("vid404"))

	langs, ok := c.Languages("vid404")
	require.True(t, ok, "zero subtitles is a recorded result")
	assert.Empty(t, langs)

	// The next load hits the network again; once the manifest exists it is
	// served and cached.
	stub.mu.Lock()
	stub.manifests["vid404"] = testManifest("vid404")
	stub.mu.Unlock()

	m, err = c.Load(context.Background(), "vid404")
	require.NoError(t, err)
	assert.Len(t, m.Subtitles, 2)
	assert.Equal(t, 2, stub.hitCount("vid404"))
	assert.True(t, c.Cached("vid404"))
}

func TestClient_ServerErrorPropagates(t *testing.T) {
	stub := newCDNStub()
	stub.status["vid500"] = http.StatusInternalServerError
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := NewClient(srv.URL, 0)

	_, err := c.Load(context.Background(), "vid500")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, ok := c.Languages("vid500")
	assert.False(t, ok, "failed fetches must not record a language list")
}

func TestClient_MalformedManifestIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)

	_, err := c.Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, c.Cached("bad"))
}

func TestClient_EvictionMakesRoomForNewManifests(t *testing.T) {
	stub := newCDNStub()
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		stub.manifests[id] = testManifest(id)
	}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := NewClient(srv.URL, 2)

	for _, id := range ids {
		_, err := c.Load(context.Background(), id)
		require.NoError(t, err)
	}

	assert.False(t, c.Cached("a"), "oldest manifest should be evicted")
	assert.True(t, c.Cached("b"))
	assert.True(t, c.Cached("c"))

	// Evicted id loads again from the network.
	_, err := c.Load(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.hitCount("a"))
}

func TestClient_TrackURLEncodesUpdatedAsHex(t *testing.T) {
	c := NewClient("https://cdn.example", 0)
	track := sub.Track{ID: "t9", LangCode: "en", Updated: 255}

	assert.Equal(t, "https://cdn.example/t/t9/t9-en-ff.vtt", c.TrackURL(track))
}

func TestClient_FetchTrack(t *testing.T) {
	stub := newCDNStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := NewClient(srv.URL, 0)

	data, err := c.FetchTrack(context.Background(), sub.Track{ID: "t1", LangCode: "en", Updated: 1})
	require.NoError(t, err)
	assert.Contains(t, string(data), "WEBVTT")
}

func TestClient_FetchTrackErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)

	_, err := c.FetchTrack(context.Background(), sub.Track{ID: "t1", LangCode: "en"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_ConcurrentLoadsCoalesce(t *testing.T) {
	var inflight, maxInflight atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inflight.Add(1)
		for {
			cur := maxInflight.Load()
			if n <= cur || maxInflight.CompareAndSwap(cur, n) {
				break
			}
		}
		defer inflight.Add(-1)
		_ = json.NewEncoder(w).Encode(testManifest("vid1"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Load(context.Background(), "vid1")
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxInflight.Load(), int32(1), "duplicate in-flight fetches should coalesce")
}

func TestClient_LanguageUpdateCallback(t *testing.T) {
	stub := newCDNStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	c := NewClient(srv.URL, 0)

	var mu sync.Mutex
	updates := make(map[string][]string)
	c.OnLanguagesUpdated(func(id string, langs []string) {
		mu.Lock()
		updates[id] = langs
		mu.Unlock()
	})

	_, err := c.Load(context.Background(), "vid1")
	require.NoError(t, err)

	mu.Lock()
	assert.Empty(t, updates["vid1"])
	mu.Unlock()

	stub.mu.Lock()
	stub.manifests["vid1"] = testManifest("vid1")
	stub.mu.Unlock()

	_, err = c.Load(context.Background(), "vid1")
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, []string{"en", "ko"}, updates["vid1"])
	mu.Unlock()
}
