package playback

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaybackURL_ResolvesAndMemoizes(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/service/v1/medias/live/replay/vid-1/playback_area_context", r.URL.Path)
		assert.Equal(t, "en", r.URL.Query().Get("languageCode"))
		fmt.Fprint(w, `{"code":"0000","message":"ok","data":{"media":{"live":{"replay":{"hls":{"playbackUrl":"https://cdn/replay.m3u8"}}}}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	src, err := c.PlaybackURL(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/replay.m3u8", src)

	_, err = c.PlaybackURL(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "resolved urls should be memoized")
}

func TestPlaybackURL_ServiceCodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"4010","message":"login required"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	_, err := c.PlaybackURL(context.Background(), "vid-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login required")
}

func TestPlaybackURL_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	_, err := c.PlaybackURL(context.Background(), "vid-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
