// Package manifest retrieves subtitle manifests and track payloads from the
// CDN and caches them per content session.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/commasubs/subtitle-overlay/internal/cache"
	"github.com/commasubs/subtitle-overlay/internal/sub"
	"github.com/commasubs/subtitle-overlay/pkg/log"
)

// ErrUnavailable reports a manifest or track fetch that failed with a
// non-2xx, non-404 status. The subtitle feature is silently unavailable for
// that video; callers log and move on.
var ErrUnavailable = errors.New("subtitle source unavailable")

// Client fetches manifests and subtitle payloads for one content session.
//
// Successful manifests live in a bounded LRU cache; a 404 records an empty
// language list but never populates the cache, so a later fetch can pick up
// subtitles published after the first look. Concurrent loads for the same
// media id are coalesced into a single request.
type Client struct {
	host string
	http *http.Client

	group singleflight.Group

	mu       sync.Mutex
	cache    *cache.LRU[string, sub.Manifest]
	langs    map[string][]string
	onUpdate func(mediaID string, langs []string)
}

// NewClient builds a Client for the given CDN host. capacity bounds the
// manifest cache; pass 0 for the default.
func NewClient(host string, capacity int) *Client {
	return &Client{
		host:  strings.TrimRight(host, "/"),
		http:  &http.Client{Timeout: 30 * time.Second},
		cache: cache.NewLRU[string, sub.Manifest](capacity),
		langs: make(map[string][]string),
	}
}

// SetHTTPClient overrides the HTTP client, mainly for tests.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// OnLanguagesUpdated registers a callback invoked whenever the language index
// for a media id changes. Used by the recheck job to refresh badges.
func (c *Client) OnLanguagesUpdated(fn func(mediaID string, langs []string)) {
	c.mu.Lock()
	c.onUpdate = fn
	c.mu.Unlock()
}

// Load returns the manifest for a media id, fetching it from the CDN on a
// cache miss. A 404 yields an empty manifest and no error.
func (c *Client) Load(ctx context.Context, mediaID string) (sub.Manifest, error) {
	c.mu.Lock()
	if m, ok := c.cache.Get(mediaID); ok {
		c.mu.Unlock()
		return m, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(mediaID, func() (any, error) {
		return c.fetch(ctx, mediaID)
	})
	if err != nil {
		return sub.Manifest{}, err
	}
	return v.(sub.Manifest), nil
}

// Languages returns the recorded language codes for a media id. The second
// result reports whether the id has been looked up at all; a present id with
// an empty list means "no subtitles yet".
func (c *Client) Languages(mediaID string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	langs, ok := c.langs[mediaID]
	if !ok {
		return nil, false
	}
	out := make([]string, len(langs))
	copy(out, langs)
	return out, true
}

// EmptyIDs lists media ids whose last lookup found no subtitles.
func (c *Client) EmptyIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []string
	for id, langs := range c.langs {
		if len(langs) == 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Cached reports whether a manifest for the media id is currently cached.
func (c *Client) Cached(mediaID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.cache.Get(mediaID)
	return ok
}

// ManifestURL returns the CDN location of a media id's manifest.
func (c *Client) ManifestURL(mediaID string) string {
	return c.host + "/m/" + mediaID + "/manifest.json"
}

// TrackURL returns the CDN location of a track's WebVTT payload. The updated
// timestamp is hex-encoded into the file name so republished tracks get a
// fresh URL.
func (c *Client) TrackURL(t sub.Track) string {
	name := t.ID + "-" + t.LangCode + "-" + strconv.FormatInt(t.Updated, 16) + ".vtt"
	return c.host + "/t/" + t.ID + "/" + name
}

// FetchTrack downloads a track's WebVTT payload.
func (c *Client) FetchTrack(ctx context.Context, t sub.Track) ([]byte, error) {
	url := c.TrackURL(t)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build track request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch track %s: %w", t.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch track %s: status %d: %w", t.ID, resp.StatusCode, ErrUnavailable)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read track %s: %w", t.ID, err)
	}
	return data, nil
}

func (c *Client) fetch(ctx context.Context, mediaID string) (sub.Manifest, error) {
	url := c.ManifestURL(mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return sub.Manifest{}, fmt.Errorf("build manifest request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return sub.Manifest{}, fmt.Errorf("fetch manifest %s: %w", mediaID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No subtitles yet. Record the empty list for badge/label rendering
		// but keep the cache unpopulated so a later fetch can succeed.
		log.Debug("manifest %s: no subtitles yet", mediaID)
		c.record(mediaID, sub.Manifest{}, false)
		return sub.Manifest{}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return sub.Manifest{}, fmt.Errorf("fetch manifest %s: status %d: %w", mediaID, resp.StatusCode, ErrUnavailable)
	}

	var m sub.Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return sub.Manifest{}, fmt.Errorf("parse manifest %s: %w", mediaID, err)
	}

	c.record(mediaID, m, true)
	return m, nil
}

func (c *Client) record(mediaID string, m sub.Manifest, cacheIt bool) {
	langs := m.LangCodes()

	c.mu.Lock()
	prev, had := c.langs[mediaID]
	c.langs[mediaID] = langs
	if cacheIt {
		c.cache.Put(mediaID, m)
	}
	fn := c.onUpdate
	c.mu.Unlock()

	if fn != nil && (!had || !equalStrings(prev, langs)) {
		fn(mediaID, langs)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
