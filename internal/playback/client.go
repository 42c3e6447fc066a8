// Package playback resolves berriz playback manifests. The site does not
// expose a video element on replay pages, so the session builds its own
// player from the platform's playback-area context API.
package playback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultAPIBase is the berriz service API host.
const DefaultAPIBase = "https://svc-api.berriz.in"

// apiResponse is the playback_area_context envelope. A code other than
// "0000" is a service-level failure even on HTTP 200.
type apiResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Media struct {
			Live struct {
				Replay struct {
					HLS struct {
						PlaybackURL string `json:"playbackUrl"`
					} `json:"hls"`
				} `json:"replay"`
			} `json:"live"`
		} `json:"media"`
	} `json:"data"`
}

// Client fetches playback URLs for replay videos. Lookups are authenticated
// through the caller-supplied HTTP client (cookie jar) and memoized per
// video id for the session's lifetime.
type Client struct {
	base string
	http *http.Client

	mu   sync.Mutex
	memo map[string]string
}

// NewClient builds a playback client. The HTTP client must carry the user's
// site session cookies; pass nil for a default client.
func NewClient(base string, h *http.Client) *Client {
	if base == "" {
		base = DefaultAPIBase
	}
	if h == nil {
		h = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: h,
		memo: make(map[string]string),
	}
}

// PlaybackURL resolves the HLS playback URL for a replay video id.
func (c *Client) PlaybackURL(ctx context.Context, videoID string) (string, error) {
	c.mu.Lock()
	if src, ok := c.memo[videoID]; ok {
		c.mu.Unlock()
		return src, nil
	}
	c.mu.Unlock()

	url := c.base + "/service/v1/medias/live/replay/" + videoID + "/playback_area_context?languageCode=en"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build playback request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch playback context %s: %w", videoID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%d: error loading video info, are you logged in?", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("parse playback context %s: %w", videoID, err)
	}
	if body.Code != "0000" {
		return "", fmt.Errorf("%s: %s", body.Code, body.Message)
	}

	src := body.Data.Media.Live.Replay.HLS.PlaybackURL

	c.mu.Lock()
	c.memo[videoID] = src
	c.mu.Unlock()

	return src, nil
}
