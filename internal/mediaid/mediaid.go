// Package mediaid derives the stable per-video identifier used as the cache
// key and as the CDN path segment for manifest retrieval.
package mediaid

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/commasubs/subtitle-overlay/internal/sub"
)

// Encode builds a media id from a site name and the site-native video key.
// The encoding is URL-safe base64 without padding so the id can be used
// directly as a path segment.
func Encode(site sub.Site, key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(string(site) + ":" + key))
}

// Decode reverses Encode.
func Decode(id string) (sub.Site, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", "", fmt.Errorf("decode media id: %w", err)
	}
	site, key, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", "", fmt.Errorf("decode media id: missing site separator in %q", raw)
	}
	return sub.Site(site), key, nil
}
