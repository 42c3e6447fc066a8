package adapter

import (
	"context"
	"net/url"

	"github.com/commasubs/subtitle-overlay/internal/dom"
	"github.com/commasubs/subtitle-overlay/internal/mediaid"
	"github.com/commasubs/subtitle-overlay/internal/sub"
)

// RegionSpec names an auxiliary DOM area watched for availability labels.
// The entry selector tells the host glue where inside each list entry the
// label goes.
type RegionSpec struct {
	Name          string
	Selector      string
	EntrySelector string
}

// Site describes everything that differs between supported sites. The
// shared Driver owns all behavior; a Site is plain configuration plus a few
// small strategy functions.
type Site struct {
	Name          sub.Site
	VideoSelector string

	// MediaKey extracts the site-native video id from a page URL.
	MediaKey func(u *url.URL) (string, bool)

	// PageKey returns the navigation key used to detect page changes and
	// whether the page belongs to the site's video section at all.
	PageKey func(u *url.URL) (key string, relevant bool)

	// Mobile reports whether the hostname is the site's mobile variant.
	Mobile func(hostname string) bool

	// ExtraStyles returns site stylesheet rules appended to the cue styles,
	// e.g. suppressing the host's own caption rendering.
	ExtraStyles func(mobile bool) string

	// LabelSelectors are locations near the active video that receive the
	// availability label once a manifest is loaded.
	LabelSelectors []string

	// LabelMax bounds how many language codes a label spells out.
	LabelMax int

	// Regions are list areas whose entries get prefetched labels.
	Regions []RegionSpec

	// RestyleOnVideoFound applies cue styles as soon as the video element
	// appears even when auto-check is off, for sites where our styling also
	// improves the host's own subtitles.
	RestyleOnVideoFound bool

	// RequiresHLS gates session startup on HLS playback support.
	RequiresHLS bool

	// Bootstrap prepares the page before video detection, e.g. building a
	// player where the host does not provide one. Optional.
	Bootstrap func(ctx context.Context, page dom.Page, u *url.URL) error
}

// MediaID derives the cache/CDN key for a page URL.
func (s Site) MediaID(u *url.URL) (string, bool) {
	key, ok := s.MediaKey(u)
	if !ok {
		return "", false
	}
	return mediaid.Encode(s.Name, key), true
}
