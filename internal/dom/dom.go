// Package dom defines the narrow host capabilities the site adapters depend
// on. The real implementations live in the per-browser glue; tests use fakes.
// Keeping the surface abstract keeps the page/video detection state machine
// testable without a DOM.
package dom

// TrackElement describes an injected subtitle track. The payload is the
// fetched WebVTT document, exposed to the player as a blob source.
type TrackElement struct {
	ID       string
	Label    string
	Language string
	Payload  []byte
}

// Video is the host video element a session injects tracks into.
type Video interface {
	// CurrentTrackID returns the id of the injected track element, or ""
	// when none is attached.
	CurrentTrackID() string
	// AttachTrack replaces any injected track element with the given one.
	AttachTrack(t TrackElement)
	// RemoveTracks removes every injected track element.
	RemoveTracks()
	// ShowTracks switches attached text tracks to showing mode.
	ShowTracks()
	// Size returns the rendered width and height in pixels.
	Size() (w, h int)
}

// LabelSlot is a DOM location that can carry a "(cc: …)" availability label.
type LabelSlot interface {
	SetLabel(text string)
}

// Entry is one item of a watched list region, e.g. a related video.
type Entry interface {
	LabelSlot
	// URL is the link target of the entry.
	URL() string
}

// Region is an auxiliary DOM area watched for label injection.
type Region interface {
	Entries() []Entry
}

// Page is the per-tab host surface a session drives.
type Page interface {
	// URL returns the current page location.
	URL() string
	// Hostname returns the current page host, e.g. "m.weverse.io".
	Hostname() string
	// Video looks up the site's video element.
	Video(selector string) (Video, bool)
	// LabelSlot looks up a single label location near the active video.
	LabelSlot(selector string) (LabelSlot, bool)
	// Region looks up a watched list region.
	Region(selector string) (Region, bool)
	// SetCueStyles replaces the injected cue style sheet.
	SetCueStyles(css string)
	// SupportsBackdrop reports whether the host renders the WebKit
	// media-text-track backdrop selector.
	SupportsBackdrop() bool
	// Notify shows a user-visible notice on the page.
	Notify(text string)
}

// HLSSupport classifies the host's HLS playback capability.
type HLSSupport string

const (
	HLSNone    HLSSupport = "none"
	HLSNative  HLSSupport = "native"
	HLSLibrary HLSSupport = "library"
)

// PlayerHost is implemented by pages that can build their own player, used
// where the host site does not provide a usable video element.
type PlayerHost interface {
	// HLSSupport reports how the page can play HLS streams.
	HLSSupport() HLSSupport
	// EnsurePlayer guarantees a playing video element for the given HLS
	// source, creating it when missing.
	EnsurePlayer(src string) error
}
