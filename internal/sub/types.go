package sub

import (
	"strings"
	"time"
)

// Site identifies a supported host site.
type Site string

const (
	SiteBerriz  Site = "berriz"
	SiteYouTube Site = "youtube"
	SiteWeverse Site = "weverse"
)

// Sites lists every supported site in a stable order.
var Sites = []Site{SiteBerriz, SiteYouTube, SiteWeverse}

// Generator values as they appear in manifests.
const (
	GeneratorHuman   = "human"
	GeneratorMachine = "machine"
)

// Track is a single subtitle track as published in a manifest.
// Tracks are immutable once received; identity is the ID.
type Track struct {
	ID        string `json:"id"`
	LangCode  string `json:"langcode"`
	LangName  string `json:"langname"`
	Generator string `json:"generator"`
	Team      string `json:"team"`
	Updated   int64  `json:"updated"` // unix seconds
}

// UpdatedAt returns the track's last update as a time.Time.
func (t Track) UpdatedAt() time.Time {
	return time.Unix(t.Updated, 0)
}

// IsHuman reports whether the track was authored by a person.
func (t Track) IsHuman() bool {
	return strings.EqualFold(t.Generator, GeneratorHuman)
}

// IsMachine reports whether the track was generated automatically.
func (t Track) IsMachine() bool {
	return strings.EqualFold(t.Generator, GeneratorMachine)
}

// Manifest is the set of subtitle tracks known to exist for one video.
type Manifest struct {
	ID        string  `json:"id"`
	Subtitles []Track `json:"subtitles"`
}

// LangCodes returns the language codes of all tracks in manifest order.
func (m Manifest) LangCodes() []string {
	codes := make([]string, 0, len(m.Subtitles))
	for _, t := range m.Subtitles {
		codes = append(codes, t.LangCode)
	}
	return codes
}
