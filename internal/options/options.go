// Package options holds the user configuration persisted by the companion
// and mirrored to every active content session.
package options

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/commasubs/subtitle-overlay/internal/styles"
	"github.com/commasubs/subtitle-overlay/internal/sub"
)

// SiteOptions carries the per-site toggles.
type SiteOptions struct {
	// AutoCheck enables automatic subtitle detection on every video of the site.
	AutoCheck bool `json:"autoCheck"`
}

// Options is the persisted configuration schema.
type Options struct {
	// Language is the preferred subtitle language code, e.g. "en" or "ko".
	Language string `json:"language"`
	// AutoShow displays the best-matching track as soon as one is found.
	AutoShow bool                 `json:"autoShow"`
	Captions styles.CaptionStyle  `json:"captions"`
	Berriz   SiteOptions          `json:"berriz"`
	YouTube  SiteOptions          `json:"youtube"`
	Weverse  SiteOptions          `json:"weverse"`
}

// Default returns the configuration applied on first run.
func Default() Options {
	return Options{
		Language: "en",
		AutoShow: false,
		Captions: styles.Default,
	}
}

// Site returns the per-site options for the given site.
func (o Options) Site(site sub.Site) SiteOptions {
	switch site {
	case sub.SiteBerriz:
		return o.Berriz
	case sub.SiteYouTube:
		return o.YouTube
	case sub.SiteWeverse:
		return o.Weverse
	}
	return SiteOptions{}
}

// Validate checks the schema. The preferred language must be a parseable
// BCP 47 tag; caption codes are not validated here since unknown codes fail
// closed in the style resolver.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Language) == "" {
		return fmt.Errorf("language is required")
	}
	if _, err := language.Parse(o.Language); err != nil {
		return fmt.Errorf("invalid language %q: %w", o.Language, err)
	}
	return nil
}
