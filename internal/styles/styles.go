// Package styles resolves a caption style configuration and the rendered
// video size into the CSS rules applied to subtitle cues.
package styles

import (
	"fmt"
	"strings"
)

// CaptionStyle holds the user's cue styling choices. Every field is an
// enum-like code resolved through the fixed lookup tables below.
type CaptionStyle struct {
	FontFamily  string `json:"fontFamily"`
	FontSize    string `json:"fontSize"`
	TextColor   string `json:"textColor"`
	TextOpacity string `json:"textOpacity"`
	BgColor     string `json:"bgColor"`
	BgOpacity   string `json:"bgOpacity"`
}

// Default is the caption style applied before the user saves anything.
var Default = CaptionStyle{
	FontFamily:  "prop-sans-serif",
	FontSize:    "100",
	TextColor:   "white",
	TextOpacity: "ff",
	BgColor:     "black",
	BgOpacity:   "bf",
}

var fontFamilies = map[string]string{
	"mono-serif":      `"Courier New", Courier, "Nimbus Mono L", "Cutive Mono", monospace`,
	"prop-serif":      `"Times New Roman", Times, Georgia, Cambria, "PT Serif Caption", serif`,
	"mono-sans-serif": `"Deja Vu Sans Mono", "Lucida Console", Monaco, Consolas, "PT Mono", monospace`,
	"prop-sans-serif": `Roboto, Arial, Helvetica, Verdana, "PT Sans Caption", sans-serif`,
	"casual":          `"Comic Sans MS", Impact, Handlee, fantasy`,
	"cursive":         `"Monotype Corsiva", "URW Chancery L", "Apple Chancery", "Dancing Script", cursive`,
	"capitals":        `Arial, Helvetica, Verdana, "Marcellus SC", sans-serif`,
}

var fontSizes = map[string]float64{
	"50":  0.5,
	"75":  0.75,
	"100": 1,
	"150": 1.25,
	"200": 1.5,
	"300": 1.75,
	"400": 2,
}

var colors = map[string]string{
	"white":   "#ffffff",
	"yellow":  "#ffff00",
	"green":   "#00ff00",
	"cyan":    "#00ffff",
	"blue":    "#0000ff",
	"magenta": "#ff00ff",
	"red":     "#ff0000",
	"black":   "#080808",
}

// Resolve maps a caption style and the video's rendered size to a CSS rule
// string for the video::cue selector. Unknown codes fail closed: the
// declaration is skipped rather than producing an error, since the host page
// is not under our control.
func Resolve(c CaptionStyle, w, h int) string {
	return resolve(c, w, h, false)
}

// ResolveWithBackdrop is Resolve for hosts that support the WebKit
// media-text-track backdrop selector; the cue background moves to a separate
// backdrop rule there.
func ResolveWithBackdrop(c CaptionStyle, w, h int) string {
	return resolve(c, w, h, true)
}

func resolve(c CaptionStyle, w, h int, backdrop bool) string {
	var out []string
	var decls []string

	if family, ok := fontFamilies[c.FontFamily]; ok {
		decls = append(decls, "font-family:"+family)
	}
	if color, ok := colors[c.TextColor]; ok {
		decls = append(decls, "color:"+color+c.TextOpacity)
	}

	if bg, ok := colors[c.BgColor]; ok {
		if backdrop {
			out = append(out, "video::-webkit-media-text-track-display-backdrop{background-color:"+bg+c.BgOpacity+"}")
		} else {
			decls = append(decls, "background:"+bg+c.BgOpacity)
		}
	}

	if c.FontFamily == "capitals" {
		decls = append(decls, "font-variant:small-caps")
	}

	decls = append(decls, "font-size:"+formatPx(FontSizePx(c.FontSize, w, h)))
	out = append(out, "video::cue{"+strings.Join(decls, "; ")+"}")

	return strings.Join(out, "\n")
}

// FontSizePx computes the cue font size in pixels for a video of the given
// rendered size. Landscape video scales with height (16px per 360px); portrait
// and near-square video scale with width against a 640px reference, or 480px
// when the height exceeds the width by more than 30%.
func FontSizePx(sizeCode string, w, h int) float64 {
	mpl, ok := fontSizes[sizeCode]
	if !ok {
		mpl = 1
	}

	s := float64(h) / 360 * 16
	if h >= w {
		ref := 640.0
		if float64(h) > float64(w)*1.3 {
			ref = 480
		}
		s = float64(w) / ref * 16
	}

	return s * mpl
}

func formatPx(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".") + "px"
}
