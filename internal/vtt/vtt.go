// Package vtt validates fetched WebVTT payloads and detects the cue language
// for tracks whose manifest entry is missing a language code.
package vtt

import (
	"errors"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// ErrNotWebVTT reports a payload that does not start with the WEBVTT header.
var ErrNotWebVTT = errors.New("payload is not a WebVTT document")

// Validate checks that a fetched track payload is a WebVTT document.
func Validate(payload []byte) error {
	lines := splitLines(payload)
	if len(lines) == 0 {
		return ErrNotWebVTT
	}
	head := strings.TrimPrefix(lines[0], "\uFEFF")
	if head != "WEBVTT" && !strings.HasPrefix(head, "WEBVTT ") && !strings.HasPrefix(head, "WEBVTT\t") {
		return ErrNotWebVTT
	}
	return nil
}

// CueTexts extracts the text lines of every cue, skipping the header, cue
// identifiers, timing lines and NOTE/STYLE/REGION blocks.
func CueTexts(payload []byte) []string {
	lines := splitLines(payload)

	var texts []string
	inBlockComment := false
	inCue := false

	for i, line := range lines {
		switch {
		case line == "":
			inBlockComment = false
			inCue = false
		case i == 0 && strings.HasPrefix(strings.TrimPrefix(line, "\uFEFF"), "WEBVTT"):
		case !inCue && (strings.HasPrefix(line, "NOTE") || strings.HasPrefix(line, "STYLE") || strings.HasPrefix(line, "REGION")):
			inBlockComment = true
		case inBlockComment:
		case strings.Contains(line, "-->"):
			inCue = true
		case !inCue && i+1 < len(lines) && strings.Contains(lines[i+1], "-->"):
			// Cue identifier: the bare line directly above a timing line.
		case inCue:
			texts = append(texts, line)
		}
	}

	return texts
}

// DetectLanguage guesses the dominant ISO 639-1 language code of the cue
// text. Returns und when nothing usable is found.
func DetectLanguage(payload []byte) language.Tag {
	texts := CueTexts(payload)
	if len(texts) == 0 {
		return language.Und
	}

	counts := make(map[string]int)
	for _, text := range texts {
		code := whatlanggo.DetectLang(text).Iso6391()
		if code == "" {
			continue
		}
		counts[code]++
	}

	var topCode string
	var topCount int
	for code, count := range counts {
		if count > topCount {
			topCode = code
			topCount = count
		}
	}

	if topCode == "" {
		return language.Und
	}
	return language.All.Make(topCode)
}

func splitLines(payload []byte) []string {
	raw := strings.ReplaceAll(string(payload), "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	lines := strings.Split(raw, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}
