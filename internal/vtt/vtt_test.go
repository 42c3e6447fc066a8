package vtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVTT = `WEBVTT

NOTE This file was generated automatically.

1
00:00:00.000 --> 00:00:02.000
The weather is beautiful today.

2
00:00:02.500 --> 00:00:05.000
We are going to the beach tomorrow.
It should be sunny all afternoon.
`

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]byte(sampleVTT)))
	assert.NoError(t, Validate([]byte("WEBVTT - with a header comment\n")))
	assert.ErrorIs(t, Validate([]byte("1\n00:00.000 --> 00:01.000\nhi\n")), ErrNotWebVTT)
	assert.ErrorIs(t, Validate(nil), ErrNotWebVTT)
}

func TestCueTexts(t *testing.T) {
	texts := CueTexts([]byte(sampleVTT))

	require.Len(t, texts, 3)
	assert.Equal(t, "The weather is beautiful today.", texts[0])
	assert.Equal(t, "We are going to the beach tomorrow.", texts[1])
	assert.Equal(t, "It should be sunny all afternoon.", texts[2])
}

func TestCueTexts_SkipsStyleBlocks(t *testing.T) {
	payload := "WEBVTT\n\nSTYLE\n::cue { color: red }\n\n00:00.000 --> 00:01.000\nhello there\n"

	texts := CueTexts([]byte(payload))

	require.Len(t, texts, 1)
	assert.Equal(t, "hello there", texts[0])
}

func TestDetectLanguage_English(t *testing.T) {
	tag := DetectLanguage([]byte(sampleVTT))
	assert.Equal(t, "en", tag.String())
}

func TestDetectLanguage_Empty(t *testing.T) {
	tag := DetectLanguage([]byte("WEBVTT\n"))
	assert.Equal(t, "und", tag.String())
}
