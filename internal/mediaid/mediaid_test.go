package mediaid

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commasubs/subtitle-overlay/internal/sub"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	id := Encode(sub.SiteYouTube, "dQw4w9WgXcQ")

	site, key, err := Decode(id)
	require.NoError(t, err)
	assert.Equal(t, sub.SiteYouTube, site)
	assert.Equal(t, "dQw4w9WgXcQ", key)
}

func TestEncodeIsPathSafe(t *testing.T) {
	// Weverse keys contain slashes; the encoded id must not.
	id := Encode(sub.SiteWeverse, "live/4-123456789")

	assert.NotContains(t, id, "/")
	assert.NotContains(t, id, "+")
	assert.NotContains(t, id, "=")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := Decode("not//valid==")
	assert.Error(t, err)
}

func TestDecodeRejectsMissingSeparator(t *testing.T) {
	id := base64.RawURLEncoding.EncodeToString([]byte("nocolon"))
	_, _, err := Decode(id)
	assert.Error(t, err)
}
