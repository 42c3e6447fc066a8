// Package protocol defines the messages exchanged between the background
// process, the per-page content sessions and the popup/options UI.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/commasubs/subtitle-overlay/internal/sub"
)

// Action discriminates message kinds on the wire.
type Action string

const (
	// GetManifest asks a content session for the manifest of its current
	// video. The only request that awaits a response.
	GetManifest Action = "GET_MANIFEST"
	// GetStyles asks a content session for its current cue CSS.
	GetStyles Action = "GET_STYLES"
	// SetStyles pushes a cue CSS rule string into a content session.
	SetStyles Action = "SET_STYLES"
	// SetBadge updates the toolbar badge for the sending tab; empty text
	// clears it.
	SetBadge Action = "SET_BADGE"
	// SetTrack tells a content session to display the given track.
	SetTrack Action = "SET_TRACK"
	// DelTrack tells a content session to remove any displayed track.
	DelTrack Action = "DEL_TRACK"
)

// Message is the envelope for every cross-context message. Text and Track
// are populated depending on the action.
type Message struct {
	Action Action     `json:"action"`
	Text   string     `json:"text,omitempty"`
	Track  *sub.Track `json:"track,omitempty"`
}

// NewBadge builds a SetBadge message; empty text clears the badge.
func NewBadge(text string) Message {
	return Message{Action: SetBadge, Text: text}
}

// NewSetTrack builds a SetTrack message.
func NewSetTrack(t sub.Track) Message {
	return Message{Action: SetTrack, Track: &t}
}

// NewDelTrack builds a DelTrack message.
func NewDelTrack() Message {
	return Message{Action: DelTrack}
}

// NewGetManifest builds a GetManifest request.
func NewGetManifest() Message {
	return Message{Action: GetManifest}
}

// Encode serializes a message for the wire.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a wire message and checks its shape against the action.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Validate checks that payloads required by the action are present.
func (m Message) Validate() error {
	switch m.Action {
	case SetTrack:
		if m.Track == nil {
			return fmt.Errorf("%s requires a track payload", m.Action)
		}
	case GetManifest, GetStyles, SetStyles, SetBadge, DelTrack:
	default:
		return fmt.Errorf("unknown action %q", m.Action)
	}
	return nil
}
