package adapter

import (
	"context"
	"net/url"
	"strings"

	"github.com/commasubs/subtitle-overlay/internal/dom"
	"github.com/commasubs/subtitle-overlay/internal/playback"
	"github.com/commasubs/subtitle-overlay/internal/sub"
)

// Berriz watches live replay pages. The site ships no usable player there,
// so the session resolves the HLS playback URL itself and builds a video
// element; startup is gated on HLS support.
func Berriz(pb *playback.Client) Site {
	return Site{
		Name:          sub.SiteBerriz,
		VideoSelector: "video.berriz-webplayer",
		MediaKey: func(u *url.URL) (string, bool) {
			id := berrizReplayID(u)
			return id, id != ""
		},
		PageKey: func(u *url.URL) (string, bool) {
			// https://berriz.in/en/IVE/live/replay/{id}/
			parts := strings.Split(u.Path, "/")
			relevant := len(parts) > 5 && parts[3] == "live" && parts[4] == "replay"
			return u.Path, relevant
		},
		ExtraStyles: func(bool) string {
			return ".berriz-webplayer{aspect-ratio: 16 / 9;margin:10px;margin-top:0;max-height:calc(100vh - 60px)}"
		},
		LabelMax:            defaultLabelMax,
		RestyleOnVideoFound: true,
		RequiresHLS:         true,
		Bootstrap: func(ctx context.Context, page dom.Page, u *url.URL) error {
			ph, ok := page.(dom.PlayerHost)
			if !ok {
				return nil
			}
			id := berrizReplayID(u)
			if id == "" {
				return nil
			}
			src, err := pb.PlaybackURL(ctx, id)
			if err != nil {
				return err
			}
			return ph.EnsurePlayer(src)
		},
	}
}

func berrizReplayID(u *url.URL) string {
	parts := strings.Split(u.Path, "/")
	if len(parts) > 5 && parts[3] == "live" && parts[4] == "replay" {
		return parts[5]
	}
	return ""
}
