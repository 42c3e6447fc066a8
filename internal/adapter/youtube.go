package adapter

import (
	"net/url"

	"github.com/commasubs/subtitle-overlay/internal/sub"
)

// YouTube watches /watch pages and labels the info line under the player.
func YouTube() Site {
	return Site{
		Name:          sub.SiteYouTube,
		VideoSelector: "video.html5-main-video",
		MediaKey: func(u *url.URL) (string, bool) {
			vid := u.Query().Get("v")
			return vid, vid != ""
		},
		PageKey: func(u *url.URL) (string, bool) {
			vid := u.Query().Get("v")
			return u.Path + vid, u.Path == "/watch" && vid != ""
		},
		LabelSelectors: []string{"#info-container.ytd-watch-info-text"},
		LabelMax:       defaultLabelMax,
	}
}
