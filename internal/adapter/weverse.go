package adapter

import (
	"net/url"
	"strings"

	"github.com/commasubs/subtitle-overlay/internal/sub"
)

// Weverse watches the live section. Desktop pages render the site's own
// subtitles in a separate layer, which is hidden so only the native text
// tracks show; the mobile site already uses native subtitles.
func Weverse() Site {
	return Site{
		Name:          sub.SiteWeverse,
		VideoSelector: "video.webplayer-internal-video",
		MediaKey: func(u *url.URL) (string, bool) {
			key := strings.TrimPrefix(u.Path, "/")
			return key, key != ""
		},
		PageKey: func(u *url.URL) (string, bool) {
			parts := strings.Split(u.Path, "/")
			return u.Path, len(parts) > 2 && parts[2] == "live"
		},
		Mobile: func(hostname string) bool {
			return hostname == "m.weverse.io"
		},
		ExtraStyles: func(mobile bool) string {
			if mobile {
				return ""
			}
			return ".pzp-pc-subtitle-text,.pzp-pc__subtitle-text{display:none!important}"
		},
		LabelSelectors: []string{
			// Logged out.
			"[class^='MobileLiveArtistProfileView_artist_wrap__']:last-child",
			// Logged in.
			"[class^='HeaderView_artist_wrap__'] [class^='LiveArtistProfileView_info__']:last-child",
		},
		LabelMax: defaultLabelMax,
		Regions: []RegionSpec{
			{
				Name:          "video-list",
				Selector:      "div[class^='MediaSlotView_package_list__']",
				EntrySelector: "span[class^='RelatedProductItemView_package_date__']",
			},
			{
				Name:          "live-list",
				Selector:      "div[class^='LiveListView_live_list__']",
				EntrySelector: "[class^='LiveArtistProfileView_info_wrap__'] [class^='LiveArtistProfileView_info__']:last-child",
			},
		},
		RestyleOnVideoFound: true,
	}
}
