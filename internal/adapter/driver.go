package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/commasubs/subtitle-overlay/internal/dom"
	"github.com/commasubs/subtitle-overlay/internal/manifest"
	"github.com/commasubs/subtitle-overlay/internal/options"
	"github.com/commasubs/subtitle-overlay/internal/prefetch"
	"github.com/commasubs/subtitle-overlay/internal/protocol"
	"github.com/commasubs/subtitle-overlay/internal/styles"
	"github.com/commasubs/subtitle-overlay/internal/sub"
	"github.com/commasubs/subtitle-overlay/internal/vtt"
	"github.com/commasubs/subtitle-overlay/pkg/log"
)

const (
	defaultShowDelay   = time.Second
	defaultResizeDelay = 500 * time.Millisecond
	defaultLabelMax    = 4
)

// Messenger delivers fire-and-forget messages to the background process.
type Messenger interface {
	Send(msg protocol.Message)
}

// Driver runs one site's detection state machine for one page/tab. The host
// glue forwards DOM events (mutations, resizes, presentation changes,
// unload) and the driver decides what to load, inject and display.
//
// The driver is Idle until a matching video element appears on a relevant
// page while auto-check is on; finding one loads the manifest, optionally
// auto-displays the best track, updates the badge and injects labels. A
// page-key change resets everything back to Idle.
type Driver struct {
	site      Site
	page      dom.Page
	manifests *manifest.Client
	messenger Messenger
	store     *options.Store
	queue     *prefetch.Queue

	showDelay   time.Duration
	resizeDelay time.Duration

	mu           sync.Mutex
	optLanguage  string
	optAutoShow  bool
	optAutoCheck bool
	disabled     bool
	pageKey      string
	foundVideo   bool
	styledVideo  bool
	bootstrapped bool
	foundRegions map[string]bool
	badgeActive  bool
	lastCSS      string

	restyler  *Debouncer
	cancelSub func()
}

// Option tweaks driver construction.
type Option func(*Driver)

// WithShowDelay overrides the delay before re-enabling track display after
// injection.
func WithShowDelay(d time.Duration) Option {
	return func(drv *Driver) { drv.showDelay = d }
}

// WithResizeDelay overrides the resize debounce window.
func WithResizeDelay(d time.Duration) Option {
	return func(drv *Driver) { drv.resizeDelay = d }
}

// NewDriver wires a driver for one page. The prefetch queue may be nil for
// sites without label regions.
func NewDriver(site Site, page dom.Page, manifests *manifest.Client, messenger Messenger, store *options.Store, queue *prefetch.Queue, opts ...Option) *Driver {
	d := &Driver{
		site:         site,
		page:         page,
		manifests:    manifests,
		messenger:    messenger,
		store:        store,
		queue:        queue,
		showDelay:    defaultShowDelay,
		resizeDelay:  defaultResizeDelay,
		foundRegions: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.restyler = NewDebouncer(d.resizeDelay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.applyCueStylesLocked()
	})
	return d
}

// Start loads the persisted options, derives the per-site auto-check flag
// and subscribes to option changes. For HLS-gated sites it verifies playback
// support and disables the session with a user notice when absent.
func (d *Driver) Start(ctx context.Context) {
	opts := d.store.Get()

	d.mu.Lock()
	d.optLanguage = opts.Language
	d.optAutoShow = opts.AutoShow
	d.optAutoCheck = opts.Site(d.site.Name).AutoCheck

	if d.site.RequiresHLS {
		support := dom.HLSNone
		if ph, ok := d.page.(dom.PlayerHost); ok {
			support = ph.HLSSupport()
		}
		log.Debug("%s: HLS support %s", d.site.Name, support)
		if support == dom.HLSNone {
			d.disabled = true
		}
	}
	disabled := d.disabled
	autoCheck := d.optAutoCheck
	d.mu.Unlock()

	if disabled {
		d.page.Notify("Your browser does not support HLS playback.")
		return
	}
	if !autoCheck {
		log.Debug("%s: auto-check is disabled, not looking for subtitles", d.site.Name)
	}

	d.cancelSub = d.store.Subscribe(func(c options.Change, o options.Options) {
		d.mu.Lock()
		defer d.mu.Unlock()
		switch c {
		case options.ChangedLanguage:
			d.optLanguage = o.Language
		case options.ChangedAutoShow:
			d.optAutoShow = o.AutoShow
		case options.ChangedCaptions:
			d.applyCueStylesLocked()
		}
	})
}

// Stop releases the option subscription and any pending restyle.
func (d *Driver) Stop() {
	if d.cancelSub != nil {
		d.cancelSub()
	}
	d.restyler.Stop()
}

// OnMutation processes one batch of DOM changes. The host glue calls it for
// every observed mutation batch on the document subtree.
func (d *Driver) OnMutation(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, err := url.Parse(d.page.URL())
	if err != nil {
		log.Warn("%s: bad page url: %v", d.site.Name, err)
		return
	}

	key, relevant := d.site.PageKey(u)
	if d.pageKey != key {
		d.pageKey = key
		d.onPageChangedLocked()
	}

	if !relevant || d.disabled {
		return
	}

	if d.site.Bootstrap != nil && !d.bootstrapped {
		d.bootstrapped = true
		if err := d.site.Bootstrap(ctx, d.page, u); err != nil {
			log.Error("%s: bootstrap: %v", d.site.Name, err)
			d.page.Notify(err.Error())
			return
		}
	}

	// Style the cues as soon as the video exists, even with auto-check off,
	// where our styling also applies to the host's own subtitles.
	if d.site.RestyleOnVideoFound && !d.styledVideo {
		if _, ok := d.page.Video(d.site.VideoSelector); ok {
			d.styledVideo = true
			d.applyCueStylesLocked()
		}
	}

	if !d.optAutoCheck {
		return
	}

	if !d.foundVideo {
		if _, ok := d.page.Video(d.site.VideoSelector); ok {
			d.foundVideo = true
			d.onVideoFoundLocked(ctx, u)
		}
	}

	for _, spec := range d.site.Regions {
		if d.foundRegions[spec.Name] {
			continue
		}
		if region, ok := d.page.Region(spec.Selector); ok {
			d.foundRegions[spec.Name] = true
			d.loadRegionLabelsLocked(spec, region)
		}
	}
}

// OnRegionChanged reloads labels for a watched region whose children
// changed. The host glue observes found regions and calls this.
func (d *Driver) OnRegionChanged(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, spec := range d.site.Regions {
		if spec.Name != name || !d.foundRegions[name] {
			continue
		}
		if region, ok := d.page.Region(spec.Selector); ok {
			d.loadRegionLabelsLocked(spec, region)
		}
	}
}

// OnResize schedules a debounced cue restyle; rapid resize bursts collapse
// into a single recompute.
func (d *Driver) OnResize() {
	d.restyler.Trigger()
}

// OnPresentationChanged restyles immediately. Fullscreen and
// picture-in-picture toggles do not reliably emit resize events everywhere.
func (d *Driver) OnPresentationChanged() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applyCueStylesLocked()
}

// OnUnload clears the badge when the tab closes or navigates away without
// an explicit reset.
func (d *Driver) OnUnload() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetBadgeLocked()
}

// Manifest loads the manifest for the current page, serving the popup's
// GetManifest request.
func (d *Driver) Manifest(ctx context.Context) (sub.Manifest, error) {
	u, err := url.Parse(d.page.URL())
	if err != nil {
		return sub.Manifest{}, fmt.Errorf("bad page url: %w", err)
	}
	id, ok := d.site.MediaID(u)
	if !ok {
		return sub.Manifest{}, nil
	}
	return d.manifests.Load(ctx, id)
}

// CueCSS returns the last applied cue style sheet.
func (d *Driver) CueCSS() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastCSS
}

// Apply executes a fire-and-forget message sent to this session.
func (d *Driver) Apply(ctx context.Context, msg protocol.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch msg.Action {
	case protocol.SetTrack:
		d.setTrackLocked(ctx, *msg.Track)
	case protocol.DelTrack:
		d.hideTrackLocked()
	case protocol.SetStyles:
		d.lastCSS = msg.Text
		d.page.SetCueStyles(msg.Text)
	default:
		return fmt.Errorf("action %q is not handled by a content session", msg.Action)
	}
	return nil
}

func (d *Driver) onPageChangedLocked() {
	d.foundVideo = false
	d.styledVideo = false
	d.bootstrapped = false
	clear(d.foundRegions)
	d.resetBadgeLocked()
	d.hideTrackLocked()
}

func (d *Driver) onVideoFoundLocked(ctx context.Context, u *url.URL) {
	log.Debug("%s: found video", d.site.Name)

	id, ok := d.site.MediaID(u)
	if !ok {
		log.Debug("%s: no media id for %s", d.site.Name, u)
		return
	}

	m, err := d.manifests.Load(ctx, id)
	if err != nil {
		// Subtitle feature is silently unavailable for this video.
		log.Error("%s: load manifest: %v", d.site.Name, err)
		return
	}

	d.maybeShowTrackLocked(ctx, m)

	langs, _ := d.manifests.Languages(id)
	d.setBadgeLocked(len(langs))

	label := sub.MakeLabel(langs, d.labelMax())
	for _, sel := range d.site.LabelSelectors {
		slot, ok := d.page.LabelSlot(sel)
		if !ok {
			log.Debug("%s: label slot %q not found", d.site.Name, sel)
			continue
		}
		slot.SetLabel(label)
	}
}

func (d *Driver) maybeShowTrackLocked(ctx context.Context, m sub.Manifest) {
	if !d.optAutoShow {
		return
	}
	if track, ok := sub.SelectTrack(d.optLanguage, m.Subtitles); ok {
		d.setTrackLocked(ctx, track)
	}
}

func (d *Driver) setTrackLocked(ctx context.Context, track sub.Track) {
	v, ok := d.page.Video(d.site.VideoSelector)
	if !ok {
		log.Warn("%s: video element not found", d.site.Name)
		return
	}
	if v.CurrentTrackID() == track.ID {
		// Same track already attached.
		return
	}

	d.applyCueStylesLocked()

	payload, err := d.manifests.FetchTrack(ctx, track)
	if err != nil {
		log.Error("%s: fetch track: %v", d.site.Name, err)
		return
	}
	if err := vtt.Validate(payload); err != nil {
		log.Warn("%s: track %s: %v", d.site.Name, track.ID, err)
		return
	}

	lang := track.LangCode
	if lang == "" {
		if tag := vtt.DetectLanguage(payload); tag != language.Und {
			lang = tag.String()
			log.Debug("%s: detected language %s for track %s", d.site.Name, lang, track.ID)
		}
	}

	v.AttachTrack(dom.TrackElement{
		ID:       track.ID,
		Label:    track.LangName,
		Language: lang,
		Payload:  payload,
	})

	// Some players reset the track mode right after a source swap.
	time.AfterFunc(d.showDelay, func() {
		if v, ok := d.page.Video(d.site.VideoSelector); ok {
			v.ShowTracks()
		}
	})
}

func (d *Driver) hideTrackLocked() {
	if v, ok := d.page.Video(d.site.VideoSelector); ok {
		v.RemoveTracks()
	}
}

func (d *Driver) applyCueStylesLocked() {
	w, h := 640, 480
	if v, ok := d.page.Video(d.site.VideoSelector); ok {
		w, h = v.Size()
	}

	captions := d.store.Get().Captions
	var css string
	if d.page.SupportsBackdrop() {
		css = styles.ResolveWithBackdrop(captions, w, h)
	} else {
		css = styles.Resolve(captions, w, h)
	}

	if d.site.ExtraStyles != nil {
		mobile := d.site.Mobile != nil && d.site.Mobile(d.page.Hostname())
		css += d.site.ExtraStyles(mobile)
	}

	d.lastCSS = css
	d.page.SetCueStyles(css)
}

func (d *Driver) setBadgeLocked(count int) {
	d.messenger.Send(protocol.NewBadge(strconv.Itoa(count)))
	d.badgeActive = true
}

func (d *Driver) resetBadgeLocked() {
	if !d.badgeActive {
		return
	}
	d.messenger.Send(protocol.NewBadge(""))
	d.badgeActive = false
}

func (d *Driver) loadRegionLabelsLocked(spec RegionSpec, region dom.Region) {
	max := d.labelMax()
	for i, entry := range region.Entries() {
		eu, err := url.Parse(entry.URL())
		if err != nil {
			continue
		}
		id, ok := d.site.MediaID(eu)
		if !ok {
			continue
		}

		if langs, ok := d.manifests.Languages(id); ok {
			entry.SetLabel(sub.MakeLabel(langs, max))
			continue
		}

		if d.queue == nil {
			continue
		}
		entry := entry
		d.queue.Enqueue(prefetch.Job{
			DedupeKey: id + "#" + spec.Name + "#" + strconv.Itoa(i),
			MediaID:   id,
			Apply: func(langs []string) {
				entry.SetLabel(sub.MakeLabel(langs, max))
			},
		})
	}
}

func (d *Driver) labelMax() int {
	if d.site.LabelMax > 0 {
		return d.site.LabelMax
	}
	return defaultLabelMax
}
