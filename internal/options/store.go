package options

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/commasubs/subtitle-overlay/pkg/log"
)

// Change names a top-level option key that was modified.
type Change string

const (
	ChangedLanguage Change = "language"
	ChangedAutoShow Change = "autoShow"
	ChangedCaptions Change = "captions"
	ChangedSites    Change = "sites"
)

// Store persists Options as a JSON file and fans out per-key change
// notifications to subscribers, the way extension storage delivers
// onChanged events to every listening context.
type Store struct {
	mu   sync.RWMutex
	path string
	opts Options

	subMu sync.Mutex
	subs  map[int]func(Change, Options)
	nextID int
}

// NewStore opens the options file, creating it with defaults when missing.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path: path,
		opts: Default(),
		subs: make(map[int]func(Change, Options)),
	}

	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("load options: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create options directory: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("save default options: %w", err)
		}
	}

	if err := s.opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options file: %w", err)
	}

	return s, nil
}

// Get returns a copy of the current options.
func (s *Store) Get() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Update applies fn to the options, validates, persists and notifies
// subscribers about every key that changed.
func (s *Store) Update(fn func(*Options)) error {
	s.mu.Lock()
	prev := s.opts
	next := prev
	fn(&next)

	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}

	s.opts = next
	if err := s.save(); err != nil {
		s.opts = prev
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	for _, change := range diff(prev, next) {
		s.notify(change, next)
	}
	return nil
}

// Subscribe registers a change listener. The returned function removes it.
func (s *Store) Subscribe(fn func(Change, Options)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(change Change, opts Options) {
	s.subMu.Lock()
	fns := make([]func(Change, Options), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	log.Debug("options changed: %s", change)
	for _, fn := range fns {
		fn(change, opts)
	}
}

func diff(prev, next Options) []Change {
	var changes []Change
	if prev.Language != next.Language {
		changes = append(changes, ChangedLanguage)
	}
	if prev.AutoShow != next.AutoShow {
		changes = append(changes, ChangedAutoShow)
	}
	if prev.Captions != next.Captions {
		changes = append(changes, ChangedCaptions)
	}
	if prev.Berriz != next.Berriz || prev.YouTube != next.YouTube || prev.Weverse != next.Weverse {
		changes = append(changes, ChangedSites)
	}
	return changes
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	opts := Default()
	if err := json.Unmarshal(data, &opts); err != nil {
		return err
	}
	s.opts = opts
	return nil
}

// save writes through a temp file so a crash never leaves a torn options file.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.opts, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
