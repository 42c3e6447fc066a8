package bridge

import (
	"sort"
	"sync"

	"github.com/commasubs/subtitle-overlay/internal/protocol"
	"github.com/commasubs/subtitle-overlay/internal/sub"
)

// Session is one registered content context: a tab running a site session.
// The bridge keeps its badge text and a mailbox of messages addressed to it.
type Session struct {
	ID      string   `json:"id"`
	Site    sub.Site `json:"site"`
	URL     string   `json:"url"`
	MediaID string   `json:"mediaId"`
	Badge   string   `json:"badge"`
}

type session struct {
	Session
	outbox []protocol.Message
}

// Registry tracks live content sessions by tab id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*session)}
}

// Register adds or updates a session. Navigation re-registers under the same
// id; the badge and any undelivered messages survive until the content
// context resets them.
func (r *Registry) Register(s Session) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.sessions[s.ID]
	if !ok {
		cur = &session{}
		r.sessions[s.ID] = cur
	}
	s.Badge = cur.Badge
	cur.Session = s
	return cur.Session
}

// Get returns a session snapshot.
func (r *Registry) Get(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return s.Session, true
}

// List returns all sessions ordered by id.
func (r *Registry) List() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Drop removes a session when its tab unloads. Removal discards the badge, so
// a tab that dies without an explicit reset never leaves a stale badge.
func (r *Registry) Drop(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

// SetBadge updates a session's badge text; empty text clears it.
func (r *Registry) SetBadge(id, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.Badge = text
	return true
}

// Push queues a message for delivery to the session's content context.
func (r *Registry) Push(id string, msg protocol.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.outbox = append(s.outbox, msg)
	return true
}

// Drain returns and clears the session's queued messages.
func (r *Registry) Drain(id string) ([]protocol.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	out := s.outbox
	s.outbox = nil
	return out, true
}
