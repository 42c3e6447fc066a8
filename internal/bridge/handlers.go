package bridge

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/commasubs/subtitle-overlay/internal/options"
	"github.com/commasubs/subtitle-overlay/internal/protocol"
	"github.com/commasubs/subtitle-overlay/internal/sub"
	"github.com/commasubs/subtitle-overlay/pkg/icron"
	"github.com/commasubs/subtitle-overlay/pkg/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("write response: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	status := map[string]any{
		"uptimeSeconds":  int(time.Since(started).Seconds()),
		"sessions":       len(s.registry.List()),
		"pendingRecheck": len(s.manifests.EmptyIDs()),
	}

	if s.recheck != nil {
		if info, err := icron.GetTriggerInfo(s.recheck.Expression(), time.Now()); err == nil {
			status["recheck"] = map[string]any{
				"expression": info.Expression,
				"next":       info.Next,
				"untilNext":  info.TimeUntilNext.String(),
			}
		}
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

// handleRegisterSession upserts a content session. Sessions re-register on
// every navigation so the bridge always knows their current page and media.
func (s *Server) handleRegisterSession(w http.ResponseWriter, r *http.Request) {
	var in Session
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid session body", http.StatusBadRequest)
		return
	}

	if !validSite(in.Site) {
		http.Error(w, "unknown site", http.StatusBadRequest)
		return
	}

	in.ID = chi.URLParam(r, "id")
	out := s.registry.Register(in)
	log.Debug("session %s registered for %s", out.ID, out.Site)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDropSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.registry.Drop(id) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	log.Debug("session %s dropped", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionMessage accepts a protocol message addressed to a session.
// SetBadge is absorbed by the bridge, GetManifest is answered directly from
// the manifest client, everything else is queued for the content context.
func (s *Server) handleSessionMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	msg, err := protocol.Decode(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, ok := s.registry.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	switch msg.Action {
	case protocol.SetBadge:
		s.registry.SetBadge(id, msg.Text)
		w.WriteHeader(http.StatusNoContent)

	case protocol.GetManifest:
		if sess.MediaID == "" {
			writeJSON(w, http.StatusOK, sub.Manifest{})
			return
		}
		m, err := s.manifests.Load(r.Context(), sess.MediaID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, m)

	default:
		s.registry.Push(id, msg)
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *Server) handleSessionOutbox(w http.ResponseWriter, r *http.Request) {
	msgs, ok := s.registry.Drain(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if msgs == nil {
		msgs = []protocol.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleGetManifest(w http.ResponseWriter, r *http.Request) {
	m, err := s.manifests.Load(r.Context(), chi.URLParam(r, "mediaID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleGetOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Get())
}

func (s *Server) handlePutOptions(w http.ResponseWriter, r *http.Request) {
	next := s.store.Get()
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		http.Error(w, "invalid options body", http.StatusBadRequest)
		return
	}

	if err := s.store.Update(func(o *options.Options) { *o = next }); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Get())
}

func validSite(site sub.Site) bool {
	for _, s := range sub.Sites {
		if s == site {
			return true
		}
	}
	return false
}
