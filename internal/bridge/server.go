// Package bridge exposes the background process over a local HTTP API. It
// plays the service-worker role of the messaging protocol: content sessions
// register themselves, report badge state and poll their mailbox, while the
// popup and options surfaces query manifests and edit settings through the
// same server.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/commasubs/subtitle-overlay/internal/manifest"
	"github.com/commasubs/subtitle-overlay/internal/options"
	"github.com/commasubs/subtitle-overlay/pkg/log"
)

var (
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrServerNotRunning     = errors.New("server is not running")
)

// Server is the bridge HTTP server.
type Server struct {
	addr      string
	registry  *Registry
	manifests *manifest.Client
	store     *options.Store
	recheck   *manifest.Recheck
	router    *chi.Mux

	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
	running  bool
	started  time.Time
}

// NewServer wires the bridge. The recheck may be nil when the periodic
// recheck is disabled.
func NewServer(addr string, registry *Registry, manifests *manifest.Client, store *options.Store, recheck *manifest.Recheck) *Server {
	s := &Server{
		addr:      addr,
		registry:  registry,
		manifests: manifests,
		store:     store,
		recheck:   recheck,
		router:    chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Put("/{id}", s.handleRegisterSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleDropSession)
			r.Post("/{id}/messages", s.handleSessionMessage)
			r.Get("/{id}/outbox", s.handleSessionOutbox)
		})

		r.Get("/manifests/{mediaID}", s.handleGetManifest)

		r.Route("/options", func(r chi.Router) {
			r.Get("/", s.handleGetOptions)
			r.Put("/", s.handlePutOptions)
		})
	})
}

// Start begins serving on the configured address.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.running = true
	s.started = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("bridge server: %v", err)
		}
	}()

	log.Info("bridge listening on %s", listener.Addr())
	return nil
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrServerNotRunning
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("bridge shutdown: %w", err)
	}

	s.running = false
	s.server = nil
	s.listener = nil
	return nil
}

// Addr returns the actual listening address, useful when the configured port
// is 0.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
