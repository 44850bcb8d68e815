package httpserver

import (
	"context"
	"log"
	"net/http"

	"preprint/internal/octoprint"
	"preprint/internal/store"
)

const (
	profilesRoute = "/api/slicing/" + octoprint.Slicer + "/profiles"
	importRoute   = "/plugin/" + octoprint.Slicer + "/import"
)

// HTTPServer serves the slicing profile API from a profile store.
type HTTPServer struct {
	mux     *http.ServeMux
	tokens  []string
	version string
	store   *store.Store
	hub     *eventHub
	srv     *http.Server
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(st *store.Store, tokens []string, version string) *HTTPServer {
	s := &HTTPServer{
		mux:     http.NewServeMux(),
		tokens:  tokens,
		version: version,
		store:   st,
		hub:     newEventHub(),
	}

	s.registerRoutes()

	return s
}

// registerRoutes sets up all HTTP routes with middleware
func (s *HTTPServer) registerRoutes() {
	// Health check (no auth required)
	s.mux.HandleFunc("GET /health", loggingMiddleware(s.handleHealth))

	s.mux.HandleFunc("GET "+profilesRoute, loggingMiddleware(s.authMiddleware(s.handleListProfiles)))
	s.mux.HandleFunc("GET "+profilesRoute+"/{key}", loggingMiddleware(s.authMiddleware(s.handleGetProfile)))
	s.mux.HandleFunc("DELETE "+profilesRoute+"/{key}", loggingMiddleware(s.authMiddleware(s.handleDeleteProfile)))
	s.mux.HandleFunc("PATCH "+profilesRoute+"/{key}", loggingMiddleware(s.authMiddleware(jsonContentTypeMiddleware(s.handlePatchProfile))))
	s.mux.HandleFunc("POST "+importRoute, loggingMiddleware(s.authMiddleware(s.handleImportProfile)))
	s.mux.HandleFunc("POST /api/util/test", loggingMiddleware(s.authMiddleware(jsonContentTypeMiddleware(s.handleUtilTest))))
	s.mux.HandleFunc("GET /api/events", loggingMiddleware(s.authMiddleware(s.handleEvents)))
}

// ServeHTTP lets the server be mounted or driven by httptest.
func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the given address
func (s *HTTPServer) ListenAndServe(addr string) error {
	log.Printf("[HTTP] Starting server on %s", addr)
	log.Printf("[HTTP] Serving profiles from %s", s.store.Dir())
	log.Printf("[HTTP] Registered %d valid tokens", len(s.tokens))
	s.srv = &http.Server{Addr: addr, Handler: s.mux}
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting requests and closes event subscribers.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
