// Package server provides the HTTP surface of mudra: the JSON API, the
// annotated MJPEG stream and the WebSocket result feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Toggle switches live recognition on and off.
type Toggle interface {
	IsEnabled() bool
	SetEnabled(enabled bool) error
}

// Config holds the server configuration. Routes whose dependency is nil are
// not registered.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Recognizer *gesture.Recognizer
	Plugins    *plugin.Manager
	Frames     *FrameBuffer
	Hub        *Hub
	Toggle     Toggle
}

// Server represents the HTTP server for the mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration. A nil Recognizer
// uses the default rule table and thresholds.
func New(config Config) *Server {
	if config.Recognizer == nil {
		config.Recognizer = gesture.NewRecognizer(nil, hand.DefaultConfig())
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/classify", api.NewClassifyHandler(s.config.Recognizer))

	if s.config.Store != nil {
		samples := api.NewSamplesHandler(s.config.Store, s.config.Recognizer)
		s.mux.Handle("/api/samples", samples)
		s.mux.Handle("/api/samples/", samples)

		s.mux.Handle("/api/detections", api.NewDetectionsHandler(s.config.Store))

		bindings := api.NewBindingHandler(s.config.Store, s.config.Recognizer.Matcher(), s.config.Plugins)
		s.mux.Handle("/api/bindings", bindings)
		s.mux.Handle("/api/bindings/", bindings)
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/ws", s.config.Hub)
	}

	if s.config.Toggle != nil {
		s.mux.HandleFunc("/api/enabled", s.handleEnabled)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Hub != nil {
		response["subscribers"] = s.config.Hub.Clients()
	}
	if s.config.Toggle != nil {
		response["enabled"] = s.config.Toggle.IsEnabled()
	}

	writeJSON(w, http.StatusOK, response)
}

type enabledBody struct {
	Enabled bool `json:"enabled"`
}

// handleEnabled reports (GET) or sets (PUT) whether live recognition runs.
func (s *Server) handleEnabled(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var body enabledBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
			return
		}
		if err := s.config.Toggle.SetEnabled(body.Enabled); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, enabledBody{Enabled: s.config.Toggle.IsEnabled()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Debug("encode response", zap.Error(err))
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Request contexts derive from ctx so open streams end with it.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.config.Hub.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
