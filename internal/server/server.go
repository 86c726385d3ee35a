package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ziadkadry99/doc-web/internal/highlight"
	"github.com/ziadkadry99/doc-web/internal/logging"
	"github.com/ziadkadry99/doc-web/internal/session"
)

// Config holds server configuration.
type Config struct {
	Port     int
	DocsDir  string // directory served under /docs; empty when docs come from a remote base URL
	AllowAll bool   // allow all CORS origins (dev mode)
	Site     Site
}

// Site is what the shell page shows before any markdown is loaded.
type Site struct {
	Title       string
	Keywords    string
	Description string
	GitHub      string // header link; omitted when empty
}

// Server serves the viewer shell, the raw docs and the session websocket.
type Server struct {
	cfg         Config
	hub         *session.Hub
	sessions    http.Handler
	highlighter *highlight.Highlighter
	logger      *zap.Logger
	router      chi.Router
	httpServer  *http.Server
}

// New creates a new server. sessions handles /ws/session; hub is only
// used to report session counts.
func New(cfg Config, hub *session.Hub, sessions http.Handler, highlighter *highlight.Highlighter, logger *zap.Logger) *Server {
	if highlighter == nil {
		highlighter = highlight.New(highlight.DefaultStyle)
	}
	s := &Server{
		cfg:         cfg,
		hub:         hub,
		sessions:    sessions,
		highlighter: highlighter,
		logger:      logging.OrNop(logger),
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.logger))
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Websocket sessions live as long as the tab, so they stay outside the
	// request timeout.
	if s.sessions != nil {
		r.Get("/ws/session", s.sessions.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/healthz", s.handleHealth)
		r.Get("/", s.handleIndex)
		r.Get("/static/app.js", serveAsset("assets/app.js", "application/javascript; charset=utf-8"))
		r.Get("/static/style.css", serveAsset("assets/style.css", "text/css; charset=utf-8"))
		r.Get("/static/chroma.css", s.handleChromaCSS)

		if s.cfg.DocsDir != "" {
			r.Handle("/docs/*", http.StripPrefix("/docs/", http.FileServer(http.Dir(s.cfg.DocsDir))))
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sessions := 0
	if s.hub != nil {
		sessions = s.hub.Count()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": sessions,
	})
}

func (s *Server) handleChromaCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	if err := s.highlighter.WriteCSS(w); err != nil {
		s.logger.Error("writing highlight css", zap.Error(err))
	}
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Hub returns the session hub.
func (s *Server) Hub() *session.Hub { return s.hub }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("docweb server listening", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
