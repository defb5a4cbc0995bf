// Package api exposes the RCA pipeline over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/koopa0/rca-agent/internal/chat"
	"github.com/koopa0/rca-agent/internal/knowledge"
	"github.com/koopa0/rca-agent/internal/llm"
	"github.com/koopa0/rca-agent/internal/session"
	"github.com/koopa0/rca-agent/internal/sync"
)

// Syncer runs one knowledge-base sync.
type Syncer interface {
	Run(ctx context.Context) (sync.Stats, error)
}

// Documents lists stored RCA documents.
type Documents interface {
	List(ctx context.Context) ([]knowledge.Document, error)
}

// Sessions is the session store surface the handlers need.
type Sessions interface {
	Create(ctx context.Context, title string) (session.Session, error)
	List(ctx context.Context) ([]session.Session, error)
	Rename(ctx context.Context, id uuid.UUID, title string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Messages(ctx context.Context, sessionID uuid.UUID) ([]session.Message, error)
}

// ChatFlow runs chat turns.
type ChatFlow interface {
	Respond(ctx context.Context, sessionID uuid.UUID, query string) (chat.Reply, error)
	RespondStream(ctx context.Context, sessionID uuid.UUID, query string, cb llm.StreamCallback) (chat.Reply, error)
}

// ServerConfig contains the dependencies for the API server.
type ServerConfig struct {
	Logger      *slog.Logger
	Syncer      Syncer
	Documents   Documents
	Sessions    Sessions
	Chat        ChatFlow
	CORSOrigins []string
}

// Server is the JSON API HTTP server.
type Server struct {
	handler http.Handler
}

// NewServer creates the API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Syncer == nil || cfg.Documents == nil || cfg.Sessions == nil || cfg.Chat == nil {
		return nil, errors.New("syncer, documents, sessions, and chat are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sh := &syncHandler{syncer: cfg.Syncer, logger: logger}
	rh := &rcaHandler{docs: cfg.Documents, logger: logger}
	sm := &sessionHandler{sessions: cfg.Sessions, logger: logger}
	ch := &chatHandler{flow: cfg.Chat, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)

	mux.HandleFunc("POST /api/v1/sync", sh.run)
	mux.HandleFunc("GET /api/v1/rcas", rh.list)

	mux.HandleFunc("GET /api/v1/sessions", sm.list)
	mux.HandleFunc("POST /api/v1/sessions", sm.create)
	mux.HandleFunc("GET /api/v1/sessions/{id}/messages", sm.messages)
	mux.HandleFunc("PUT /api/v1/sessions/{id}", sm.rename)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", sm.delete)

	mux.HandleFunc("POST /api/v1/chat", ch.send)
	mux.HandleFunc("POST /api/v1/chat/stream", ch.stream)

	var handler http.Handler = mux
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	return &Server{handler: handler}, nil
}

// Handler returns the root handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}
