package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// chatHandler exposes the chat endpoints.
//
// POST /api/v1/chat responds in one JSON document; POST /api/v1/chat/stream
// delivers the answer as SSE chunk events followed by a done event carrying
// the full response.
type chatHandler struct {
	flow   ChatFlow
	logger *slog.Logger
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// parse decodes and validates the chat request body. On failure it reports
// via report and returns false.
func (h *chatHandler) parse(w http.ResponseWriter, r *http.Request, report func(code, message string)) (uuid.UUID, string, bool) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		report("invalid_request", "invalid request body")
		return uuid.Nil, "", false
	}
	if req.Query == "" {
		report("missing_query", "query is required")
		return uuid.Nil, "", false
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		report("invalid_session_id", "session_id must be a UUID")
		return uuid.Nil, "", false
	}
	return sessionID, req.Query, true
}

func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	sessionID, query, ok := h.parse(w, r, func(code, message string) {
		writeError(w, http.StatusBadRequest, code, message, h.logger)
	})
	if !ok {
		return
	}

	reply, err := h.flow.Respond(r.Context(), sessionID, query)
	if err != nil {
		h.logger.Error("chat turn failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "chat_failed", "failed to generate a response", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, reply, h.logger)
}

func (h *chatHandler) stream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID, query, ok := h.parse(w, r, func(code, message string) {
		_ = writeEvent(w, flusher, eventError, errorPayload{Code: code, Message: message})
	})
	if !ok {
		return
	}

	ctx := r.Context()
	h.logger.Debug("SSE stream started", "session_id", sessionID)

	reply, err := h.flow.RespondStream(ctx, sessionID, query, func(_ context.Context, chunk string) error {
		return writeEvent(w, flusher, eventChunk, chunkPayload{Text: chunk})
	})
	if err != nil {
		if ctx.Err() != nil {
			h.logger.Info("client disconnected", "session_id", sessionID)
			return
		}
		h.logger.Error("chat stream failed", "session_id", sessionID, "error", err)
		_ = writeEvent(w, flusher, eventError, errorPayload{Code: "stream_error", Message: "failed to generate a response"})
		return
	}

	done := donePayload{Response: reply.Response, SessionID: sessionID.String()}
	if len(reply.MatchedRCAs) > 0 {
		done.MatchedRCAs = reply.MatchedRCAs
	}
	_ = writeEvent(w, flusher, eventDone, done)
	h.logger.Debug("SSE stream completed", "session_id", sessionID)
}
