package api

import (
	"log/slog"
	"net/http"
)

// syncHandler exposes one-shot knowledge-base syncs.
type syncHandler struct {
	syncer Syncer
	logger *slog.Logger
}

// run triggers a sync and reports its counters.
func (h *syncHandler) run(w http.ResponseWriter, r *http.Request) {
	stats, err := h.syncer.Run(r.Context())
	if err != nil {
		h.logger.Error("sync failed", "error", err)
		writeError(w, http.StatusInternalServerError, "sync_failed", err.Error(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, stats, h.logger)
}
