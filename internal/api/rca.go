package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/koopa0/rca-agent/internal/knowledge"
)

// rcaHandler exposes the stored RCA documents.
type rcaHandler struct {
	docs   Documents
	logger *slog.Logger
}

// rcaResponse is the JSON shape of one RCA document.
type rcaResponse struct {
	ID             int64     `json:"id"`
	Filename       string    `json:"filename"`
	SourcePath     string    `json:"source_path"`
	ProjectName    string    `json:"project_name"`
	Problems       []string  `json:"problems"`
	Solutions      []string  `json:"solutions"`
	RootCauses     []string  `json:"root_causes"`
	LessonsLearned []string  `json:"lessons_learned"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// list returns every document, most recently updated first.
func (h *rcaHandler) list(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "failed to list RCA documents", h.logger)
		return
	}

	out := make([]rcaResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toRCAResponse(doc))
	}
	writeJSON(w, http.StatusOK, out, h.logger)
}

func toRCAResponse(doc knowledge.Document) rcaResponse {
	return rcaResponse{
		ID:             doc.ID,
		Filename:       doc.Filename,
		SourcePath:     doc.SourcePath,
		ProjectName:    doc.ProjectName,
		Problems:       doc.Problems,
		Solutions:      doc.Solutions,
		RootCauses:     doc.RootCauses,
		LessonsLearned: doc.LessonsLearned,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}
