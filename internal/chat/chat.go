// Package chat orchestrates one chat turn: persist the user message, route
// by intent, retrieve and generate, persist the assistant reply.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/koopa0/rca-agent/internal/intent"
	"github.com/koopa0/rca-agent/internal/llm"
	"github.com/koopa0/rca-agent/internal/search"
	"github.com/koopa0/rca-agent/internal/session"
)

// Sessions is the message store surface the flow needs.
type Sessions interface {
	AppendMessage(ctx context.Context, sessionID uuid.UUID, role, content string, matched []session.MatchedRCA) error
}

// Searcher retrieves similar incidents for a problem description.
type Searcher interface {
	Similar(ctx context.Context, problem string, topN int) ([]search.Result, error)
}

// Recommender generates the two kinds of answers.
type Recommender interface {
	Technical(ctx context.Context, problem string, results []search.Result) (string, error)
	General(ctx context.Context, query string) (string, error)
	GeneralStream(ctx context.Context, query string, cb llm.StreamCallback) (string, error)
}

// Reply is the outcome of one chat turn. MatchedRCAs is nil for general
// queries.
type Reply struct {
	Response    string          `json:"response"`
	MatchedRCAs []search.Result `json:"matched_rcas,omitempty"`
}

// Flow runs chat turns.
type Flow struct {
	sessions   Sessions
	classifier intent.Classifier
	searcher   Searcher
	rec        Recommender
	topN       int
	logger     *slog.Logger
}

// New creates a Flow. A nil logger falls back to slog.Default().
func New(sessions Sessions, classifier intent.Classifier, searcher Searcher, rec Recommender, topN int, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		sessions:   sessions,
		classifier: classifier,
		searcher:   searcher,
		rec:        rec,
		topN:       topN,
		logger:     logger,
	}
}

// Respond handles one blocking chat turn.
func (f *Flow) Respond(ctx context.Context, sessionID uuid.UUID, query string) (Reply, error) {
	return f.respond(ctx, sessionID, query, nil)
}

// RespondStream handles one chat turn, streaming answer fragments to cb.
// The assistant message is persisted only after the stream has drained; a
// cancelled stream persists nothing.
func (f *Flow) RespondStream(ctx context.Context, sessionID uuid.UUID, query string, cb llm.StreamCallback) (Reply, error) {
	return f.respond(ctx, sessionID, query, cb)
}

func (f *Flow) respond(ctx context.Context, sessionID uuid.UUID, query string, cb llm.StreamCallback) (Reply, error) {
	if err := f.sessions.AppendMessage(ctx, sessionID, session.RoleUser, query, nil); err != nil {
		return Reply{}, fmt.Errorf("storing user message: %w", err)
	}

	queryIntent := f.classifier.Classify(ctx, query)
	f.logger.Debug("routed query", "session_id", sessionID, "intent", queryIntent)

	var reply Reply
	switch queryIntent {
	case intent.TechnicalProblemSolving:
		results, err := f.searcher.Similar(ctx, query, f.topN)
		if err != nil {
			return Reply{}, fmt.Errorf("searching similar problems: %w", err)
		}

		response, err := f.rec.Technical(ctx, query, results)
		if err != nil {
			return Reply{}, fmt.Errorf("generating recommendation: %w", err)
		}
		if cb != nil {
			if err := cb(ctx, response); err != nil {
				return Reply{}, err
			}
		}
		reply = Reply{Response: response, MatchedRCAs: results}

	default:
		var (
			response string
			err      error
		)
		if cb != nil {
			response, err = f.rec.GeneralStream(ctx, query, cb)
		} else {
			response, err = f.rec.General(ctx, query)
		}
		if err != nil {
			return Reply{}, fmt.Errorf("generating answer: %w", err)
		}
		reply = Reply{Response: response}
	}

	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	if err := f.sessions.AppendMessage(ctx, sessionID, session.RoleAssistant, reply.Response, toSnapshots(reply.MatchedRCAs)); err != nil {
		return Reply{}, fmt.Errorf("storing assistant message: %w", err)
	}
	return reply, nil
}

// toSnapshots copies search results into the form stored with the message.
func toSnapshots(results []search.Result) []session.MatchedRCA {
	if len(results) == 0 {
		return nil
	}
	snapshots := make([]session.MatchedRCA, 0, len(results))
	for _, r := range results {
		snapshots = append(snapshots, session.MatchedRCA{
			RCAID:           r.RCAID,
			Filename:        r.Filename,
			ProjectName:     r.ProjectName,
			Problems:        r.Problems,
			Solutions:       r.Solutions,
			RootCauses:      r.RootCauses,
			SimilarityScore: r.SimilarityScore,
		})
	}
	return snapshots
}
