// Package llm wraps the Genkit model integration behind the two capabilities
// the pipeline needs: embedding text into vectors and generating text from a
// prompt (optionally streamed).
//
// Components depend on the Client interface so tests can substitute a
// deterministic stub without a Genkit instance.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
)

// StreamCallback is called for each text fragment of a streaming response,
// in arrival order. Returning an error aborts the stream.
type StreamCallback func(ctx context.Context, chunk string) error

// Client is the model capability surface consumed by the pipeline.
type Client interface {
	// Embed converts text into a fixed-length embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Generate runs a blocking generation call and returns the full text.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream runs a streaming generation call, invoking cb for each
	// fragment as it arrives, and returns the full concatenated text after
	// the stream is drained.
	GenerateStream(ctx context.Context, prompt string, cb StreamCallback) (string, error)
}

// Gemini is the production Client backed by Genkit with the GoogleAI plugin.
// A shared rate limiter sits in front of all model calls.
//
// Gemini is safe for concurrent use by multiple goroutines.
type Gemini struct {
	g         *genkit.Genkit
	embedder  ai.Embedder
	modelName string // provider-qualified, e.g. "googleai/gemini-2.5-flash"
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New creates a Gemini client.
//
// modelName must be provider-qualified (config.FullModelName). If limiter is
// nil a default of 10 req/s with burst 30 is used. If logger is nil the
// default slog logger is used.
func New(g *genkit.Genkit, embedder ai.Embedder, modelName string, limiter *rate.Limiter, logger *slog.Logger) *Gemini {
	if limiter == nil {
		limiter = rate.NewLimiter(10, 30)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{
		g:         g,
		embedder:  embedder,
		modelName: modelName,
		limiter:   limiter,
		logger:    logger,
	}
}

// Embed implements Client.
func (c *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	resp, err := c.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			{
				Content: []*ai.Part{ai.NewTextPart(text)},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}

	return resp.Embeddings[0].Embedding, nil
}

// Generate implements Client.
func (c *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, nil)
}

// GenerateStream implements Client.
func (c *Gemini) GenerateStream(ctx context.Context, prompt string, cb StreamCallback) (string, error) {
	return c.generate(ctx, prompt, cb)
}

func (c *Gemini) generate(ctx context.Context, prompt string, cb StreamCallback) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	opts := []ai.GenerateOption{
		ai.WithPrompt("%s", prompt),
		ai.WithModelName(c.modelName),
	}
	if cb != nil {
		opts = append(opts, ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			if chunk == nil {
				return nil
			}
			for _, part := range chunk.Content {
				if part.Text == "" {
					continue
				}
				if err := cb(ctx, part.Text); err != nil {
					return err
				}
			}
			return nil
		}))
	}

	c.logger.Debug("executing generation", "model", c.modelName, "prompt_length", len(prompt), "streaming", cb != nil)

	resp, err := genkit.Generate(ctx, c.g, opts...)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	return resp.Text(), nil
}
