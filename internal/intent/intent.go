// Package intent routes user queries to the right recommendation path.
package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/koopa0/rca-agent/internal/llm"
)

// Intent is a query category.
type Intent string

// The two query categories.
const (
	TechnicalProblemSolving Intent = "technical_problem_solving"
	GeneralKnowledgeQuery   Intent = "general_knowledge_query"
)

// Classifier decides the intent of a user query.
type Classifier interface {
	Classify(ctx context.Context, query string) Intent
}

// LLMClassifier asks the model to categorize the query. It matches category
// keywords in the response instead of parsing structured output, and falls
// back to the general category on any failure.
type LLMClassifier struct {
	llm    llm.Client
	logger *slog.Logger
}

// NewLLMClassifier creates an LLMClassifier. A nil logger falls back to
// slog.Default().
func NewLLMClassifier(client llm.Client, logger *slog.Logger) *LLMClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMClassifier{llm: client, logger: logger}
}

const routingPromptFormat = `You are a high-level query routing system. Your only job is to classify the user's request into one of two categories.

Categories:
1. "technical_problem_solving": The user is describing a live, ongoing technical problem, an error, or a system failure and is looking for a solution. Examples: "The database is timing out again", "I'm getting 500 errors on the checkout page", "Our main VM just crashed".
2. "general_knowledge_query": The user is asking a question *about* the knowledge base (e.g., "how many...", "list...", "tell me about..."), or is having a general conversation.

User Query: "%s"

Analyze the query and respond with just the category name.
Example response: general_knowledge_query`

// Classify returns the category for a query. Model failures route to
// GeneralKnowledgeQuery.
func (c *LLMClassifier) Classify(ctx context.Context, query string) Intent {
	response, err := c.llm.Generate(ctx, fmt.Sprintf(routingPromptFormat, query))
	if err != nil {
		c.logger.Warn("intent classification failed, defaulting to general", "error", err)
		return GeneralKnowledgeQuery
	}

	if strings.Contains(strings.ToLower(strings.TrimSpace(response)), string(TechnicalProblemSolving)) {
		return TechnicalProblemSolving
	}
	return GeneralKnowledgeQuery
}
