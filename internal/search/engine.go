// Package search answers similarity queries and augments chat prompts with retrieved code.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/codectx/internal/config"
	"github.com/hyperjump/codectx/internal/models"
	"github.com/hyperjump/codectx/internal/provider"
	"github.com/hyperjump/codectx/internal/vector"
)

var (
	// ErrInvalidQuery wraps query validation failures.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNoProvider is returned by chat operations when no provider is configured.
	ErrNoProvider = errors.New("no chat provider configured")
)

// Engine runs similarity search over the vector store and optionally forwards
// context-augmented prompts to a chat provider.
type Engine struct {
	store  *vector.Store
	client provider.Client
	config *config.SearchConfig
	logger *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine. client may be nil when no chat provider is configured.
func NewEngine(store *vector.Store, client provider.Client, cfg *config.SearchConfig, opts ...EngineOption) *Engine {
	e := &Engine{store: store, client: client, config: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search validates the query and returns the best-matching chunks.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := ProcessQuery(query, e.config); err != nil {
		return nil, err
	}
	results, err := e.retrieve(ctx, query.Query, query.TopK, query.MinScore)
	if err != nil {
		return nil, err
	}
	return &models.SearchResponse{
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(startTime).Milliseconds(),
		Query:     query.Query,
	}, nil
}

func (e *Engine) retrieve(ctx context.Context, query string, topK int, minScore float64) ([]*models.SearchResult, error) {
	hits, err := e.store.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	results := make([]*models.SearchResult, 0, len(hits))
	for i := range hits {
		if minScore != 0 && hits[i].Score < minScore {
			continue
		}
		hit := hits[i]
		hit.Rank = len(results) + 1
		results = append(results, &hit)
	}
	return results, nil
}

// Ask retrieves context for the question (unless disabled), builds the prompt and
// returns the provider's answer.
func (e *Engine) Ask(ctx context.Context, req *models.AskRequest) (*models.AskResponse, error) {
	if e.client == nil {
		return nil, ErrNoProvider
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	var contextResults []*models.SearchResult
	if !req.NoContext {
		q := &models.SearchQuery{Query: req.Question, TopK: req.TopK}
		if err := ProcessQuery(q, e.config); err != nil {
			return nil, err
		}
		results, err := e.retrieve(ctx, q.Query, q.TopK, q.MinScore)
		if err != nil {
			return nil, err
		}
		contextResults = results
	}

	prompt := BuildPrompt(req.Question, contextResults)
	e.logger.Debug("sending prompt",
		zap.String("provider", string(e.client.Kind())),
		zap.String("model", e.client.Model()),
		zap.Int("context_chunks", len(contextResults)),
		zap.Int("prompt_bytes", len(prompt)),
	)
	answer, err := e.client.SendMessage(ctx, prompt)
	if err != nil {
		e.logger.Error("provider request failed", zap.String("provider", string(e.client.Kind())), zap.Error(err))
		return nil, err
	}
	return &models.AskResponse{
		Answer:   answer,
		Provider: string(e.client.Kind()),
		Model:    e.client.Model(),
		Context:  contextResults,
		Prompt:   prompt,
	}, nil
}

// Models lists the configured provider's models.
func (e *Engine) Models(ctx context.Context) ([]provider.Model, error) {
	if e.client == nil {
		return nil, ErrNoProvider
	}
	return e.client.GetModels(ctx)
}

// Provider returns the configured chat provider, or nil.
func (e *Engine) Provider() provider.Client {
	return e.client
}

// Store returns the engine's vector store.
func (e *Engine) Store() *vector.Store {
	return e.store
}
