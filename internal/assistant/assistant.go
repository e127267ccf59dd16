// Package assistant composes retrieval, prompt construction, and answer
// generation into a single-turn question answering pipeline.
package assistant

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"rag-assistant/internal/domain"
	"rag-assistant/internal/prompt"
)

// Fixed terminal responses. Per-query failures never escape Query; they
// collapse into one of these so an interactive session cannot crash
// mid-conversation.
const (
	MsgInvalidQuestion = "Please ask a valid question."
	MsgNoDocuments     = "No relevant documents found."
	MsgQueryError      = "Error occurred during query."
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 3

// Retriever is the document-store surface the assistant depends on.
type Retriever interface {
	AddDocuments(ctx context.Context, docs []domain.Document) error
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}

// Assistant answers natural-language questions grounded in retrieved
// document chunks. Each question is answered independently.
type Assistant struct {
	store     Retriever
	prompts   *prompt.Builder
	generator domain.Generator
	log       *zap.Logger
	topK      int
}

func New(store Retriever, prompts *prompt.Builder, generator domain.Generator, log *zap.Logger, topK int) *Assistant {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if log == nil {
		log = zap.NewNop()
	}
	if prompts == nil {
		prompts = prompt.NewBuilder()
	}
	return &Assistant{store: store, prompts: prompts, generator: generator, log: log, topK: topK}
}

// IngestDocuments adds documents to the store. Unlike Query, ingestion
// failures propagate so the caller can decide to retry or abort.
func (a *Assistant) IngestDocuments(ctx context.Context, docs []domain.Document) error {
	return a.store.AddDocuments(ctx, docs)
}

// Query answers a single question. Blank questions and questions with no
// retrievable context short-circuit before the generator is invoked; any
// retrieval or generation failure is contained into the fixed error
// response.
func (a *Assistant) Query(ctx context.Context, question string) domain.QueryResponse {
	if strings.TrimSpace(question) == "" {
		a.log.Warn("empty question")
		return domain.QueryResponse{Answer: MsgInvalidQuestion, Sources: []string{}}
	}

	results, err := a.store.Search(ctx, question, a.topK)
	if err != nil {
		a.log.Error("retrieval failed", zap.Error(err))
		return domain.QueryResponse{Answer: MsgQueryError, Sources: []string{}}
	}
	if len(results) == 0 {
		a.log.Warn("no relevant documents found")
		return domain.QueryResponse{Answer: MsgNoDocuments, Sources: []string{}}
	}

	p := a.prompts.Build(question, results)
	a.log.Debug("invoking generator",
		zap.String("backend", a.generator.Name()),
		zap.Int("context_chunks", len(results)),
	)
	answer, err := a.generator.Invoke(ctx, p)
	if err != nil {
		a.log.Error("generation failed", zap.Error(err))
		return domain.QueryResponse{Answer: MsgQueryError, Sources: []string{}}
	}

	return domain.QueryResponse{
		Answer:  strings.TrimSpace(answer),
		Sources: dedupeSources(results),
	}
}

// dedupeSources collects distinct source titles in first-occurrence order.
func dedupeSources(results []domain.SearchResult) []string {
	seen := make(map[string]struct{}, len(results))
	sources := make([]string, 0, len(results))
	for _, r := range results {
		title := r.Title()
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		sources = append(sources, title)
	}
	return sources
}
