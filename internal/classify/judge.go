package classify

import (
	"context"
	"fmt"

	"github.com/ppiankov/evitrend/internal/llm"
	"github.com/ppiankov/evitrend/internal/model"
)

// Query is one correctness question: does EvidenceText imply
// "Subject Relationship Object"?
type Query struct {
	EvidenceText string
	Subject      string
	Object       string
	Relationship string
}

// Judge answers correctness queries
type Judge interface {
	Judge(ctx context.Context, q Query) (bool, error)
}

// JudgeFunc adapts a plain function to the Judge interface
type JudgeFunc func(ctx context.Context, q Query) (bool, error)

// Judge calls f(ctx, q)
func (f JudgeFunc) Judge(ctx context.Context, q Query) (bool, error) {
	return f(ctx, q)
}

// LLMJudge asks a language model for a Yes/No verdict
type LLMJudge struct {
	provider    llm.Provider
	model       string
	temperature float32
	maxTokens   int
}

// NewLLMJudge creates a judge backed by provider
func NewLLMJudge(provider llm.Provider, cfg model.ClassifierConfig) *LLMJudge {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 5
	}
	return &LLMJudge{
		provider:    provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}
}

// Judge returns true iff the reply starts with "yes"
func (j *LLMJudge) Judge(ctx context.Context, q Query) (bool, error) {
	if j.provider == nil {
		return false, fmt.Errorf("no LLM provider configured")
	}

	resp, err := j.provider.Complete(ctx, llm.CompletionRequest{
		Prompt:      llm.BuildCorrectnessPrompt(q.EvidenceText, q.Subject, q.Relationship, q.Object),
		Model:       j.model,
		MaxTokens:   j.maxTokens,
		Temperature: j.temperature,
	})
	if err != nil {
		return false, fmt.Errorf("correctness check: %w", err)
	}

	return llm.IsAffirmative(resp.Text), nil
}
