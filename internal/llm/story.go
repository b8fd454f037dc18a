package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/evitrend/internal/model"
)

const storySystemPrompt = "You are a biomedical science writer. Only discuss the evidence you are given."

// StoryConfig tunes narrative generation
type StoryConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// DefaultStoryConfig returns the narrative sampling defaults
func DefaultStoryConfig() StoryConfig {
	return StoryConfig{
		Temperature: 0.7,
		MaxTokens:   1024,
	}
}

// StoryConfigFromModel converts model.StoryConfig to llm.StoryConfig
func StoryConfigFromModel(c model.StoryConfig) StoryConfig {
	return StoryConfig{
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
}

// StoryGenerator writes a narrative from validated evidence and the trend
// report. Its output is attached to the report and never feeds the analysis.
type StoryGenerator struct {
	provider Provider
	config   StoryConfig
}

// NewStoryGenerator creates a generator; a nil provider disables it
func NewStoryGenerator(provider Provider, config StoryConfig) *StoryGenerator {
	return &StoryGenerator{provider: provider, config: config}
}

// IsEnabled returns true if a provider is configured
func (g *StoryGenerator) IsEnabled() bool {
	return g != nil && g.provider != nil
}

// ProviderName returns the name of the configured provider
func (g *StoryGenerator) ProviderName() string {
	if !g.IsEnabled() {
		return ""
	}
	return g.provider.Name()
}

// Generate produces the story. Failures are reported as warnings on the
// result so the analysis run still completes.
func (g *StoryGenerator) Generate(ctx context.Context, statements []model.Statement, reportText string) (*model.StoryResult, error) {
	if !g.IsEnabled() {
		return nil, nil
	}

	if !g.provider.IsAvailable(ctx) {
		return &model.StoryResult{
			Enabled:  false,
			Provider: g.provider.Name(),
			Warnings: []string{fmt.Sprintf("LLM provider '%s' is not available (check API key or connectivity)", g.provider.Name())},
		}, nil
	}

	result := &model.StoryResult{
		Enabled:  true,
		Provider: g.provider.Name(),
		Model:    g.config.Model,
	}

	if !hasValidatedEvidence(statements) {
		result.Warnings = append(result.Warnings, "No correctness=1 statements left; skipping story generation")
		return result, nil
	}

	resp, err := g.provider.Complete(ctx, CompletionRequest{
		Prompt:      BuildStoryPrompt(statements, reportText),
		System:      storySystemPrompt,
		Model:       g.config.Model,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Story generation failed: %v", err))
		return result, nil
	}

	result.Story = resp.Text
	result.Model = resp.Model
	result.TokensUsed = resp.TokensUsed
	result.Warnings = append(result.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	return result, nil
}

func hasValidatedEvidence(statements []model.Statement) bool {
	for _, s := range statements {
		if s.HasValidated() {
			return true
		}
	}
	return false
}
