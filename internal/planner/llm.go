package planner

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prakritea/decomposr/internal/apperr"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator is the one-shot completion interface the service depends on.
// Tests substitute a fake; production uses the langchaingo-backed client.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type openAIGenerator struct {
	model llms.Model
}

// NewOpenAIGenerator builds a Generator backed by an OpenAI-compatible
// endpoint. The API key is read from OPENAI_API_KEY by the SDK.
func NewOpenAIGenerator(model string) (Generator, error) {
	llm, err := openai.New(openai.WithModel(model))

	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	return &openAIGenerator{model: llm}, nil
}

func (g *openAIGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, llms.WithTemperature(0.2))

	if err != nil {
		return "", classifyProviderError(err)
	}

	return out, nil
}

var retryAfterRe = regexp.MustCompile(`(?i)(?:retry|try again) (?:after|in) (\d+)`)

// classifyProviderError maps provider failures onto the error taxonomy.
// Throttling responses become RateLimited, with the retry hint extracted
// from the provider message when one is present.
func classifyProviderError(err error) error {
	msg := err.Error()
	lower := strings.ToLower(msg)

	// Match the status-code portion of the client error, not a bare "429"
	// that could appear inside a request id.
	if strings.Contains(lower, "status code: 429") || strings.Contains(lower, "rate limit") {
		var retryAfter time.Duration

		if m := retryAfterRe.FindStringSubmatch(msg); m != nil {
			if secs, convErr := strconv.Atoi(m[1]); convErr == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}

		return apperr.RateLimited("AI provider is rate limiting requests, please retry later", retryAfter)
	}

	return apperr.AIProvider(fmt.Sprintf("AI provider request failed: %v", err))
}
