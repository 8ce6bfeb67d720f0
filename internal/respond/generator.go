package respond

import (
	"context"
	"fmt"

	"github.com/replypilot/replypilot/internal/account"
	"github.com/replypilot/replypilot/internal/logging"
	"github.com/replypilot/replypilot/internal/metrics"
	"github.com/replypilot/replypilot/internal/provider"
	"github.com/replypilot/replypilot/internal/traces"
)

// Generator turns one review into reply variants through the LLM provider.
type Generator struct {
	provider  provider.Client
	maxTokens int
}

// NewGenerator creates a Generator. maxTokens caps the model output.
func NewGenerator(p provider.Client, maxTokens int) *Generator {
	return &Generator{provider: p, maxTokens: maxTokens}
}

// Generate makes exactly one provider call per review. Output that fails
// to parse as the expected JSON is replaced with template fallbacks and
// still counts as a successful generation. Only a provider failure is an
// error.
func (g *Generator) Generate(ctx context.Context, review Review, profile *account.Profile, variantCount int) ([]Response, error) {
	ctx, span := traces.StartSpan(ctx, "respond.generate",
		traces.Sentiment(string(Classify(review.Rating))),
		traces.Rating(review.Rating),
		traces.VariantCount(variantCount),
	)
	defer span.End()

	prompt := BuildPrompt(review, profile, variantCount)

	raw, err := g.provider.Complete(ctx, prompt, g.maxTokens)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	responses, ok := parseResponses(raw)
	if !ok {
		logging.L(ctx).Warn("model output was not valid JSON, using fallback replies",
			"provider", g.provider.Name(),
			"output_len", len(raw),
		)
		metrics.GenerationsTotal.WithLabelValues("fallback").Inc()
		return fallbackResponses(review, profile), nil
	}

	metrics.GenerationsTotal.WithLabelValues("parsed").Inc()
	return responses, nil
}
