package services

import (
	"context"
	"strings"
	"time"

	"github.com/caldera-labs/reviewpulse/internal/core/domain"
	"github.com/caldera-labs/reviewpulse/internal/core/ports/driven"
	"github.com/caldera-labs/reviewpulse/internal/logger"
	"github.com/caldera-labs/reviewpulse/internal/ratelimit"
)

// Default analyser configuration values.
const (
	// minReviewLength is the threshold below which a review is not
	// worth a remote call.
	minReviewLength = 10

	// maxReviewLength caps the text sent to the service.
	maxReviewLength = 1000

	// defaultTemperature keeps generation low-variance so the model
	// sticks to the closed label set.
	defaultTemperature = 0.1

	// defaultMaxTokens caps the output; a label is one word.
	defaultMaxTokens = 10

	// fixedConfidence is reported on success. The service provides no
	// native confidence score.
	fixedConfidence = 0.95
)

const systemPrompt = "You are a sentiment analysis expert. Respond only with: POSITIVE, NEGATIVE, or NEUTRAL."

// AnalyserConfig configures a sentiment analyser. The zero value uses
// the defaults above.
type AnalyserConfig struct {
	// Temperature overrides the generation temperature when positive.
	Temperature float64

	// MaxTokens overrides the output token cap when positive.
	MaxTokens int
}

// Analyser turns review text into a validated sentiment label with
// fail-safe defaults. Classification degrades to data: a remote failure
// becomes a NEUTRAL result carrying the error text, never a Go error.
type Analyser struct {
	llm     driven.ChatService
	limiter *ratelimit.Limiter
	cfg     AnalyserConfig
}

// NewAnalyser creates a sentiment analyser bound to a chat service and
// its rate limiter.
func NewAnalyser(llm driven.ChatService, limiter *ratelimit.Limiter, cfg AnalyserConfig) *Analyser {
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &Analyser{llm: llm, limiter: limiter, cfg: cfg}
}

// Analyse classifies a single review text.
//
// Texts shorter than 10 characters short-circuit to a zero-confidence
// NEUTRAL result without touching the rate limiter or the service.
// Labels outside the closed set are coerced to NEUTRAL with a warning.
func (a *Analyser) Analyse(ctx context.Context, text string) domain.SentimentResult {
	if len(strings.TrimSpace(text)) < minReviewLength {
		return domain.SentimentResult{
			Sentiment:  domain.SentimentNeutral,
			Confidence: 0,
			AnalysedAt: time.Now(),
			Error:      "Review too short",
		}
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return degraded(err)
	}

	start := time.Now()
	completion, err := a.llm.Complete(ctx, []driven.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(text)},
	}, driven.CompletionOptions{
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	})
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("Sentiment analysis failed: %v", err)
		return degraded(err)
	}

	sentiment := domain.Sentiment(strings.ToUpper(strings.TrimSpace(completion.Content)))
	if !sentiment.Valid() {
		logger.Warn("Invalid sentiment response %q, coercing to NEUTRAL", completion.Content)
		sentiment = domain.SentimentNeutral
	}

	a.limiter.Record(completion.TokensUsed)

	return domain.SentimentResult{
		Sentiment:    sentiment,
		Confidence:   fixedConfidence,
		ResponseTime: elapsed,
		TokensUsed:   completion.TokensUsed,
		AnalysedAt:   time.Now(),
	}
}

// AnalyseBatch classifies reviews sequentially, one at a time, relying
// on the rate limiter for pacing. Each result carries its review's ID.
// Stops early when ctx is cancelled, returning what was produced so far.
func (a *Analyser) AnalyseBatch(ctx context.Context, reviews []domain.Review) []domain.SentimentResult {
	results := make([]domain.SentimentResult, 0, len(reviews))

	for i, review := range reviews {
		if ctx.Err() != nil {
			logger.Warn("Analysis cancelled after %d/%d reviews", i, len(reviews))
			break
		}

		logger.Debug("Analysing review %d/%d", i+1, len(reviews))
		result := a.Analyse(ctx, review.Text)
		result.ReviewID = review.ID
		results = append(results, result)
	}

	return results
}

// buildPrompt creates the closed-instruction prompt for one review.
func buildPrompt(text string) string {
	if len(text) > maxReviewLength {
		text = text[:maxReviewLength]
	}

	var b strings.Builder
	b.WriteString("Analyze the sentiment of the following product review and classify it as POSITIVE, NEGATIVE, or NEUTRAL.\n\n")
	b.WriteString("Review: ")
	b.WriteString(text)
	b.WriteString("\n\nInstructions:\n")
	b.WriteString("1. POSITIVE: Customer is satisfied, recommends the product, expresses happiness\n")
	b.WriteString("2. NEGATIVE: Customer is dissatisfied, complains, expresses frustration\n")
	b.WriteString("3. NEUTRAL: Mixed feelings, factual description without clear emotion\n\n")
	b.WriteString("Respond with ONLY one word: POSITIVE, NEGATIVE, or NEUTRAL.")
	return b.String()
}

// degraded builds the fail-safe result for a classification failure.
func degraded(err error) domain.SentimentResult {
	return domain.SentimentResult{
		Sentiment:  domain.SentimentNeutral,
		Confidence: 0,
		AnalysedAt: time.Now(),
		Error:      err.Error(),
	}
}
