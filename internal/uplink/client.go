package uplink

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"sparkos/internal/config"
	"sparkos/internal/logging"
)

// =============================================================================
// MODEL TIERS
// =============================================================================

const (
	// ModelFlash is the default workhorse for conversational dispatch.
	ModelFlash = "gemini-2.5-flash"
	// ModelFlashLite handles low-stakes quick queries.
	ModelFlashLite = "gemini-2.5-flash-lite-latest"
	// ModelPro handles deep reasoning, document analysis, and report drafting.
	ModelPro = "gemini-3-pro-preview"

	// thinkingBudget is the token allowance for extended reasoning on the
	// pro tier.
	thinkingBudget int32 = 32768
)

// Generator is the minimal surface uplink needs from the Gemini SDK. Tests
// substitute a fake; production wraps the real client.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient wraps the GenAI SDK client with the retry and timeout policy
// from configuration.
type GeminiClient struct {
	client     *genai.Client
	timeout    time.Duration
	maxRetries int
}

// NewGeminiClient builds a client from configuration. The API key must be
// set; Config.Validate enforces that before we get here.
func NewGeminiClient(cfg *config.Config) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{
		client:     client,
		timeout:    cfg.GetGeminiTimeout(),
		maxRetries: cfg.Gemini.MaxRetries,
	}, nil
}

// GenerateContent calls the model, retrying transient failures with a short
// linear backoff. Context cancellation aborts the retry loop immediately.
func (g *GeminiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			logging.UplinkDebug("retrying model call (attempt %d/%d): %v", attempt, g.maxRetries, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		start := time.Now()
		resp, err := g.client.Models.GenerateContent(callCtx, model, contents, cfg)
		elapsed := time.Since(start)
		cancel()

		if err == nil {
			logging.Uplink("model %s responded in %s", model, elapsed.Round(time.Millisecond))
			logging.Audit().LLMCall(model, elapsed.Milliseconds(), true, "")
			return resp, nil
		}

		lastErr = err
		logging.UplinkError("model %s call failed after %s: %v", model, elapsed.Round(time.Millisecond), err)
		logging.Audit().LLMCall(model, elapsed.Milliseconds(), false, err.Error())

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("model %s unavailable after %d attempts: %w", model, g.maxRetries+1, lastErr)
}

// Close exists for symmetry with other transports; the SDK client holds no
// resources that need teardown.
func (g *GeminiClient) Close() error {
	return nil
}
