package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/driveglass/gdrive-mcp/internal/logging"
)

const (
	// DefaultModel is the generative model used for summarization.
	DefaultModel = "gemini-2.5-flash"

	// APIKeyEnvVar is the environment variable carrying the Gemini API key.
	// An absent key is not validated here; it surfaces as a remote
	// authentication failure at call time.
	APIKeyEnvVar = "GEMINI_API_KEY"
)

// Client sends text to the Gemini API and collects a streamed response.
type Client struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a summarization client for the Gemini API.
func NewClient(ctx context.Context, apiKey string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithService(logger, "gemini")

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  DefaultModel,
		logger: logger,
	}, nil
}

// Summarize sends the extracted text in a single user turn and concatenates
// the streamed response fragments in arrival order. There is no
// partial-result fallback: a mid-stream error fails the whole operation and
// the fragments received so far are discarded.
func (c *Client) Summarize(ctx context.Context, text, prompt string) (string, error) {
	contents := buildSummaryContents(text, prompt)
	config := buildSummaryConfig()

	var sb strings.Builder
	fragments := 0
	for chunk, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, config) {
		if err != nil {
			return "", fmt.Errorf("summarization stream failed: %w", err)
		}
		sb.WriteString(chunk.Text())
		fragments++
	}

	c.logger.Debug("collected summary",
		logging.Operation("summarize"),
		slog.String("model", c.model),
		slog.Int("fragments", fragments))

	return sb.String(), nil
}

// buildSummaryContents assembles the single user turn. The caller-supplied
// prompt leads, the extracted document text follows.
func buildSummaryContents(text, prompt string) []*genai.Content {
	var parts []*genai.Part
	if prompt != "" {
		parts = append(parts, genai.NewPartFromText(prompt))
	}
	parts = append(parts, genai.NewPartFromText(text))

	return []*genai.Content{
		{Role: genai.RoleUser, Parts: parts},
	}
}

// buildSummaryConfig requests plain-text output with an unconstrained
// thinking budget (-1 lets the model decide).
func buildSummaryConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(-1)),
		},
		ResponseMIMEType: "text/plain",
	}
}
