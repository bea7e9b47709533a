// Package gemini implements the assistant language model on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xavierca1/leadfunnel/internal/usecase"
)

const DefaultModel = "gemini-2.0-flash"

var ErrEmptyReply = errors.New("gemini returned no text")

type Client struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// Options overrides transport details, mostly for tests.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(ctx context.Context, apiKey, model string, logger *zap.Logger, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{
		client:      client,
		model:       model,
		temperature: 0.4,
		logger:      logger,
	}, nil
}

// Complete sends the conversation and returns the model's reply text.
func (c *Client) Complete(ctx context.Context, system string, history []usecase.ChatMessage) (string, error) {
	contents := Contents(history)
	if len(contents) == 0 {
		return "", errors.New("empty conversation")
	}

	temp := c.temperature
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyReply
	}

	c.logger.Debug("gemini reply", zap.Int("turns", len(contents)), zap.Int("chars", len(text)))
	return text, nil
}

// Contents maps chat turns onto Gemini roles. Anything that is not the
// assistant counts as the user; blank turns are dropped.
func Contents(history []usecase.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if m.Role == "assistant" || m.Role == "model" {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(text, role))
	}
	return out
}
