// Package extraction implements the per-page extraction unit: it feeds one
// rasterized page image to a multimodal model and persists the returned
// text together with a durable completion marker.
package extraction

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"docuvert/core"
	"docuvert/logging"

	"go.uber.org/zap"
)

// ModelClient is the interface the unit depends on for inference.
// Production code uses VisionClient; tests substitute a fake.
type ModelClient interface {
	// ExtractImage sends one image and one instruction to the model and
	// returns the free-form text it produces.
	ExtractImage(ctx context.Context, image []byte, instruction string) (string, error)
}

// VisionClientConfig holds configuration for the multimodal client.
type VisionClientConfig struct {
	// Model is the multimodal model identifier
	Model string

	// BaseURL overrides the API endpoint (empty for the OpenAI default);
	// any OpenAI-compatible server works, including local ones
	BaseURL string

	// MaxTokens caps the completion length per page
	MaxTokens int

	// Timeout bounds one inference call
	Timeout time.Duration
}

// DefaultVisionClientConfig returns sensible default configuration.
func DefaultVisionClientConfig() VisionClientConfig {
	return VisionClientConfig{
		Model:     core.DefaultVisionModel,
		MaxTokens: 4096,
		Timeout:   120 * time.Second,
	}
}

// VisionClient wraps an OpenAI-compatible chat-completions endpoint for
// multimodal page extraction. Safe for concurrent use.
type VisionClient struct {
	client *openai.Client
	config VisionClientConfig
	logger *logging.Logger
}

// NewVisionClient creates a multimodal client for the given API key.
func NewVisionClient(apiKey string, config VisionClientConfig, logger *logging.Logger) (*VisionClient, error) {
	if apiKey == "" {
		return nil, core.NewValidationError("API key", "must not be empty")
	}
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	if config.Model == "" {
		config.Model = core.DefaultVisionModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultVisionClientConfig().MaxTokens
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultVisionClientConfig().Timeout
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &VisionClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger.Named("vision-client"),
	}, nil
}

// ExtractImage performs one multimodal inference call: the image is embedded
// as a base64 data URL next to the format instruction, and the model's text
// response is returned verbatim.
func (c *VisionClient) ExtractImage(ctx context.Context, image []byte, instruction string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("extraction: image data is empty")
	}

	start := time.Now()
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)

	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: instruction,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		MaxTokens: c.config.MaxTokens,
	})
	if err != nil {
		return "", classifyAPIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("inference call completed",
		zap.Int("image_bytes", len(image)),
		zap.Int("content_length", len(content)),
		zap.Duration("duration", time.Since(start)),
	)
	return content, nil
}

// classifyAPIError maps endpoint failures into the extraction error
// vocabulary: credential rejections become ErrInvalidCredentials so the
// caller can distinguish them from transient failures.
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
	}
	return fmt.Errorf("inference call failed: %w", err)
}
