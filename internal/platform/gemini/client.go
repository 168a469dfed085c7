package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/phrazzld/wordnews/internal/config"
	"github.com/phrazzld/wordnews/internal/generation"
	"github.com/phrazzld/wordnews/internal/platform/logger"
	"google.golang.org/genai"
)

// generateFunc matches genai's Models.GenerateContent.
type generateFunc func(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error)

// Client implements generation.Client with the Gemini API.
type Client struct {
	generate generateFunc
	retry    generation.RetryPolicy
	logger   *slog.Logger
}

var _ generation.Client = (*Client)(nil)

// NewClient creates a Gemini client from the LLM configuration. A non-empty
// BaseURL overrides the API endpoint.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := validateConfig(ctx, logger, cfg); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newClient(client.Models.GenerateContent, generation.RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.BaseDelay,
	}, logger), nil
}

func newClient(generate generateFunc, retry generation.RetryPolicy, log *slog.Logger) *Client {
	return &Client{
		generate: generate,
		retry:    retry,
		logger:   log.With(slog.String("component", "gemini_client")),
	}
}

// Call implements generation.Client.
func (c *Client) Call(
	ctx context.Context,
	model string,
	history []generation.Message,
	opts generation.CallOptions,
) (*generation.Response, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	contents, cfg := buildRequest(history, opts)
	if len(contents) == 0 {
		return nil, fmt.Errorf("%w: conversation has no user content", generation.ErrInvalidConfig)
	}

	var out *generation.Response
	err := c.retry.Do(ctx, log, func(ctx context.Context) error {
		resp, err := c.generate(ctx, model, contents, cfg)
		if err != nil {
			return classifyError(err)
		}
		out, err = convertResponse(resp)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "gemini call succeeded",
		slog.String("model", model),
		slog.Bool("json", opts.JSON),
		slog.Bool("web_search", opts.WebSearch))
	return out, nil
}

// buildRequest translates the conversation into genai contents and a
// request configuration.
func buildRequest(
	history []generation.Message,
	opts generation.CallOptions,
) ([]*genai.Content, *genai.GenerateContentConfig) {
	var system []string
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case generation.RoleSystem:
			system = append(system, msg.Content)
		case generation.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if opts.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if opts.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return contents, cfg
}

// convertResponse extracts text, grounding metadata and usage.
func convertResponse(resp *genai.GenerateContentResponse) (*generation.Response, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" &&
		resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return nil, fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent,
		genai.FinishReasonBlocklist, genai.FinishReasonSPII:
		return nil, fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, candidate.FinishReason)
	}

	out := &generation.Response{Text: resp.Text()}
	if candidate.GroundingMetadata != nil {
		metadata, err := json.Marshal(candidate.GroundingMetadata)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encode grounding metadata: %v", generation.ErrInvalidResponse, err)
		}
		out.Metadata = metadata
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &generation.Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return out, nil
}

// classifyError marks retryable API and network failures as transient.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return fmt.Errorf("%w: gemini status %d: %s", generation.ErrTransientFailure, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("gemini status %d: %s", apiErr.Code, apiErr.Message)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
	return err
}
