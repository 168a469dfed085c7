package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/wordnews/internal/config"
	"github.com/phrazzld/wordnews/internal/generation"
	"github.com/phrazzld/wordnews/internal/platform/logger"
)

// DefaultBaseURL is used when llm.base_url is empty.
const DefaultBaseURL = "https://api.openai.com/v1"

// maxErrorBody bounds how much of an error response is quoted.
const maxErrorBody = 1024

// Client implements generation.Client with the Responses API.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	retry      generation.RetryPolicy
	logger     *slog.Logger
}

var _ generation.Client = (*Client)(nil)

// NewClient builds a client from the LLM configuration. A nil httpClient
// gets a default client without an overall timeout; stage deadlines come
// from the caller's context.
func NewClient(cfg config.LLMConfig, httpClient *http.Client, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max retries cannot be negative", generation.ErrInvalidConfig)
	}
	if log == nil {
		log = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	return &Client{
		endpoint:   base + "/responses",
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		retry:      generation.RetryPolicy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.BaseDelay},
		logger:     log.With(slog.String("component", "openai_client")),
	}, nil
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type textFormat struct {
	Type string `json:"type"`
}

type textConfig struct {
	Format textFormat `json:"format"`
}

type tool struct {
	Type string `json:"type"`
}

type request struct {
	Model      string         `json:"model"`
	Input      []inputMessage `json:"input"`
	Text       *textConfig    `json:"text,omitempty"`
	Tools      []tool         `json:"tools,omitempty"`
	ToolChoice string         `json:"tool_choice,omitempty"`
	Include    []string       `json:"include,omitempty"`
}

type outputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outputItem struct {
	Type    string          `json:"type"`
	Content []outputContent `json:"content"`
}

type response struct {
	Status            string       `json:"status"`
	Output            []outputItem `json:"output"`
	IncompleteDetails *struct {
		Reason string `json:"reason"`
	} `json:"incomplete_details"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// buildRequest maps the conversation and options onto a Responses request.
func buildRequest(model string, history []generation.Message, opts generation.CallOptions) request {
	req := request{
		Model: model,
		Input: make([]inputMessage, 0, len(history)),
	}
	for _, msg := range history {
		req.Input = append(req.Input, inputMessage{Role: string(msg.Role), Content: msg.Content})
	}
	if opts.JSON {
		req.Text = &textConfig{Format: textFormat{Type: "json_object"}}
	}
	if opts.WebSearch {
		req.Tools = []tool{{Type: "web_search"}}
		req.ToolChoice = "auto"
		req.Include = []string{"web_search_call.action.sources"}
	}
	return req
}

// Call implements generation.Client.
func (c *Client) Call(
	ctx context.Context,
	model string,
	history []generation.Message,
	opts generation.CallOptions,
) (*generation.Response, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	body, err := json.Marshal(buildRequest(model, history, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var out *generation.Response
	err = c.retry.Do(ctx, log, func(ctx context.Context) error {
		start := time.Now()
		raw, err := c.post(ctx, body)
		if err != nil {
			return err
		}
		out, err = decodeResponse(raw)
		if err == nil {
			log.DebugContext(ctx, "openai call succeeded",
				slog.String("model", model),
				slog.Duration("duration", time.Since(start)))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// post sends one request and returns the raw success body.
func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var netErr net.Error
		if errors.As(err, &netErr) {
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", generation.ErrTransientFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessage(raw)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: openai status %d: %s", generation.ErrTransientFailure, resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, msg)
	}
	return raw, nil
}

func errorMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	return strings.TrimSpace(string(raw))
}

// decodeResponse concatenates the output_text parts of every message item
// and keeps the whole body as metadata.
func decodeResponse(raw []byte) (*generation.Response, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}

	if resp.Status == "incomplete" && resp.IncompleteDetails != nil &&
		resp.IncompleteDetails.Reason == "content_filter" {
		return nil, fmt.Errorf("%w: response incomplete (content_filter)", generation.ErrContentBlocked)
	}
	if resp.Status == "failed" {
		return nil, fmt.Errorf("%w: response status failed", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				text.WriteString(part.Text)
			}
		}
	}

	out := &generation.Response{
		Text:     text.String(),
		Metadata: json.RawMessage(raw),
	}
	if resp.Usage != nil {
		out.Usage = &generation.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		}
	}
	return out, nil
}
