package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/observability"
)

const defaultModel = "anthropic/claude-3.5-sonnet"

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *observability.Logger
}

// Config holds model service settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// NewClient creates a model service client.
func NewClient(cfg Config, logger *observability.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.WithComponent("llm"),
	}
}

// chat completions wire types.
type message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// CompleteStructured implements StructuredCompleter. The declared schema
// is sent as a structured-output constraint and additionally enforced
// locally on the returned content.
func (c *Client) CompleteStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	start := time.Now()

	messages := make([]message, 0, 2)
	if req.System != "" {
		messages = append(messages, message{Role: "system", Content: []ContentPart{TextPart(req.System)}})
	}
	messages = append(messages, message{Role: "user", Content: req.Parts})

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   req.SchemaName,
				Strict: true,
				Schema: req.Schema,
			},
		},
	})
	if err != nil {
		return nil, domain.UpstreamError("marshal model request", err)
	}

	raw, err := c.post(ctx, body)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("schema", req.SchemaName).
			Dur("elapsed", time.Since(start)).
			Msg("Model call failed")
		return nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, domain.UpstreamError("decode model response", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, domain.UpstreamError("model response has no choices", nil)
	}

	content := []byte(stripCodeFences(parsed.Choices[0].Message.Content))

	if err := ValidateAgainstSchema(req.Schema, content); err != nil {
		c.logger.Error().
			Err(err).
			Str("schema", req.SchemaName).
			Msg("Model response failed schema validation")
		return nil, domain.UpstreamError("model response does not match requested schema", err)
	}

	c.logger.Info().
		Str("schema", req.SchemaName).
		Str("model", c.cfg.Model).
		Dur("elapsed", time.Since(start)).
		Msg("Structured completion ok")

	return json.RawMessage(content), nil
}

// post sends the request, retrying transient failures with backoff.
func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			c.logger.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Err(lastErr).
				Msg("Retrying model call")
			select {
			case <-ctx.Done():
				return nil, domain.UpstreamError("model call cancelled", ctx.Err())
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, domain.UpstreamError("build model request", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		raw, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return raw, nil
		}

		lastErr = fmt.Errorf("model service returned status %d: %s", resp.StatusCode, truncate(string(raw), 512))

		// Only retry rate limits and server-side failures.
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			break
		}
	}

	return nil, domain.UpstreamError("model call failed", lastErr)
}

// stripCodeFences removes a markdown fence the model sometimes wraps
// around JSON despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
