package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	Err        error
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d: %v", e.StatusCode, e.Err)
}

func (e *HTTPStatusError) Unwrap() error {
	return e.Err
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused OpenAI-compatible client for link suggestions.
type Client struct {
	api   *goopenai.Client
	model string
}

type options struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*options)

func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// NewClient creates a Client for the given API key and chat model.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai: api key must not be empty")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}

	o := options{httpClient: &http.Client{Timeout: 60 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(o.baseURL, "/")
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}
	return &Client{api: goopenai.NewClientWithConfig(cfg), model: model}, nil
}

func (c *Client) ModelName() string { return c.model }

// SuggestLinks sends prompt as a single user message and returns the first
// choice's content.
func (c *Client) SuggestLinks(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("openai: prompt must not be empty")
	}

	res, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", statusError(err))
	}
	if len(res.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	content := strings.TrimSpace(res.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai: empty response")
	}
	return content, nil
}

// statusError lifts the HTTP status out of go-openai's error types.
func statusError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &HTTPStatusError{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &HTTPStatusError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return err
}
