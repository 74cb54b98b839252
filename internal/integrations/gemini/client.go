package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-1.5-flash"

// generator is the subset of *genai.GenerativeModel used by Client.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client asks a Gemini model for link suggestions.
type Client struct {
	model     generator
	modelName string
	closer    func() error
}

// NewClient connects to the Gemini API with the given API key.
func NewClient(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key must not be empty")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = DefaultModel
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{
		model:     client.GenerativeModel(modelName),
		modelName: modelName,
		closer:    client.Close,
	}, nil
}

func newWithGenerator(g generator, modelName string) *Client {
	return &Client{model: g, modelName: modelName, closer: func() error { return nil }}
}

func (c *Client) ModelName() string { return c.modelName }

// SuggestLinks sends prompt as a single text part and returns the text of the
// first candidate.
func (c *Client) SuggestLinks(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("gemini: prompt must not be empty")
	}

	res, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("gemini: response blocked: %w", err)
		}
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	text := responseText(res)
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func responseText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 {
		return ""
	}
	cand := res.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}
