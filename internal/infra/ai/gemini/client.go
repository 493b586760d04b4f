package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"google.golang.org/genai"

	"github.com/bryanwahyu/opticode/internal/domain/ai"
)

const DefaultModel = "gemini-2.0-flash"

// Client wraps the genai SDK. The SDK client is created on the first
// Generate so a missing key only fails the requests that need it.
type Client struct {
	Model string

	cfg    genai.ClientConfig
	once   sync.Once
	client *genai.Client
	err    error
}

// NewClient prepares a Gemini API client. baseURL is optional and only
// overrides the public endpoint (proxies, tests).
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{Model: model, cfg: cfg}
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) sdk(ctx context.Context) (*genai.Client, error) {
	c.once.Do(func() {
		cfg := c.cfg
		c.client, c.err = genai.NewClient(ctx, &cfg)
		if c.err != nil {
			c.err = fmt.Errorf("failed to create gemini client: %w", c.err)
		}
	})
	return c.client, c.err
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := c.sdk(ctx)
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(ctx, c.Model, genai.Text(prompt), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ai.ErrEmptyResponse
	}
	return resp.Text(), nil
}
