package openai

import (
    "context"
    "errors"
    "fmt"
    "net/http"

    "github.com/sashabaranov/go-openai"

    "github.com/bryanwahyu/opticode/internal/domain/ai"
)

const (
    // GroqBaseURL is Groq's OpenAI-compatible endpoint.
    GroqBaseURL  = "https://api.groq.com/openai/v1"
    DefaultModel = "llama-3.3-70b-versatile"
)

// Client talks to any OpenAI-compatible chat completion API; configured for Groq.
type Client struct {
    *openai.Client
    Model string
}

func NewClient(apiKey, baseURL, model string) *Client {
    cfg := openai.DefaultConfig(apiKey)
    if baseURL == "" {
        baseURL = GroqBaseURL
    }
    cfg.BaseURL = baseURL
    if model == "" {
        model = DefaultModel
    }
    return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func (c *Client) Name() string { return "groq" }

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
    req := openai.ChatCompletionRequest{
        Model: c.Model,
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleUser, Content: prompt},
        },
    }

    resp, err := c.CreateChatCompletion(ctx, req)
    if err != nil {
        var apiErr *openai.APIError
        if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
            return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
        }
        return "", fmt.Errorf("failed to create chat completion: %w", err)
    }
    if len(resp.Choices) == 0 {
        return "", ai.ErrEmptyResponse
    }

    return resp.Choices[0].Message.Content, nil
}
