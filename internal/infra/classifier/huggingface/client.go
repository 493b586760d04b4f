package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/opticode/internal/domain/analysis"
)

const (
	DefaultModel    = "mrm8488/codebert-base-finetuned-detect-insecure-code"
	DefaultEndpoint = "https://api-inference.huggingface.co/models/" + DefaultModel
)

// ErrModelLoading is returned while the inference endpoint is still warming the model up.
var ErrModelLoading = errors.New("classifier model is loading")

// DefaultCheckTTL is how long a successful health probe is reused.
const DefaultCheckTTL = 30 * time.Second

// Client runs text-classification against a Hugging Face inference endpoint.
type Client struct {
	Endpoint string
	Token    string
	HTTP     *http.Client
	CheckTTL time.Duration

	mu     sync.Mutex
	lastOK time.Time
}

func NewClient(endpoint, token string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{Endpoint: endpoint, Token: token, HTTP: http.DefaultClient, CheckTTL: DefaultCheckTTL}
}

type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type apiError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Classify returns the highest scoring label for text.
func (c *Client) Classify(ctx context.Context, text string) (analysis.Label, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return analysis.Label{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return analysis.Label{}, fmt.Errorf("build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return analysis.Label{}, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return analysis.Label{}, fmt.Errorf("read classifier response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var ae apiError
		_ = json.Unmarshal(raw, &ae)
		if resp.StatusCode == http.StatusServiceUnavailable && ae.EstimatedTime > 0 {
			return analysis.Label{}, fmt.Errorf("%w (estimated %.0fs)", ErrModelLoading, ae.EstimatedTime)
		}
		msg := ae.Error
		if msg == "" {
			msg = string(raw)
		}
		return analysis.Label{}, fmt.Errorf("classifier returned %d: %s", resp.StatusCode, msg)
	}

	preds, err := decodePredictions(raw)
	if err != nil {
		return analysis.Label{}, err
	}
	return top(preds), nil
}

// decodePredictions accepts both the flat and the batched pipeline output.
func decodePredictions(raw []byte) ([]prediction, error) {
	var flat []prediction
	if err := json.Unmarshal(raw, &flat); err == nil {
		if len(flat) == 0 {
			return nil, errors.New("classifier returned no labels")
		}
		return flat, nil
	}
	var nested [][]prediction
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("malformed classifier response: %w", err)
	}
	if len(nested) == 0 || len(nested[0]) == 0 {
		return nil, errors.New("classifier returned no labels")
	}
	return nested[0], nil
}

func top(preds []prediction) analysis.Label {
	best := preds[0]
	for _, p := range preds[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return analysis.Label{Name: best.Label, Score: best.Score}
}

// Check probes the endpoint with a tiny input; used by the health handler.
// A success is reused for CheckTTL so health polling does not burn inference quota.
func (c *Client) Check(ctx context.Context) error {
	c.mu.Lock()
	fresh := !c.lastOK.IsZero() && time.Since(c.lastOK) < c.CheckTTL
	c.mu.Unlock()
	if fresh {
		return nil
	}

	if _, err := c.Classify(ctx, "pass"); err != nil {
		return err
	}
	c.mu.Lock()
	c.lastOK = time.Now()
	c.mu.Unlock()
	return nil
}

// WaitReady blocks until the model answers or ctx is done. Only the
// loading state is retried; any other failure is returned immediately.
func (c *Client) WaitReady(ctx context.Context, interval time.Duration) error {
	for {
		err := c.Check(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrModelLoading) {
			return err
		}
		logrus.WithError(err).Info("waiting for classifier model")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
