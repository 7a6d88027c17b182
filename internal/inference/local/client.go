// Package local talks to a model served on the learner's machine through an OpenAI compatible API,
// such as llama.cpp's server or Ollama.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	openai "github.com/sashabaranov/go-openai"

	"github.com/at-ishikawa/refresher/internal/inference"
)

const (
	DefaultBaseURL      = "http://localhost:11434/v1"
	DefaultLoadAttempts = 10
	defaultLoadDelay    = 2 * time.Second
	temperature         = 0.7
)

var errModelNotServed = errors.New("model is not served")

type Option func(*Client)

func WithLoadAttempts(attempts uint) Option {
	return func(c *Client) {
		c.loadAttempts = attempts
	}
}

func WithLoadDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.loadDelay = delay
	}
}

type Client struct {
	api          *openai.Client
	model        string
	loadAttempts uint
	loadDelay    time.Duration

	mu       sync.RWMutex
	ready    bool
	progress int
}

func NewClient(baseURL, apiKey, model string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	c := &Client{
		api:          openai.NewClientWithConfig(config),
		model:        model,
		loadAttempts: DefaultLoadAttempts,
		loadDelay:    defaultLoadDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load waits until the server lists the configured model. Progress is reported through Status while it polls.
func (c *Client) Load(ctx context.Context) error {
	c.setProgress(0)
	attempts := max(c.loadAttempts, 1)
	err := retry.Do(
		func() error {
			return c.checkModel(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.loadDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			progress := int((n + 1) * 100 / attempts)
			c.setProgress(min(progress, 99))
			slog.Default().Debug("waiting for local model",
				"model", c.model,
				"attempt", n+1,
				"error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("load model %q > %w", c.model, err)
	}

	c.mu.Lock()
	c.ready = true
	c.progress = 100
	c.mu.Unlock()
	slog.Default().Info("local model is ready", "model", c.model)
	return nil
}

func (c *Client) checkModel(ctx context.Context) error {
	models, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("api.ListModels > %w", err)
	}
	for _, model := range models.Models {
		if model.ID == c.model {
			return nil
		}
	}
	return fmt.Errorf("%s: %w", c.model, errModelNotServed)
}

func (c *Client) setProgress(progress int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = progress
}

// Status implements the inference.Client interface
func (c *Client) Status() inference.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return inference.Status{Ready: c.ready, LoadProgress: c.progress}
}

// Generate implements the inference.Client interface. It fails with inference.ErrUnavailable until Load succeeds.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if !c.Status().Ready {
		return "", inference.ErrUnavailable
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("api.CreateChatCompletion > %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("local model returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("local model returned an empty response")
	}
	return text, nil
}
