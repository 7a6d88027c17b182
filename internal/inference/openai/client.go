// Package openai generates text with the hosted OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/refresher/internal/inference"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	temperature    = 0.7

	// TutorPrompt is sent as the system message of every completion.
	TutorPrompt = "You are a patient computer science tutor. Answer concisely and follow the requested format exactly."
)

var errEmptyResponse = errors.New("empty response")

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.StatusCode, e.Body)
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.httpClient.SetBaseURL(baseURL)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
	logger           *slog.Logger
}

func NewClient(apiKey, model string, retryAttempts uint, opts ...Option) *Client {
	client := &Client{
		httpClient: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetHeader("Authorization", "Bearer "+apiKey).
			SetHeader("Content-Type", "application/json"),
		model:            model,
		maxRetryAttempts: retryAttempts,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

func (client *Client) Model() string {
	return client.model
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Status reports a hosted model as always ready.
func (client *Client) Status() inference.Status {
	return inference.Status{Ready: true, LoadProgress: 100}
}

// Generate sends prompt as one user message. Rate limits, server errors and empty completions are retried.
func (client *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var result string
	if err := retry.Do(
		func() error {
			response, err := client.complete(ctx, prompt, maxTokens)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		client.retryOptions(ctx)...,
	); err != nil {
		return "", err
	}
	return result, nil
}

func (client *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var body chatResponse
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       client.model,
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Messages: []chatMessage{
				{Role: "system", Content: TutorPrompt},
				{Role: "user", Content: prompt},
			},
		}).
		SetResult(&body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return "", &StatusError{StatusCode: response.StatusCode(), Body: response.String()}
	}
	if len(body.Choices) == 0 {
		return "", fmt.Errorf("no choices: %w", errEmptyResponse)
	}

	content := strings.TrimSpace(body.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("finish reason %q: %w", body.Choices[0].FinishReason, errEmptyResponse)
	}
	client.logger.DebugContext(ctx, "completion received",
		slog.Int("maxTokens", maxTokens),
		slog.Int("promptTokens", body.Usage.PromptTokens),
		slog.Int("completionTokens", body.Usage.CompletionTokens),
	)
	return content, nil
}
