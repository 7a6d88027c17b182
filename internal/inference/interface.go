package inference

import (
	"context"
	"errors"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// ErrUnavailable is returned when no model is configured or the model is not loaded yet.
var ErrUnavailable = errors.New("text generation is unavailable")

// Status reports whether the model can serve requests.
type Status struct {
	Ready bool `json:"ready"`
	// LoadProgress is between 0 and 100.
	LoadProgress int `json:"loadProgress"`
}

// Client interface defines the text generation capability used by the assistant
type Client interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	Status() Status
}

// Unavailable is the client used when no provider is configured. Every call fails with ErrUnavailable.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string, int) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) Status() Status {
	return Status{}
}

const (
	DefaultMaxRetryAttempts = 3
)
