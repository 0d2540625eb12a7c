// Package providers defines the contract for multimodal inference backends.
package providers

import (
	"context"
	"fmt"
)

// Config represents one inference request: a single image plus the prompt.
// APIKey is request-scoped rather than ambient so each run carries its own
// credential.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	Prompt      string
	Image       []byte
	ImageMIME   string
}

// Provider defines the interface for a multimodal LLM provider.
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}

// ServiceError is the single failure channel for the remote call. The caller
// does not distinguish authentication, quota, transport, or malformed-request
// failures; whatever the provider reported is surfaced as text.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
