package llm

import (
	"context"

	"jobdesk/internal/llm/providers"
)

// Provider generates resume bullet suggestions
type Provider interface {
	// SuggestBullets proposes bullets for one category of a job application
	SuggestBullets(ctx context.Context, req SuggestRequest) ([]string, error)

	// IsHealthy checks if the provider is reachable and configured
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the provider
	GetProviderName() string
}

// SuggestRequest describes what bullets are wanted
type SuggestRequest = providers.BulletRequest
