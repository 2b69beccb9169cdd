package provider

import "context"

// Provider is the base interface every tool backend implements.
type Provider interface {
	// Name returns the provider's name, used as the operation label in logs,
	// metrics and spans.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}
