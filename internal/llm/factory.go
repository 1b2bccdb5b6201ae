package llm

import (
	"fmt"

	"jobdesk/internal/config"
	"jobdesk/internal/llm/providers"
	"jobdesk/internal/logging"
)

// Factory creates provider instances
type Factory struct {
	config *config.Config
	logger logging.Logger
}

// NewFactory creates a new factory instance
func NewFactory(cfg *config.Config, logger logging.Logger) *Factory {
	return &Factory{config: cfg, logger: logger}
}

// CreateProvider creates the provider named in the configuration
func (f *Factory) CreateProvider() (Provider, error) {
	switch f.config.LLM.Provider {
	case "claude", "":
		return providers.NewClaudeProvider(f.config, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", f.config.LLM.Provider)
	}
}

// GetSupportedProviders returns a list of supported providers
func (f *Factory) GetSupportedProviders() []string {
	return []string{"claude"}
}
