package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

var ErrUnavailable = errors.New("bullet suggestions are not available")

// Manager owns the configured provider
type Manager struct {
	config   *config.Config
	factory  *Factory
	provider Provider
	logger   logging.Logger
	mu       sync.RWMutex
	enabled  bool
}

// NewManager creates a new manager instance
func NewManager(cfg *config.Config, logger logging.Logger) *Manager {
	return &Manager{
		config:  cfg,
		factory: NewFactory(cfg, logger),
		logger:  logger,
	}
}

// Start creates the provider. A missing API key leaves suggestions
// disabled without failing startup.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	provider, err := m.factory.CreateProvider()
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}
	m.provider = provider

	if m.config.LLM.APIKey == "" {
		m.enabled = false
		m.logger.Warn("LLM API key not set, bullet suggestions disabled", nil)
		return nil
	}

	m.enabled = true
	m.logger.Info("LLM manager started", map[string]interface{}{
		"provider": provider.GetProviderName(),
		"model":    m.config.LLM.Model,
	})
	return nil
}

// setProvider replaces the provider, used by tests
func (m *Manager) setProvider(p Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provider = p
	m.enabled = p != nil
}

// Enabled reports whether suggestions can be requested
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled && m.provider != nil
}

// SuggestBullets asks the provider for bullets
func (m *Manager) SuggestBullets(ctx context.Context, req SuggestRequest) ([]string, error) {
	m.mu.RLock()
	provider, enabled := m.provider, m.enabled
	m.mu.RUnlock()

	if provider == nil || !enabled {
		return nil, ErrUnavailable
	}
	if req.Count <= 0 {
		req.Count = 3
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.LLM.Timeout)
	defer cancel()

	return provider.SuggestBullets(ctx, req)
}

// CheckHealth performs a live check against the provider
func (m *Manager) CheckHealth(ctx context.Context) error {
	m.mu.RLock()
	provider := m.provider
	m.mu.RUnlock()

	if provider == nil {
		return ErrUnavailable
	}
	return provider.IsHealthy(ctx)
}

// GetProviderName returns the name of the current provider
func (m *Manager) GetProviderName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.provider != nil {
		return m.provider.GetProviderName()
	}
	return "none"
}
