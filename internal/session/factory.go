package session

import (
	"fmt"

	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

// NewStore creates the store selected by session.backend
func NewStore(cfg *config.Config, logger logging.Logger) (Store, error) {
	switch cfg.Session.Backend {
	case "memory", "":
		return NewMemoryStore(cfg.Session.TTL), nil
	case "redis":
		return NewRedisStore(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.Session.Backend)
	}
}
