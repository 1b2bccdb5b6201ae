package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"jobdesk/internal/logging"
)

var (
	ErrNoCredential      = errors.New("no cached credential")
	ErrStale             = errors.New("cached credential is too old")
	ErrSilentFailed      = errors.New("silent token acquisition failed")
	ErrNoPendingLogin    = errors.New("no device login in progress")
	ErrInteractiveNeeded = errors.New("interactive sign-in required")
)

// State classifies the cached credential
type State int

const (
	NoCredential State = iota
	Stale
	FreshSilentFailed
	FreshValid
)

func (s State) String() string {
	switch s {
	case NoCredential:
		return "no_credential"
	case Stale:
		return "stale"
	case FreshSilentFailed:
		return "fresh_silent_failed"
	case FreshValid:
		return "fresh_valid"
	default:
		return "unknown"
	}
}

// Status is the outcome of evaluating the cached credential
type Status struct {
	State       State
	GeneratedAt time.Time
	// ValidUntil is GeneratedAt plus the stale threshold. Display only.
	ValidUntil time.Time
	// TokenExpiry is the exp claim of the access token when it is a JWT,
	// otherwise the expiry reported by the provider.
	TokenExpiry time.Time
	Token       *Token
	Err         error
}

// NeedsInteractive reports whether a device sign-in must be forced
func (s *Status) NeedsInteractive() bool {
	return s.State != FreshValid
}

// Reason maps the state onto its sentinel error, nil when valid
func (s *Status) Reason() error {
	switch s.State {
	case NoCredential:
		return ErrNoCredential
	case Stale:
		return ErrStale
	case FreshSilentFailed:
		if s.Err != nil {
			return fmt.Errorf("%w: %v", ErrSilentFailed, s.Err)
		}
		return ErrSilentFailed
	default:
		return nil
	}
}

// Manager applies the credential freshness policy
type Manager struct {
	store      *Store
	identity   Identity
	staleAfter time.Duration
	now        func() time.Time
	logger     logging.Logger

	mu      sync.Mutex
	pending *DeviceLogin
}

// Option configures a Manager
type Option func(*Manager)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger overrides the logger
func WithLogger(logger logging.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a lifecycle manager
func NewManager(store *Store, identity Identity, staleAfter time.Duration, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		identity:   identity,
		staleAfter: staleAfter,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.GetGlobalLogger()
	}
	return m
}

// StaleAfter returns the configured threshold
func (m *Manager) StaleAfter() time.Duration {
	return m.staleAfter
}

// Evaluate classifies the cached credential and, when it is fresh, tries a
// silent acquisition. A stale record is never redeemed even if the provider
// would still accept it.
func (m *Manager) Evaluate(ctx context.Context) (*Status, error) {
	rec, err := m.store.Read()
	if err != nil {
		if errors.Is(err, ErrNoCredential) {
			m.logger.Debug("no usable credential", map[string]interface{}{
				"path":   m.store.Path(),
				"reason": err.Error(),
			})
			return &Status{State: NoCredential}, nil
		}
		return nil, err
	}

	cache, err := base64.StdEncoding.DecodeString(rec.EncodedCache)
	if err != nil {
		m.logger.Warn("credential cache is not valid base64", map[string]interface{}{
			"path": m.store.Path(),
		})
		return &Status{State: NoCredential}, nil
	}

	generatedAt, ok := rec.GeneratedTime()
	if !ok {
		m.logger.Info("credential timestamp missing or unparseable", map[string]interface{}{
			"generated_at": rec.GeneratedAt,
		})
		return &Status{State: Stale}, nil
	}

	status := &Status{
		GeneratedAt: generatedAt,
		ValidUntil:  generatedAt.Add(m.staleAfter),
	}

	if !m.now().Before(status.ValidUntil) {
		m.logger.Info("credential older than threshold", map[string]interface{}{
			"generated_at": generatedAt.Format(time.RFC3339),
			"stale_days":   int(m.staleAfter / (24 * time.Hour)),
		})
		status.State = Stale
		return status, nil
	}

	token, err := m.identity.AcquireSilent(ctx, cache)
	if err != nil {
		m.logger.Warn("silent acquisition failed", map[string]interface{}{
			"error": err.Error(),
		})
		status.State = FreshSilentFailed
		status.Err = err
		return status, nil
	}

	status.State = FreshValid
	status.Token = token
	status.TokenExpiry = token.Expiry()
	return status, nil
}

// AcquireSilent returns a token when the cached credential is fresh and
// redeemable, otherwise an error wrapping ErrInteractiveNeeded and the
// state's sentinel.
func (m *Manager) AcquireSilent(ctx context.Context) (*Token, error) {
	status, err := m.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	if status.NeedsInteractive() {
		return nil, fmt.Errorf("%w: %w", ErrInteractiveNeeded, status.Reason())
	}
	return status.Token, nil
}

// StartDeviceLogin begins a device-code sign-in, replacing any pending one
func (m *Manager) StartDeviceLogin(ctx context.Context) (*DeviceLogin, error) {
	login, err := m.identity.StartDeviceCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start device login: %w", err)
	}

	m.mu.Lock()
	m.pending = login
	m.mu.Unlock()

	m.logger.Info("device login started", map[string]interface{}{
		"verification_url": login.VerificationURL,
		"expires_on":       login.ExpiresOn.Format(time.RFC3339),
	})
	return login, nil
}

// Pending returns the device login awaiting completion, if any
func (m *Manager) Pending() *DeviceLogin {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// CompleteDeviceLogin waits for the pending sign-in and overwrites the
// credential record with the new cache and the current time.
func (m *Manager) CompleteDeviceLogin(ctx context.Context) (*Status, error) {
	m.mu.Lock()
	login := m.pending
	m.pending = nil
	m.mu.Unlock()

	if login == nil {
		return nil, ErrNoPendingLogin
	}
	return m.finish(ctx, login)
}

// Login runs a whole device-code sign-in, invoking prompt with the user
// instructions before blocking.
func (m *Manager) Login(ctx context.Context, prompt func(*DeviceLogin)) (*Status, error) {
	login, err := m.identity.StartDeviceCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start device login: %w", err)
	}
	if prompt != nil {
		prompt(login)
	}
	return m.finish(ctx, login)
}

func (m *Manager) finish(ctx context.Context, login *DeviceLogin) (*Status, error) {
	token, err := login.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("device login failed: %w", err)
	}

	generatedAt := m.now().UTC()
	rec := Record{
		EncodedCache: base64.StdEncoding.EncodeToString(token.Cache),
		GeneratedAt:  generatedAt.Format(time.RFC3339),
	}
	if err := m.store.Write(rec); err != nil {
		return nil, err
	}

	m.logger.Info("credential refreshed", map[string]interface{}{
		"account": token.Account,
		"path":    m.store.Path(),
	})

	return &Status{
		State:       FreshValid,
		GeneratedAt: generatedAt.Truncate(time.Second),
		ValidUntil:  generatedAt.Truncate(time.Second).Add(m.staleAfter),
		TokenExpiry: token.Expiry(),
		Token:       token,
	}, nil
}
