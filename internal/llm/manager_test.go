package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

type stubProvider struct {
	got     SuggestRequest
	bullets []string
	err     error
}

func (s *stubProvider) SuggestBullets(_ context.Context, req SuggestRequest) ([]string, error) {
	s.got = req
	return s.bullets, s.err
}

func (s *stubProvider) IsHealthy(context.Context) error { return s.err }
func (s *stubProvider) GetProviderName() string         { return "stub" }

func TestManager_StartWithoutKeyDisablesSuggestions(t *testing.T) {
	m := NewManager(config.Default(), logging.NewMultiLogger())
	require.NoError(t, m.Start())

	assert.False(t, m.Enabled())
	assert.Equal(t, "claude", m.GetProviderName())

	_, err := m.SuggestBullets(context.Background(), SuggestRequest{Category: "Cloud"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestManager_StartRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "parrot"

	m := NewManager(cfg, logging.NewMultiLogger())
	assert.Error(t, m.Start())
}

func TestManager_SuggestDefaultsCount(t *testing.T) {
	stub := &stubProvider{bullets: []string{"a"}}
	m := NewManager(config.Default(), logging.NewMultiLogger())
	m.setProvider(stub)

	bullets, err := m.SuggestBullets(context.Background(), SuggestRequest{Category: "Cloud"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, bullets)
	assert.Equal(t, 3, stub.got.Count)
}

func TestManager_CheckHealthPropagates(t *testing.T) {
	stub := &stubProvider{err: errors.New("down")}
	m := NewManager(config.Default(), logging.NewMultiLogger())
	m.setProvider(stub)

	assert.EqualError(t, m.CheckHealth(context.Background()), "down")
}
