package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

func TestState_TokenAndNotification(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s := New()
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.HasToken(now))

	s.SetToken("tok", now.Add(time.Hour))
	assert.True(t, s.HasToken(now))
	assert.False(t, s.HasToken(now.Add(2*time.Hour)))

	s.ClearToken()
	assert.False(t, s.HasToken(now))

	s.Notify(KindError, "boom")
	n := s.TakeNotification()
	require.NotNil(t, n)
	assert.Equal(t, KindError, n.Kind)
	assert.Nil(t, s.TakeNotification())
}

func TestState_Draft(t *testing.T) {
	s := New()
	assert.Nil(t, s.TakeDraft("a1b2c3d4", "cv"))

	s.KeepDraft("a1b2c3d4", "cv", map[string]string{"Bullet1": "unsaved"})
	assert.Nil(t, s.TakeDraft("a1b2c3d4", "cover_letter"))
	assert.Nil(t, s.Draft, "a mismatched take still clears the draft")

	s.KeepDraft("a1b2c3d4", "cv", map[string]string{"Bullet1": "unsaved"})
	assert.Equal(t, map[string]string{"Bullet1": "unsaved"}, s.TakeDraft("a1b2c3d4", "cv"))
	assert.Nil(t, s.TakeDraft("a1b2c3d4", "cv"))

	s.KeepDraft("a1b2c3d4", "cv", nil)
	assert.Nil(t, s.Draft)
}

func TestMemoryStore_DraftIsCopied(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	state := New()
	values := map[string]string{"Bullet1": "first"}
	state.KeepDraft("a1b2c3d4", "cv", values)
	require.NoError(t, store.Save(ctx, state))
	values["Bullet1"] = "changed"

	got, err := store.Get(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.TakeDraft("a1b2c3d4", "cv")["Bullet1"])
}

func TestMemoryStore_SaveGetExpire(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	state := New()
	state.SelectedJobID = "a1b2c3d4"
	state.Notify(KindInfo, "hi")
	require.NoError(t, store.Save(ctx, state))

	// mutations after save do not leak into the store
	state.Notification.Message = "changed"

	got, err := store.Get(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4", got.SelectedJobID)
	assert.Equal(t, "hi", got.Notification.Message)

	now = now.Add(2 * time.Hour)
	_, err = store.Get(ctx, state.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Redis.URL = "redis://" + mr.Addr()
	cfg.Session.TTL = time.Hour

	store := NewRedisStore(cfg, logging.NewMultiLogger())
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_RoundTripAndTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	require.NoError(t, store.IsHealthy(ctx))

	state := New()
	state.SetToken("bearer", time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, state))

	got, err := store.Get(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, "bearer", got.Token)
	assert.True(t, got.TokenExpiresAt.Equal(state.TokenExpiresAt))

	assert.Equal(t, time.Hour, mr.TTL(sessionKey(state.ID)))

	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, state.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	state := New()
	require.NoError(t, store.Save(ctx, state))
	require.NoError(t, store.Delete(ctx, state.ID))

	_, err := store.Get(ctx, state.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewStore_SelectsBackend(t *testing.T) {
	cfg := config.Default()
	store, err := NewStore(cfg, logging.NewMultiLogger())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	cfg.Session.Backend = "etcd"
	_, err = NewStore(cfg, logging.NewMultiLogger())
	assert.Error(t, err)
}

func TestMiddleware_PersistsAcrossRequests(t *testing.T) {
	e := echo.New()
	store := NewMemoryStore(time.Hour)
	mw := Middleware(store, "sid", logging.NewMultiLogger())

	handler := mw(func(c echo.Context) error {
		s := FromContext(c)
		if s.SelectedJobID == "" {
			s.SelectedJobID = "deadbeef"
			return c.String(http.StatusOK, "set")
		}
		return c.String(http.StatusOK, s.SelectedJobID)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, "set", rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, "deadbeef", rec.Body.String())
}

func TestMiddleware_UnknownCookieStartsFreshSession(t *testing.T) {
	e := echo.New()
	store := NewMemoryStore(time.Hour)
	mw := Middleware(store, "sid", logging.NewMultiLogger())

	var seen string
	handler := mw(func(c echo.Context) error {
		seen = FromContext(c).ID
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	assert.NotEqual(t, "forged", seen)
	_, err := store.Get(context.Background(), seen)
	assert.NoError(t, err)
}
