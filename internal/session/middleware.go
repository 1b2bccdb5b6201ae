package session

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"jobdesk/internal/logging"
)

const contextKey = "session"

// Middleware loads the session named by the cookie, creating one when
// absent, and saves it after the handler returns.
func Middleware(store Store, cookieName string, logger logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			var state *State
			if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
				state, err = store.Get(ctx, cookie.Value)
				if err != nil && !errors.Is(err, ErrNotFound) {
					logger.Warn("Failed to load session", map[string]interface{}{
						"error": err.Error(),
					})
				}
			}
			if state == nil {
				state = New()
			}

			c.SetCookie(&http.Cookie{
				Name:     cookieName,
				Value:    state.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(contextKey, state)

			handlerErr := next(c)

			if err := store.Save(ctx, state); err != nil {
				logger.Error("Failed to save session", map[string]interface{}{
					"session_id": state.ID,
					"error":      err.Error(),
				})
			}
			return handlerErr
		}
	}
}

// FromContext returns the session attached by Middleware
func FromContext(c echo.Context) *State {
	if state, ok := c.Get(contextKey).(*State); ok {
		return state
	}
	return New()
}
