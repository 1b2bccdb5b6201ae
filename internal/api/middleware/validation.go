package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobdesk/pkg/models"
	"jobdesk/pkg/utils"
)

// maxBodyBytes bounds POST bodies; bullet edits and forms are small
const maxBodyBytes = 1024 * 1024

// RequestValidation middleware tags every request with an ID and rejects
// oversized bodies
func RequestValidation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := utils.GenerateRequestID()
			c.Set("request_id", requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			if c.Request().Method == http.MethodPost && c.Request().ContentLength > maxBodyBytes {
				return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
					Error:     "request_too_large",
					Message:   "Request body too large",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}

			return next(c)
		}
	}
}

// RequestID returns the ID assigned by RequestValidation
func RequestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
