package handlers

import (
	"net/http"
	"time"

	"jobdesk/internal/logging"
	"jobdesk/pkg/models"
	"jobdesk/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

var startTime = time.Now()

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	requestID := utils.GenerateRequestID()
	logger := logging.GetGlobalLogger()

	logger.Debug("Health check requested", map[string]interface{}{"request_id": requestID})

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	}

	return c.JSON(http.StatusOK, response)
}

// ReadinessHandler checks the session store and the optional integrations
func ReadinessHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		d.Logger.Debug("Readiness check requested", nil)

		checks := map[string]string{"api": "ok"}
		ready := true

		if err := d.Sessions.IsHealthy(ctx); err != nil {
			checks["sessions"] = "unavailable: " + err.Error()
			ready = false
		} else {
			checks["sessions"] = "ok"
		}

		if d.Auth.Pending() != nil {
			checks["sign_in"] = "pending"
		}

		if d.LLM.Enabled() {
			checks["llm"] = "ok"
		} else {
			checks["llm"] = "disabled"
		}

		switch {
		case d.Archive == nil:
			checks["archive"] = "disabled"
		case d.Archive.IsHealthy(ctx):
			checks["archive"] = "ok"
		default:
			checks["archive"] = "unavailable"
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(startTime),
	})
}
