package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobdesk/internal/api/handlers"
	"jobdesk/internal/api/middleware"
	"jobdesk/internal/session"
)

// SetupRoutes configures the dashboard pages, the JSON API and health checks
func SetupRoutes(e *echo.Echo, d *handlers.Deps) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestValidation())
	// device sign-in completion waits on the user and is exempt
	e.Use(middleware.SelectiveTimeoutConfig(d.Config.Server.ReadTimeout, "/auth/device/complete"))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(d))
		health.GET("/live", handlers.LivenessHandler)
	}

	sessions := session.Middleware(d.Sessions, d.Config.Session.CookieName, d.Logger)

	// Dashboard pages
	pages := e.Group("", sessions)
	{
		pages.GET("/", handlers.HomeHandler(d))

		auth := pages.Group("/auth")
		{
			auth.POST("/device", handlers.StartDeviceLoginHandler(d))
			auth.POST("/device/complete", handlers.CompleteDeviceLoginHandler(d))
			auth.POST("/refresh", handlers.RefreshHandler(d))
		}

		tracker := pages.Group("/tracker")
		{
			tracker.GET("", handlers.TrackerHandler(d))
			tracker.POST("", handlers.SaveTrackerHandler(d))
			tracker.POST("/entries", handlers.AddEntryHandler(d))
			tracker.POST("/select/:id", handlers.SelectJobHandler(d))
		}

		applications := pages.Group("/applications")
		{
			applications.GET("", handlers.ApplicationsHandler(d))
			applications.POST("/draft", handlers.KeepDraftHandler(d))
			applications.POST("/generate", handlers.GenerateHandler(d))
			applications.POST("/bullets", handlers.SaveBulletHandler(d))
			applications.POST("/bullets/suggest", handlers.SuggestBulletsHandler(d))
		}
	}

	// API v1 routes
	v1 := e.Group("/api/v1", middleware.CORSConfig(nil))
	{
		v1.GET("/auth/status", handlers.AuthStatusHandler(d))
		v1.GET("/posting/preview", handlers.PostingPreviewHandler(d))
	}

	e.GET("/favicon.ico", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
}

// NewServer creates an echo instance with the dashboard renderer and
// timeouts taken from the server configuration
func NewServer(d *handlers.Deps, renderer echo.Renderer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Server.ReadTimeout = d.Config.Server.ReadTimeout
	e.Server.WriteTimeout = 0 // device sign-in completion can exceed any fixed limit
	e.Server.IdleTimeout = d.Config.Server.IdleTimeout
	if e.Server.IdleTimeout == 0 {
		e.Server.IdleTimeout = 2 * time.Minute
	}

	SetupRoutes(e, d)
	return e
}
