package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"jobdesk/internal/auth"
	"jobdesk/internal/session"
	"jobdesk/pkg/utils"
)

// HomePage is the view model of the home page
type HomePage struct {
	Page
	Valid          bool
	Status         *auth.Status
	Prompt         string
	Pending        *auth.DeviceLogin
	TokenRemaining string
}

// HomeHandler shows the credential state and the sign-in controls
func HomeHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromContext(c)
		ctx := c.Request().Context()

		status, err := d.Auth.Evaluate(ctx)
		if err != nil {
			d.Logger.Error("Failed to evaluate credential", map[string]interface{}{"error": err.Error()})
			s.Notify(session.KindError, "Failed to read the credential cache.\n"+err.Error())
			status = &auth.Status{State: auth.NoCredential}
		}

		data := HomePage{Status: status}
		if status.State == auth.FreshValid {
			s.SetToken(status.Token.AccessToken, status.TokenExpiry)
			data.Valid = true
			if !status.TokenExpiry.IsZero() {
				data.TokenRemaining = utils.FormatRemaining(d.now(), status.TokenExpiry)
			}
		} else {
			s.ClearToken()
			data.Prompt = signInPrompt(status, int(d.Auth.StaleAfter().Hours()/24))
			data.Pending = d.Auth.Pending()
		}

		data.Page = page(s, "Home", "home")
		return c.Render(http.StatusOK, "home.html", data)
	}
}

func signInPrompt(status *auth.Status, staleDays int) string {
	switch status.State {
	case auth.NoCredential:
		return "No cached credentials found. Please sign in to continue."
	case auth.Stale:
		if status.GeneratedAt.IsZero() {
			return "Credential timestamp missing/invalid. Please sign in to continue."
		}
		return fmt.Sprintf("Cached credential is older than %d days (generated at: %s). Please sign in again.",
			staleDays, status.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))
	default:
		return "Couldn't acquire token silently. Please sign in."
	}
}

// StartDeviceLoginHandler begins a device-code sign-in and returns to the
// home page, which shows the code
func StartDeviceLoginHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromContext(c)

		login, err := d.Auth.StartDeviceLogin(c.Request().Context())
		if err != nil {
			d.Logger.Error("Failed to start device login", map[string]interface{}{"error": err.Error()})
			s.Notify(session.KindError, "Sign-in failed. Please try again.\n"+err.Error())
			return redirect(c, "/")
		}

		message := login.Message
		if message == "" {
			message = fmt.Sprintf("Open %s and enter the code %s.", login.VerificationURL, login.UserCode)
		}
		s.ClearToken()
		s.Notify(session.KindInfo, message)
		return redirect(c, "/")
	}
}

// CompleteDeviceLoginHandler blocks until the pending sign-in finishes
func CompleteDeviceLoginHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromContext(c)

		status, err := d.Auth.CompleteDeviceLogin(c.Request().Context())
		switch {
		case errors.Is(err, auth.ErrNoPendingLogin):
			s.Notify(session.KindWarning, "No sign-in is in progress. Start a new one.")
		case err != nil:
			d.Logger.Error("Device login failed", map[string]interface{}{"error": err.Error()})
			s.Notify(session.KindError, "Sign-in failed. Please try again.\n"+err.Error())
		default:
			s.SetToken(status.Token.AccessToken, status.TokenExpiry)
			s.Notify(session.KindSuccess, "Signed in successfully.")
		}
		return redirect(c, "/")
	}
}

// RefreshHandler forces a new device-code sign-in regardless of cache state
func RefreshHandler(d *Deps) echo.HandlerFunc {
	return StartDeviceLoginHandler(d)
}

// AuthStatusHandler reports the credential state as JSON
func AuthStatusHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, err := d.Auth.Evaluate(c.Request().Context())
		if err != nil {
			return errorJSON(c, "credential_unreadable", utils.NewInternalServerError("Credential cache unreadable: "+err.Error()))
		}
		return c.JSON(http.StatusOK, authStatusResponse(status))
	}
}
