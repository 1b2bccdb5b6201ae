package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"jobdesk/internal/api/middleware"
	"jobdesk/internal/api/validation"
	"jobdesk/internal/auth"
	"jobdesk/internal/config"
	"jobdesk/internal/documents"
	"jobdesk/internal/graph"
	"jobdesk/internal/llm"
	"jobdesk/internal/logging"
	"jobdesk/internal/posting"
	"jobdesk/internal/session"
	"jobdesk/internal/tracker"
	"jobdesk/pkg/models"
	"jobdesk/pkg/utils"
)

var validate = validation.New()

// HealthChecker is implemented by optional backends reported on /health/ready
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

// Deps carries everything the dashboard handlers use
type Deps struct {
	Config    *config.Config
	Auth      *auth.Manager
	Graph     *graph.Client
	Generator *documents.Generator
	LLM       *llm.Manager
	Posting   *posting.Fetcher
	Sessions  session.Store
	// Archive is nil when archiving is disabled
	Archive HealthChecker
	Logger  logging.Logger
	Now     func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Page holds the fields the layout template needs
type Page struct {
	Title        string
	Active       string
	Notification *session.Notification
}

// page consumes the pending notification; call it after the last Notify
func page(s *session.State, title, active string) Page {
	return Page{Title: title, Active: active, Notification: s.TakeNotification()}
}

// driveFor returns a Graph client authorised with the session token. When the
// session holds no usable token the cached credential is evaluated; ok is
// false when the user has to sign in first.
func (d *Deps) driveFor(ctx context.Context, s *session.State) (client *graph.Client, ok bool) {
	if !s.HasToken(d.now()) {
		token, err := d.Auth.AcquireSilent(ctx)
		if err != nil {
			d.Logger.Debug("no silent token for drive access", map[string]interface{}{"reason": err.Error()})
			s.ClearToken()
			s.Notify(session.KindWarning, "Please log in to access your OneDrive data.")
			return nil, false
		}
		s.SetToken(token.AccessToken, token.Expiry())
	}
	return d.Graph.WithToken(s.Token), true
}

// fail records a remote failure on the session. It returns true when the
// failure was an authorisation error and the user must sign in again.
func (d *Deps) fail(s *session.State, message string, err error) (signIn bool) {
	d.Logger.Error(message, map[string]interface{}{"error": err.Error()})

	if graph.IsUnauthorized(err) {
		s.ClearToken()
		s.Notify(session.KindWarning, "Your sign-in is no longer accepted by OneDrive. Please sign in again.")
		return true
	}
	s.Notify(session.KindError, message+"\n"+err.Error())
	return false
}

// loadTracker reads the tracker workbook. A missing workbook is an empty tracker.
func (d *Deps) loadTracker(ctx context.Context, drive *graph.Client) ([]models.Application, error) {
	data, err := drive.ReadWorkbook(ctx, d.Config.Drive.TrackerPath)
	if err != nil {
		if graph.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return tracker.Decode(data)
}

var errJobNotFound = errors.New("selected job is no longer in the tracker")

// selectedJob resolves the session's selected job against the tracker
func (d *Deps) selectedJob(ctx context.Context, drive *graph.Client, s *session.State) (models.Application, error) {
	apps, err := d.loadTracker(ctx, drive)
	if err != nil {
		return models.Application{}, err
	}
	app, ok := tracker.Find(apps, s.SelectedJobID)
	if !ok {
		return models.Application{}, errJobNotFound
	}
	return app, nil
}

func redirect(c echo.Context, location string) error {
	return c.Redirect(http.StatusSeeOther, location)
}

// applicationsURL keeps the chosen document kind and bullet categories
func applicationsURL(kind documents.Kind, categories map[string]string) string {
	q := url.Values{}
	q.Set("kind", string(kind))
	for key, category := range categories {
		q.Set("category."+key, category)
	}
	return "/applications?" + q.Encode()
}

// categoriesFrom collects category.<key> values from a query or form
func categoriesFrom(values url.Values) map[string]string {
	out := make(map[string]string)
	for name, vs := range values {
		if key, ok := strings.CutPrefix(name, "category."); ok && len(vs) > 0 && vs[0] != "" {
			out[key] = vs[0]
		}
	}
	return out
}

func errorJSON(c echo.Context, code string, cerr *utils.CustomError) error {
	return c.JSON(cerr.Code, models.ErrorResponse{
		Error:     code,
		Message:   cerr.Message,
		Detail:    cerr.Detail,
		RequestID: middleware.RequestID(c),
		Timestamp: time.Now(),
	})
}

func trackerFolder(cfg *config.Config) string {
	return path.Dir(cfg.Drive.TrackerPath)
}
