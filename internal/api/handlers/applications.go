package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"jobdesk/internal/api/validation"
	"jobdesk/internal/bullets"
	"jobdesk/internal/documents"
	"jobdesk/internal/placeholders"
	"jobdesk/internal/session"
	"jobdesk/pkg/models"
	"jobdesk/pkg/utils"
)

// placeholderPrefix marks form fields that carry placeholder values
const placeholderPrefix = "ph."

// KindOption is one entry of the document selector
type KindOption struct {
	Value    string
	Label    string
	Selected bool
}

// ApplicationsPage is the view model of the applications page
type ApplicationsPage struct {
	Page
	Job       *models.Application
	Ready     bool
	Kind      string
	KindLabel string
	Kinds     []KindOption
	Target    string
	Form      placeholders.Form
}

func kindOptions(selected documents.Kind) []KindOption {
	kinds := []documents.Kind{documents.KindCV, documents.KindCoverLetter}
	out := make([]KindOption, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, KindOption{Value: string(k), Label: k.Label(), Selected: k == selected})
	}
	return out
}

// ApplicationsHandler prepares the selected job's folder and shows the
// placeholder editor for the chosen document
func ApplicationsHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromContext(c)
		ctx := c.Request().Context()
		kind := documents.ParseKind(c.QueryParam("kind"))

		data := ApplicationsPage{
			Kind:      string(kind),
			KindLabel: kind.Label(),
			Kinds:     kindOptions(kind),
		}

		render := func() error {
			data.Page = page(s, "Applications", "applications")
			return c.Render(http.StatusOK, "applications.html", data)
		}

		if s.SelectedJobID == "" {
			s.Notify(session.KindWarning, "No job selected. Please go to the Tracker page and select a job.")
			return render()
		}

		drive, ok := d.driveFor(ctx, s)
		if !ok {
			return redirect(c, "/")
		}

		app, err := d.selectedJob(ctx, drive, s)
		if err != nil {
			if errors.Is(err, errJobNotFound) {
				s.SelectedJobID = ""
				s.Notify(session.KindWarning, "No job selected. Please go to the Tracker page and select a job.")
				return render()
			}
			if d.fail(s, "Failed to load Excel.", err) {
				return redirect(c, "/")
			}
			return render()
		}
		data.Job = &app

		folders, err := d.Generator.Prepare(ctx, drive, app)
		if err != nil {
			if d.fail(s, "Failed to load templates or files.", err) {
				return redirect(c, "/")
			}
			return render()
		}
		data.Target = folders.Target

		schema, err := d.Generator.LoadSchema(ctx, drive, app, kind)
		if err != nil {
			d.fail(s, "Failed to load templates or files.", err)
			return render()
		}
		if draft := s.TakeDraft(app.ID, string(kind)); draft != nil {
			schema.Apply(draft, d.now())
		}

		bank, err := d.Generator.LoadBank(ctx, drive, app, kind)
		if err != nil {
			d.fail(s, "Failed to load the bullet bank.", err)
			return render()
		}

		if s.Notification == nil {
			s.Notify(session.KindSuccess, fmt.Sprintf("Viewing application for %s at %s. Files are in %s.",
				app.JobType, app.Company, folders.Target))
		}

		data.Form = placeholders.BuildForm(schema, bank, d.Config.Documents.Categories,
			categoriesFrom(c.QueryParams()), d.now())
		data.Ready = true
		return render()
	}
}

// KeepDraftHandler remembers the submitted placeholder values and reloads
// the page, so changing a bullet category does not discard unsaved edits
func KeepDraftHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromContext(c)
		kind := documents.ParseKind(c.FormValue("kind"))

		form, _ := c.FormParams()
		back := applicationsURL(kind, categoriesFrom(form))

		values, err := placeholderValues(c)
		if err != nil {
			s.Notify(session.KindError, "Failed to read the submitted placeholders.")
			return redirect(c, back)
		}
		if s.SelectedJobID != "" {
			s.KeepDraft(s.SelectedJobID, string(kind), values)
		}
		return redirect(c, back)
	}
}

// placeholderValues collects ph.<key> fields from the submitted form
func placeholderValues(c echo.Context) (map[string]string, error) {
	form, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	values := make(map[string]string)
	for name, vs := range form {
		if key, ok := strings.CutPrefix(name, placeholderPrefix); ok && len(vs) > 0 {
			values[key] = vs[0]
		}
	}
	return values, nil
}

// GenerateHandler renders the final document and its PDF
func GenerateHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromContext(c)
		ctx := c.Request().Context()
		kind := documents.ParseKind(c.FormValue("kind"))

		form, _ := c.FormParams()
		back := applicationsURL(kind, categoriesFrom(form))

		if s.SelectedJobID == "" {
			s.Notify(session.KindWarning, "No job selected. Please go to the Tracker page and select a job.")
			return redirect(c, back)
		}

		values, err := placeholderValues(c)
		if err != nil {
			s.Notify(session.KindError, "Failed to read the submitted placeholders.")
			return redirect(c, back)
		}

		drive, ok := d.driveFor(ctx, s)
		if !ok {
			return redirect(c, "/")
		}

		app, err := d.selectedJob(ctx, drive, s)
		if err != nil {
			if d.fail(s, "Failed to load Excel.", err) {
				return redirect(c, "/")
			}
			return redirect(c, back)
		}

		started := time.Now()
		result, err := d.Generator.Generate(ctx, drive, app, kind, values)
		if err != nil {
			s.KeepDraft(app.ID, string(kind), values)
			if d.fail(s, generateFailure(kind, err), err) {
				return redirect(c, "/")
			}
			return redirect(c, back)
		}

		d.Logger.Info("Document generated", map[string]interface{}{
			"job_id":   app.ID,
			"kind":     string(kind),
			"pdf":      result.PDFPath,
			"duration": utils.FormatDuration(time.Since(started)),
		})

		message := fmt.Sprintf("Final %s (.docx) and PDF created successfully!\n%s\n%s",
			kind.Label(), result.DocxPath, result.PDFPath)
		if result.ArchiveURL != "" {
			message += "\nArchived at " + result.ArchiveURL
		}
		s.Notify(session.KindSuccess, message)
		return redirect(c, back)
	}
}

func generateFailure(kind documents.Kind, err error) string {
	switch {
	case errors.Is(err, documents.ErrLoad):
		return "Failed to load templates or files."
	case errors.Is(err, documents.ErrRender):
		return fmt.Sprintf("Error filling the %s template.", kind.Label())
	case errors.Is(err, documents.ErrConvert):
		return fmt.Sprintf("The %s was saved but PDF conversion failed.", kind.Label())
	case errors.Is(err, documents.ErrUpload):
		return fmt.Sprintf("Error uploading the %s.", kind.Label())
	default:
		return fmt.Sprintf("Error creating %s and PDF.", kind.Label())
	}
}

// SaveBulletHandler adds the bullet of one textarea to the bank of its category
func SaveBulletHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromContext(c)
		ctx := c.Request().Context()

		form, _ := c.FormParams()
		key := c.FormValue("key")
		req := validation.SaveBulletForm{
			Kind:     c.FormValue("kind"),
			Key:      key,
			Category: c.FormValue("category." + key),
			Bullet:   strings.TrimSpace(c.FormValue(placeholderPrefix + key)),
		}
		kind := documents.ParseKind(req.Kind)
		back := applicationsURL(kind, categoriesFrom(form))

		if values, err := placeholderValues(c); err == nil && s.SelectedJobID != "" {
			s.KeepDraft(s.SelectedJobID, string(kind), values)
		}

		if err := validate.Struct(&req); err != nil {
			s.Notify(session.KindWarning, validation.Describe(err))
			return redirect(c, back)
		}
		if s.SelectedJobID == "" {
			s.Notify(session.KindWarning, "No job selected. Please go to the Tracker page and select a job.")
			return redirect(c, back)
		}

		drive, ok := d.driveFor(ctx, s)
		if !ok {
			return redirect(c, "/")
		}

		app, err := d.selectedJob(ctx, drive, s)
		if err != nil {
			if d.fail(s, "Failed to load Excel.", err) {
				return redirect(c, "/")
			}
			return redirect(c, back)
		}

		bankPath, err := d.Generator.BankPath(app, kind)
		if err != nil {
			d.fail(s, "Failed to locate the bullet bank.", err)
			return redirect(c, back)
		}

		added, err := bullets.Save(ctx, drive, bankPath, req.Category, req.Bullet, d.Config.Documents.Categories)
		switch {
		case errors.Is(err, bullets.ErrInvalidCategory), errors.Is(err, bullets.ErrEmptyBullet):
			s.Notify(session.KindWarning, err.Error())
		case err != nil:
			if d.fail(s, "Failed to save the bullet.", err) {
				return redirect(c, "/")
			}
		case added:
			s.Notify(session.KindSuccess, fmt.Sprintf("Bullet saved to the %s bank.", req.Category))
		default:
			s.Notify(session.KindInfo, fmt.Sprintf("That bullet is already in the %s bank.", req.Category))
		}
		return redirect(c, back)
	}
}
