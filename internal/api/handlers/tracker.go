package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobdesk/internal/api/validation"
	"jobdesk/internal/graph"
	"jobdesk/internal/session"
	"jobdesk/internal/tracker"
	"jobdesk/pkg/models"
	"jobdesk/pkg/utils"
)

// TrackerPage is the view model of the tracker page
type TrackerPage struct {
	Page
	Applications []models.Application
	JobTypes     []string
	Statuses     []models.ApplicationStatus
}

// TrackerHandler lists the tracker rows with the editable columns
func TrackerHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromContext(c)
		ctx := c.Request().Context()

		drive, ok := d.driveFor(ctx, s)
		if !ok {
			return redirect(c, "/")
		}

		apps, err := d.loadTracker(ctx, drive)
		if err != nil && d.fail(s, "Failed to load Excel.", err) {
			return redirect(c, "/")
		}

		data := TrackerPage{
			Applications: apps,
			JobTypes:     d.Config.Documents.JobTypes,
			Statuses:     models.Statuses,
		}
		data.Page = page(s, "Tracker", "tracker")
		return c.Render(http.StatusOK, "tracker.html", data)
	}
}

// SaveTrackerHandler writes the edited Company, Url and Status cells back
func SaveTrackerHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromContext(c)
		ctx := c.Request().Context()

		form, err := c.FormParams()
		if err != nil {
			s.Notify(session.KindError, "Failed to read the submitted table.")
			return redirect(c, "/tracker")
		}

		ids, companies, urls, statuses := form["id"], form["company"], form["url"], form["status"]
		if len(companies) != len(ids) || len(urls) != len(ids) || len(statuses) != len(ids) {
			s.Notify(session.KindError, "The submitted table is incomplete.")
			return redirect(c, "/tracker")
		}

		edits := make([]tracker.Edit, 0, len(ids))
		for i, id := range ids {
			row := validation.TrackerRowEdit{ID: id, Company: companies[i], URL: urls[i], Status: statuses[i]}
			if err := validate.Struct(&row); err != nil {
				s.Notify(session.KindWarning, "Row "+id+": "+validation.Describe(err))
				return redirect(c, "/tracker")
			}
			edits = append(edits, tracker.Edit{
				ID:      row.ID,
				Company: row.Company,
				URL:     row.URL,
				Status:  models.ApplicationStatus(row.Status),
			})
		}

		drive, ok := d.driveFor(ctx, s)
		if !ok {
			return redirect(c, "/")
		}

		data, err := drive.ReadWorkbook(ctx, d.Config.Drive.TrackerPath)
		if err != nil {
			if d.fail(s, "Failed to update Excel.", err) {
				return redirect(c, "/")
			}
			return redirect(c, "/tracker")
		}

		updated, err := tracker.ApplyEdits(data, edits)
		if err != nil {
			d.fail(s, "Failed to update Excel.", err)
			return redirect(c, "/tracker")
		}

		if err := drive.OverwriteWorkbook(ctx, d.Config.Drive.TrackerPath, updated); err != nil {
			if d.fail(s, "Failed to update Excel.", err) {
				return redirect(c, "/")
			}
			return redirect(c, "/tracker")
		}

		d.Logger.Info("Tracker updated", map[string]interface{}{"rows": len(edits)})
		s.Notify(session.KindSuccess, "Updates saved to Excel!")
		return redirect(c, "/tracker")
	}
}

// AddEntryHandler appends a new application to the tracker table. When the
// workbook does not exist yet it is created holding just the new row.
func AddEntryHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromContext(c)
		ctx := c.Request().Context()

		var form validation.NewEntryForm
		if err := c.Bind(&form); err != nil {
			s.Notify(session.KindWarning, "Please fill out all fields.")
			return redirect(c, "/tracker")
		}
		form.Normalize()
		if err := validate.Struct(&form); err != nil {
			s.Notify(session.KindWarning, "Please fill out all fields.\n"+validation.Describe(err))
			return redirect(c, "/tracker")
		}
		if !utils.Contains(d.Config.Documents.JobTypes, form.JobType) {
			s.Notify(session.KindWarning, "Unknown job type: "+form.JobType)
			return redirect(c, "/tracker")
		}

		drive, ok := d.driveFor(ctx, s)
		if !ok {
			return redirect(c, "/")
		}

		app := tracker.NewApplication(form.JobType, form.Company, form.URL,
			models.ParseYesNo(form.FolderCreated), models.ApplicationStatus(form.Status), d.now())

		if err := d.appendApplication(c, drive, app); err != nil {
			if d.fail(s, "Failed to save to OneDrive.", err) {
				return redirect(c, "/")
			}
			return redirect(c, "/tracker")
		}

		d.Logger.Info("Tracker entry added", map[string]interface{}{
			"id":       app.ID,
			"job_type": app.JobType,
			"company":  app.Company,
		})
		s.Notify(session.KindSuccess, "Entry added and saved to OneDrive!")
		return redirect(c, "/tracker")
	}
}

func (d *Deps) appendApplication(c echo.Context, drive *graph.Client, app models.Application) error {
	ctx := c.Request().Context()
	trackerPath := d.Config.Drive.TrackerPath

	exists, err := drive.Exists(ctx, trackerPath)
	if err != nil {
		return err
	}
	if exists {
		return drive.AppendRow(ctx, trackerPath, d.Config.Drive.TrackerTable, app.Row())
	}

	data, err := tracker.Encode([]models.Application{app}, d.Config.Drive.TrackerTable)
	if err != nil {
		return err
	}
	if err := drive.EnsureFolder(ctx, trackerFolder(d.Config)); err != nil {
		return err
	}
	return drive.OverwriteWorkbook(ctx, trackerPath, data)
}

// SelectJobHandler remembers the job opened on the applications page
func SelectJobHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromContext(c)
		ctx := c.Request().Context()

		params := validation.SelectJobParams{ID: c.Param("id")}
		if err := validate.Struct(&params); err != nil {
			s.Notify(session.KindWarning, validation.Describe(err))
			return redirect(c, "/tracker")
		}

		drive, ok := d.driveFor(ctx, s)
		if !ok {
			return redirect(c, "/")
		}

		apps, err := d.loadTracker(ctx, drive)
		if err != nil {
			if d.fail(s, "Failed to load Excel.", err) {
				return redirect(c, "/")
			}
			return redirect(c, "/tracker")
		}

		app, found := tracker.Find(apps, params.ID)
		if !found {
			s.Notify(session.KindWarning, "No job with id "+params.ID+" in the tracker.")
			return redirect(c, "/tracker")
		}

		s.SelectedJobID = app.ID
		return redirect(c, "/applications")
	}
}
