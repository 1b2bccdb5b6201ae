package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"jobdesk/internal/api/middleware"
	"jobdesk/internal/api/validation"
	"jobdesk/internal/documents"
	"jobdesk/internal/llm"
	"jobdesk/internal/posting"
	"jobdesk/internal/session"
	"jobdesk/pkg/models"
	"jobdesk/pkg/utils"
)

// SuggestBulletsHandler asks the LLM for bullets for the selected job. The
// job posting, when reachable, and the bank's existing bullets are sent as
// context.
func SuggestBulletsHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := session.FromContext(c)
		ctx := c.Request().Context()
		requestID := middleware.RequestID(c)

		var req validation.SuggestBulletsRequest
		if err := c.Bind(&req); err != nil {
			return errorJSON(c, "invalid_request", utils.NewBadRequestError("Invalid request format"))
		}
		if err := validate.Struct(&req); err != nil {
			return errorJSON(c, "validation_failed", utils.NewValidationError(validation.Describe(err)))
		}
		if !utils.Contains(d.Config.Documents.Categories, req.Category) {
			return errorJSON(c, "validation_failed", utils.NewValidationError("unknown category "+req.Category))
		}
		if !d.LLM.Enabled() {
			return errorJSON(c, "suggestions_disabled", utils.NewServiceUnavailableError(llm.ErrUnavailable.Error()))
		}
		if s.SelectedJobID == "" {
			return errorJSON(c, "no_job_selected", utils.NewBadRequestError("Select a job on the Tracker page first"))
		}

		drive, ok := d.driveFor(ctx, s)
		if !ok {
			return errorJSON(c, "sign_in_required", utils.NewUnauthorizedError("Please log in to access your OneDrive data."))
		}

		app, err := d.selectedJob(ctx, drive, s)
		if err != nil {
			if errors.Is(err, errJobNotFound) {
				return errorJSON(c, "job_not_found", &utils.CustomError{Code: http.StatusNotFound, Message: err.Error()})
			}
			return errorJSON(c, "remote_failed", utils.NewRemoteError(err))
		}

		kind := documents.ParseKind(req.Kind)
		bank, err := d.Generator.LoadBank(ctx, drive, app, kind)
		if err != nil {
			d.Logger.Warn("Bullet bank unavailable for suggestions", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
		}

		var postingText string
		if app.URL != "" {
			if preview, err := d.Posting.Fetch(ctx, app.URL); err == nil {
				postingText = preview.Description
			} else {
				d.Logger.Warn("Posting unavailable for suggestions", map[string]interface{}{
					"request_id": requestID,
					"url":        app.URL,
					"error":      err.Error(),
				})
			}
		}

		suggestions, err := d.LLM.SuggestBullets(ctx, llm.SuggestRequest{
			Category: req.Category,
			JobType:  app.JobType,
			Company:  app.Company,
			Posting:  postingText,
			Existing: bank[req.Category],
			Count:    req.Count,
		})
		if err != nil {
			d.Logger.Error("Bullet suggestion failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return errorJSON(c, "llm_failed", utils.NewLLMError(err.Error()))
		}

		return c.JSON(http.StatusOK, models.BulletSuggestionResponse{
			Category:  req.Category,
			Bullets:   suggestions,
			Provider:  d.LLM.GetProviderName(),
			RequestID: requestID,
		})
	}
}

// PostingPreviewHandler fetches a job posting and returns its summary
func PostingPreviewHandler(d *Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := validation.PreviewParams{URL: c.QueryParam("url")}
		if err := validate.Struct(&params); err != nil {
			return errorJSON(c, "validation_failed", utils.NewValidationError(validation.Describe(err)))
		}

		preview, err := d.Posting.Fetch(c.Request().Context(), params.URL)
		if err != nil {
			if errors.Is(err, posting.ErrInvalidURL) {
				return errorJSON(c, "validation_failed", utils.NewValidationError(err.Error()))
			}
			return errorJSON(c, "posting_unavailable", &utils.CustomError{Code: http.StatusBadGateway, Message: "Posting unavailable", Detail: err.Error()})
		}
		return c.JSON(http.StatusOK, preview)
	}
}
