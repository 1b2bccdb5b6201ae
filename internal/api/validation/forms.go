package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"jobdesk/pkg/models"
)

// JobIDPattern matches tracker IDs: the first 8 hex characters of a UUID
var JobIDPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

// ValidateJobID validates that the job ID follows the expected format
func ValidateJobID(fl validator.FieldLevel) bool {
	return JobIDPattern.MatchString(fl.Field().String())
}

// ValidateJobStatus accepts only the known application statuses
func ValidateJobStatus(fl validator.FieldLevel) bool {
	return models.ApplicationStatus(fl.Field().String()).Valid()
}

// ValidateYesNo accepts the folder-created column values
func ValidateYesNo(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Yes", "No":
		return true
	default:
		return false
	}
}

// RegisterJobValidators registers all tracker-related custom validators
func RegisterJobValidators(v *validator.Validate) {
	v.RegisterValidation("job_id", ValidateJobID)
	v.RegisterValidation("job_status", ValidateJobStatus)
	v.RegisterValidation("yes_no", ValidateYesNo)
}

// New returns a validator with the custom tags registered
func New() *validator.Validate {
	v := validator.New()
	RegisterJobValidators(v)
	return v
}

// NewEntryForm is the add-entry sidebar form of the tracker page
type NewEntryForm struct {
	JobType       string `form:"job_type" validate:"required"`
	Company       string `form:"company" validate:"required,max=200"`
	URL           string `form:"url" validate:"required,url"`
	FolderCreated string `form:"folder_created" validate:"required,yes_no"`
	Status        string `form:"status" validate:"required,job_status"`
}

// Normalize trims user input before validation
func (f *NewEntryForm) Normalize() {
	f.JobType = strings.TrimSpace(f.JobType)
	f.Company = strings.TrimSpace(f.Company)
	f.URL = strings.TrimSpace(f.URL)
}

// TrackerRowEdit is one edited row of the tracker table
type TrackerRowEdit struct {
	ID      string `validate:"required,job_id"`
	Company string `validate:"max=200"`
	URL     string `validate:"omitempty,url"`
	Status  string `validate:"required,job_status"`
}

// SelectJobParams identifies the job opened on the applications page
type SelectJobParams struct {
	ID string `param:"id" validate:"required,job_id"`
}

// SaveBulletForm stores a bullet in the bank
type SaveBulletForm struct {
	Kind     string `form:"kind" validate:"omitempty,oneof=cv cover_letter"`
	Key      string `form:"key" validate:"required"`
	Category string `form:"category" validate:"required"`
	Bullet   string `form:"bullet" validate:"required,max=1000"`
}

// SuggestBulletsRequest asks for generated bullets
type SuggestBulletsRequest struct {
	Kind     string `json:"kind" form:"kind" validate:"omitempty,oneof=cv cover_letter"`
	Category string `json:"category" form:"category" validate:"required"`
	Count    int    `json:"count" form:"count" validate:"omitempty,min=1,max=10"`
}

// PreviewParams is the query of the posting preview endpoint
type PreviewParams struct {
	URL string `query:"url" validate:"required,url"`
}

// Describe flattens validator errors into a short message
func Describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "job_status":
			parts = append(parts, fmt.Sprintf("%s must be one of Preparation, Applied, In process, Rejected", fe.Field()))
		case "job_id":
			parts = append(parts, fmt.Sprintf("%s must be an 8 character hex id", fe.Field()))
		case "url":
			parts = append(parts, fmt.Sprintf("%s must be a valid URL", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
