package models

import (
	"strings"
	"time"
)

// ApplicationStatus is the progress of a job application
type ApplicationStatus string

const (
	StatusPreparation ApplicationStatus = "Preparation"
	StatusApplied     ApplicationStatus = "Applied"
	StatusInProcess   ApplicationStatus = "In process"
	StatusRejected    ApplicationStatus = "Rejected"
)

// Statuses lists every status in display order
var Statuses = []ApplicationStatus{StatusPreparation, StatusApplied, StatusInProcess, StatusRejected}

// Valid reports whether s is one of the known statuses
func (s ApplicationStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Tracker column headers, in table order
const (
	ColumnID            = "ID"
	ColumnJobType       = "Job Type"
	ColumnDate          = "Date"
	ColumnCompany       = "Company Name"
	ColumnURL           = "Url"
	ColumnFolderCreated = "Created Application folder"
	ColumnStatus        = "Status"
)

// TrackerColumns is the column order of the tracker table
var TrackerColumns = []string{
	ColumnID, ColumnJobType, ColumnDate, ColumnCompany, ColumnURL, ColumnFolderCreated, ColumnStatus,
}

// TrackerDateLayout is how dates are written into the tracker
const TrackerDateLayout = "02-Jan-2006"

// Application is one row of the tracker table
type Application struct {
	ID            string            `json:"id"`
	JobType       string            `json:"job_type"`
	Date          time.Time         `json:"date"`
	Company       string            `json:"company_name"`
	URL           string            `json:"url"`
	FolderCreated bool              `json:"folder_created"`
	Status        ApplicationStatus `json:"status"`
}

// DateString formats Date the way the tracker stores it, empty when unknown
func (a Application) DateString() string {
	if a.Date.IsZero() {
		return ""
	}
	return a.Date.Format(TrackerDateLayout)
}

// FolderCreatedString renders FolderCreated as Yes or No
func (a Application) FolderCreatedString() string {
	if a.FolderCreated {
		return "Yes"
	}
	return "No"
}

// Row returns the cell values in TrackerColumns order
func (a Application) Row() []interface{} {
	return []interface{}{
		a.ID,
		a.JobType,
		a.DateString(),
		a.Company,
		a.URL,
		a.FolderCreatedString(),
		string(a.Status),
	}
}

// ParseYesNo reads the folder-created column
func ParseYesNo(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true", "1":
		return true
	default:
		return false
	}
}
