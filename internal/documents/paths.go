package documents

import (
	"errors"
	"fmt"
	"strings"

	"jobdesk/internal/config"
	"jobdesk/pkg/models"
)

var ErrNoDate = errors.New("application has no date")

// Folders are the drive folders involved in preparing one application
type Folders struct {
	Template string
	Target   string
	Bank     string
}

// FoldersFor derives the folders of app:
//
//	target:   <applications>/<Month>/<DD>_<Company>
//	template: <templates>/<Job Type>
//	bank:     <templates>/<bullet bank folder>
func FoldersFor(app models.Application, drive DriveLayout) (Folders, error) {
	if app.Date.IsZero() {
		return Folders{}, fmt.Errorf("%w: %s", ErrNoDate, app.ID)
	}

	company := sanitizeSegment(app.Company)
	return Folders{
		Template: drive.TemplatesRoot + "/" + sanitizeSegment(app.JobType),
		Target:   fmt.Sprintf("%s/%s/%s_%s", drive.ApplicationsRoot, app.Date.Format("January"), app.Date.Format("02"), company),
		Bank:     drive.TemplatesRoot + "/" + drive.BulletBankFolder,
	}, nil
}

// DriveLayout is the folder layout part of the configuration
type DriveLayout struct {
	ApplicationsRoot string
	TemplatesRoot    string
	BulletBankFolder string
}

// LayoutFromConfig extracts the drive layout
func LayoutFromConfig(cfg *config.Config) DriveLayout {
	return DriveLayout{
		ApplicationsRoot: strings.Trim(cfg.Drive.ApplicationsRoot, "/"),
		TemplatesRoot:    strings.Trim(cfg.Drive.TemplatesRoot, "/"),
		BulletBankFolder: strings.Trim(cfg.Drive.BulletBankFolder, "/"),
	}
}

// sanitizeSegment keeps a name usable as a single path segment
func sanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	return strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(s)
}
