package documents

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"jobdesk/internal/bullets"
	"jobdesk/internal/config"
	"jobdesk/internal/logging"
	"jobdesk/internal/placeholders"
	"jobdesk/pkg/models"
)

var (
	ErrCopy    = errors.New("failed to prepare application folder")
	ErrLoad    = errors.New("failed to load document inputs")
	ErrRender  = errors.New("failed to render document")
	ErrUpload  = errors.New("failed to upload document")
	ErrConvert = errors.New("failed to convert document to PDF")
)

// Kind selects which document is generated
type Kind string

const (
	KindCV          Kind = "cv"
	KindCoverLetter Kind = "cover_letter"
)

// Label is the display name of the kind
func (k Kind) Label() string {
	if k == KindCoverLetter {
		return "Cover Letter"
	}
	return "CV"
}

// ParseKind maps form values onto a Kind, defaulting to the CV
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cover_letter", "cover letter", "cl", "coverletter":
		return KindCoverLetter
	default:
		return KindCV
	}
}

// Drive is the subset of the Graph client used for documents
type Drive interface {
	EnsureFolder(ctx context.Context, path string) error
	CopyFile(ctx context.Context, name, srcFolder, dstFolder string) (bool, error)
	Download(ctx context.Context, path string) ([]byte, error)
	Upload(ctx context.Context, path, contentType string, data []byte) error
	ReadJSON(ctx context.Context, path string, v interface{}) error
	WriteJSON(ctx context.Context, path string, v interface{}) error
	DownloadAsPDF(ctx context.Context, src, dst string) ([]byte, error)
}

// Archiver keeps an extra copy of generated PDFs
type Archiver interface {
	Archive(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Result describes a generated document
type Result struct {
	Kind       Kind
	DocxPath   string
	PDFPath    string
	ArchiveURL string
}

// Generator prepares application folders and renders documents into them
type Generator struct {
	layout   DriveLayout
	sets     map[Kind]config.DocumentSet
	archiver Archiver
	logger   logging.Logger
	now      func() time.Time
}

// NewGenerator creates a generator. archiver may be nil.
func NewGenerator(cfg *config.Config, archiver Archiver, logger logging.Logger) *Generator {
	return &Generator{
		layout: LayoutFromConfig(cfg),
		sets: map[Kind]config.DocumentSet{
			KindCV:          cfg.Documents.CV,
			KindCoverLetter: cfg.Documents.CoverLetter,
		},
		archiver: archiver,
		logger:   logger,
		now:      time.Now,
	}
}

// Set returns the file names for kind
func (g *Generator) Set(kind Kind) config.DocumentSet {
	return g.sets[kind]
}

// Folders returns the folders of app
func (g *Generator) Folders(app models.Application) (Folders, error) {
	return FoldersFor(app, g.layout)
}

// BankPath is the bullet bank file used by kind
func (g *Generator) BankPath(app models.Application, kind Kind) (string, error) {
	folders, err := g.Folders(app)
	if err != nil {
		return "", err
	}
	return folders.Bank + "/" + g.Set(kind).BulletsJSON, nil
}

// Prepare makes sure the target folder exists and holds copies of both
// templates and both schemas. Files already in the target are left alone.
func (g *Generator) Prepare(ctx context.Context, drive Drive, app models.Application) (Folders, error) {
	folders, err := g.Folders(app)
	if err != nil {
		return Folders{}, fmt.Errorf("%w: %w", ErrCopy, err)
	}

	if err := drive.EnsureFolder(ctx, folders.Target); err != nil {
		return Folders{}, fmt.Errorf("%w: %w", ErrCopy, err)
	}

	cv, cl := g.sets[KindCV], g.sets[KindCoverLetter]
	copied := 0
	for _, name := range []string{cv.TemplateDocx, cl.TemplateDocx, cv.SchemaJSON, cl.SchemaJSON} {
		ok, err := drive.CopyFile(ctx, name, folders.Template, folders.Target)
		if err != nil {
			return Folders{}, fmt.Errorf("%w: %s: %w", ErrCopy, name, err)
		}
		if ok {
			copied++
		}
	}

	g.logger.Info("Application folder ready", map[string]interface{}{
		"target": folders.Target,
		"copied": copied,
	})
	return folders, nil
}

// LoadSchema reads the placeholder schema of kind from the target folder
func (g *Generator) LoadSchema(ctx context.Context, drive Drive, app models.Application, kind Kind) (*placeholders.Schema, error) {
	folders, err := g.Folders(app)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	schema := placeholders.NewSchema()
	if err := drive.ReadJSON(ctx, folders.Target+"/"+g.Set(kind).SchemaJSON, schema); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return schema, nil
}

// LoadBank reads the bullet bank of kind
func (g *Generator) LoadBank(ctx context.Context, drive Drive, app models.Application, kind Kind) (bullets.Bank, error) {
	path, err := g.BankPath(app, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	bank, err := bullets.Load(ctx, drive, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return bank, nil
}

// Generate applies values to the schema of kind, saves it, renders the
// template copy in the target folder, uploads the DOCX and its PDF
// conversion, then archives the PDF when an archiver is configured.
func (g *Generator) Generate(ctx context.Context, drive Drive, app models.Application, kind Kind, values map[string]string) (*Result, error) {
	set := g.Set(kind)
	folders, err := g.Folders(app)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	schema, err := g.LoadSchema(ctx, drive, app, kind)
	if err != nil {
		return nil, err
	}
	schema.Apply(values, g.now())

	if err := drive.WriteJSON(ctx, folders.Target+"/"+set.SchemaJSON, schema); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	template, err := drive.Download(ctx, folders.Target+"/"+set.TemplateDocx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	rendered, err := Render(template, schema.Mapping())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	result := &Result{
		Kind:     kind,
		DocxPath: folders.Target + "/" + set.OutputDocx,
		PDFPath:  folders.Target + "/" + set.OutputPDF,
	}

	if err := drive.Upload(ctx, result.DocxPath, docxContentType, rendered); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	pdf, err := drive.DownloadAsPDF(ctx, result.DocxPath, result.PDFPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConvert, err)
	}

	if g.archiver != nil {
		key := path.Join(strings.TrimPrefix(folders.Target, g.layout.ApplicationsRoot+"/"), set.OutputPDF)
		url, err := g.archiver.Archive(ctx, key, pdf, "application/pdf")
		if err != nil {
			// the drive copy is authoritative
			g.logger.Warn("Failed to archive PDF", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		} else {
			result.ArchiveURL = url
		}
	}

	g.logger.Info("Document generated", map[string]interface{}{
		"kind":     string(kind),
		"docx":     result.DocxPath,
		"pdf":      result.PDFPath,
		"archived": result.ArchiveURL != "",
	})
	return result, nil
}

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
