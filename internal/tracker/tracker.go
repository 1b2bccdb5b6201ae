package tracker

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"jobdesk/pkg/models"
)

var (
	ErrNoSheet       = errors.New("workbook has no sheets")
	ErrMissingColumn = errors.New("tracker column missing")
	ErrUnknownID     = errors.New("no tracker row with id")
	ErrInvalidStatus = errors.New("invalid application status")
)

// Edit carries new values for the editable columns of one row
type Edit struct {
	ID      string
	Company string
	URL     string
	Status  models.ApplicationStatus
}

var dateLayouts = []string{
	models.TrackerDateLayout,
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02.January.2006",
	"01-02-06",
	"1/2/2006",
}

// sheet is an opened tracker workbook with its header positions resolved
type sheet struct {
	file    *excelize.File
	name    string
	rows    [][]string
	columns map[string]int
}

func open(data []byte) (*sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, ErrNoSheet
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	s := &sheet{file: f, name: sheets[0], rows: rows, columns: make(map[string]int)}
	if len(rows) > 0 {
		for i, h := range rows[0] {
			s.columns[strings.TrimSpace(h)] = i
		}
	}
	if _, ok := s.columns[models.ColumnID]; !ok {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, models.ColumnID)
	}
	return s, nil
}

func (s *sheet) cell(row []string, column string) string {
	i, ok := s.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Decode reads every non-empty row of the first sheet
func Decode(data []byte) ([]models.Application, error) {
	s, err := open(data)
	if err != nil {
		return nil, err
	}
	defer s.file.Close()

	apps := make([]models.Application, 0, len(s.rows))
	for _, row := range s.rows[1:] {
		if isBlank(row) {
			continue
		}
		apps = append(apps, models.Application{
			ID:            s.cell(row, models.ColumnID),
			JobType:       s.cell(row, models.ColumnJobType),
			Date:          ParseDate(s.cell(row, models.ColumnDate)),
			Company:       s.cell(row, models.ColumnCompany),
			URL:           s.cell(row, models.ColumnURL),
			FolderCreated: models.ParseYesNo(s.cell(row, models.ColumnFolderCreated)),
			Status:        models.ApplicationStatus(s.cell(row, models.ColumnStatus)),
		})
	}
	return apps, nil
}

// ApplyEdits rewrites the Company, Url and Status cells of the rows matched by
// ID. Every other cell, row and sheet object is left as it was.
func ApplyEdits(data []byte, edits []Edit) ([]byte, error) {
	byID := make(map[string]Edit, len(edits))
	for _, e := range edits {
		if e.Status != "" && !e.Status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
		}
		byID[e.ID] = e
	}

	s, err := open(data)
	if err != nil {
		return nil, err
	}
	defer s.file.Close()

	for _, column := range []string{models.ColumnCompany, models.ColumnURL, models.ColumnStatus} {
		if _, ok := s.columns[column]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, column)
		}
	}

	applied := make(map[string]bool, len(byID))
	for r, row := range s.rows[1:] {
		edit, ok := byID[s.cell(row, models.ColumnID)]
		if !ok {
			continue
		}
		rowNum := r + 2 // header is row 1

		values := map[string]string{
			models.ColumnCompany: strings.TrimSpace(edit.Company),
			models.ColumnURL:     strings.TrimSpace(edit.URL),
			models.ColumnStatus:  string(edit.Status),
		}
		for column, value := range values {
			if column == models.ColumnStatus && value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(s.columns[column]+1, rowNum)
			if err != nil {
				return nil, err
			}
			if err := s.file.SetCellValue(s.name, cell, value); err != nil {
				return nil, fmt.Errorf("failed to set %s: %w", cell, err)
			}
		}
		applied[edit.ID] = true
	}

	for id := range byID {
		if !applied[id] {
			return nil, fmt.Errorf("%w %q", ErrUnknownID, id)
		}
	}

	buf, err := s.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode produces a fresh workbook holding apps inside a table named table
func Encode(apps []models.Application, table string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := f.GetSheetName(0)
	header := make([]interface{}, len(models.TrackerColumns))
	for i, c := range models.TrackerColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, err
	}

	for i, app := range apps {
		row := app.Row()
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return nil, err
		}
	}

	if table != "" {
		lastRow := len(apps) + 1
		if lastRow < 2 {
			lastRow = 2
		}
		lastCell, _ := excelize.CoordinatesToCellName(len(models.TrackerColumns), lastRow)
		if err := f.AddTable(name, &excelize.Table{
			Range:     "A1:" + lastCell,
			Name:      table,
			StyleName: "TableStyleMedium2",
		}); err != nil {
			return nil, fmt.Errorf("failed to add table: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// NewApplication builds a row for a new application dated today
func NewApplication(jobType, company, url string, folderCreated bool, status models.ApplicationStatus, now time.Time) models.Application {
	if status == "" {
		status = models.StatusPreparation
	}
	y, m, d := now.Date()
	return models.Application{
		ID:            NewID(),
		JobType:       strings.TrimSpace(jobType),
		Date:          time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Company:       strings.TrimSpace(company),
		URL:           strings.TrimSpace(url),
		FolderCreated: folderCreated,
		Status:        status,
	}
}

// NewID returns the first eight hex characters of a random UUID
func NewID() string {
	return uuid.New().String()[:8]
}

// Find returns the application with id
func Find(apps []models.Application, id string) (models.Application, bool) {
	for _, a := range apps {
		if a.ID == id {
			return a, true
		}
	}
	return models.Application{}, false
}

// ParseDate accepts the tracker layout, ISO dates and Excel serial numbers.
// Unparseable input yields the zero time.
func ParseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
