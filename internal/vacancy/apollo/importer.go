// internal/vacancy/apollo/importer.go

// Package apollo applies Apollo task exports onto a vacancy workflow.
package apollo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"vacancy-workers/internal/models"
	"vacancy-workers/internal/vacancy"
)

type Op string

const (
	OpRead  Op = "read"
	OpParse Op = "parse"
	OpApply Op = "apply"
)

type ImportError struct {
	Op  Op
	Err error
}

func (e *ImportError) Error() string {
	switch e.Op {
	case OpRead:
		return fmt.Sprintf("failed to read Apollo export: %v", e.Err)
	case OpParse:
		return fmt.Sprintf("invalid Apollo CSV data: %v", e.Err)
	default:
		return fmt.Sprintf("could not apply Apollo data to vacancy workflow: %v", e.Err)
	}
}

func (e *ImportError) Unwrap() error { return e.Err }

var ErrMissingNameColumn = errors.New("missing Name column")

const (
	colName         = "Name"
	colCreatedAt    = "Created At"
	colCompletedAt  = "Completed At"
	colLastModified = "Last Modified"
)

type row struct {
	name         string
	createdAt    string
	completedAt  string
	lastModified string
}

func (r row) completedOn() (models.Date, bool) {
	t, ok := parseTimestamp(r.completedAt)
	if !ok {
		return models.Date{}, false
	}
	return models.DateOf(t), true
}

// touched reports whether the row was edited after it was created.
func (r row) touched() bool {
	created, ok := parseTimestamp(r.createdAt)
	if !ok {
		return false
	}
	modified, ok := parseTimestamp(r.lastModified)
	if !ok {
		return false
	}
	return modified.After(created)
}

// ImportFile picks the CSV or XLSX reader from the file extension.
func ImportFile(path string, vacancyStart, targetMoveIn models.Date) (*vacancy.WorkflowInstance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ImportError{Op: OpRead, Err: err}
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ImportXLSX(f, vacancyStart, targetMoveIn)
	}
	return ImportCSV(f, vacancyStart, targetMoveIn)
}

func ImportCSV(r io.Reader, vacancyStart, targetMoveIn models.Date) (*vacancy.WorkflowInstance, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &ImportError{Op: OpParse, Err: err}
		}
		return nil, &ImportError{Op: OpRead, Err: err}
	}
	return apply(records, vacancyStart, targetMoveIn)
}

// ImportXLSX reads the first sheet of a workbook laid out like the CSV export.
func ImportXLSX(r io.Reader, vacancyStart, targetMoveIn models.Date) (*vacancy.WorkflowInstance, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ImportError{Op: OpRead, Err: err}
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ImportError{Op: OpParse, Err: errors.New("workbook has no sheets")}
	}
	records, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, &ImportError{Op: OpParse, Err: err}
	}
	return apply(records, vacancyStart, targetMoveIn)
}

func apply(records [][]string, vacancyStart, targetMoveIn models.Date) (*vacancy.WorkflowInstance, error) {
	instance := vacancy.NewInstance(vacancy.StandardCatalog(), vacancyStart, targetMoveIn)
	if len(records) == 0 {
		return instance, nil
	}

	rows, err := decodeRows(records)
	if err != nil {
		return nil, &ImportError{Op: OpParse, Err: err}
	}

	applied := make(map[string]bool)
	for _, r := range rows {
		key, ok := TaskKeyFor(r.name)
		if !ok || applied[key] {
			continue
		}

		if day, ok := r.completedOn(); ok {
			if err := instance.SetStatus(key, vacancy.StatusCompleted, &day); err != nil {
				return nil, &ImportError{Op: OpApply, Err: err}
			}
			applied[key] = true
			continue
		}

		if r.touched() {
			if err := instance.SetStatus(key, vacancy.StatusInProgress, nil); err != nil {
				return nil, &ImportError{Op: OpApply, Err: err}
			}
			applied[key] = true
		}
	}
	return instance, nil
}

func decodeRows(records [][]string) ([]row, error) {
	header := make(map[string]int, len(records[0]))
	for i, cell := range records[0] {
		header[strings.TrimSpace(invisible.Replace(cell))] = i
	}
	nameIdx, ok := header[colName]
	if !ok {
		return nil, ErrMissingNameColumn
	}

	cell := func(record []string, column string) string {
		idx, ok := header[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	rows := make([]row, 0, len(records)-1)
	for line, record := range records[1:] {
		if nameIdx >= len(record) {
			if isBlank(record) {
				continue
			}
			return nil, fmt.Errorf("line %d: missing field %q", line+2, colName)
		}
		rows = append(rows, row{
			name:         strings.TrimSpace(record[nameIdx]),
			createdAt:    cell(record, colCreatedAt),
			completedAt:  cell(record, colCompletedAt),
			lastModified: cell(record, colLastModified),
		})
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
