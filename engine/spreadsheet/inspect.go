package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/municrud/municrud/engine/staff"
	"github.com/xuri/excelize/v2"
)

var (
	ErrNotSpreadsheet = errors.New("file is not an .xlsx workbook")
	ErrHeaderMismatch = errors.New("header row does not match the template")
	ErrNoSheets       = errors.New("workbook has no sheets")
)

// Problem is one invalid cell found while inspecting an upload
type Problem struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("row %d: %s %s", p.Row, p.Field, p.Message)
}

// Report summarizes the pre-flight check of an upload
type Report struct {
	Sheet    string    `json:"sheet"`
	Rows     int       `json:"rows"`
	Problems []Problem `json:"problems,omitempty"`
}

func (r *Report) Valid() bool {
	return len(r.Problems) == 0
}

// Inspect verifies that data is an xlsx workbook whose first sheet carries
// the template header and valid staff rows. Row numbers are 1-based sheet rows.
func Inspect(data []byte) (*Report, error) {
	if mt := mimetype.Detect(data); !mt.Is(ContentType) {
		return nil, fmt.Errorf("%w: detected %s", ErrNotSpreadsheet, mt.String())
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSpreadsheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", ErrHeaderMismatch, sheet)
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}
	report := &Report{Sheet: sheet}
	cols := staff.Columns()
	for i, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		report.Rows++
		rowNum := i + 2
		for c, col := range cols {
			value := ""
			if c < len(cells) {
				value = strings.TrimSpace(cells[c])
			}
			if msg := checkCell(col.ID, value); msg != "" {
				report.Problems = append(report.Problems, Problem{Row: rowNum, Field: string(col.ID), Message: msg})
			}
		}
	}
	return report, nil
}

func checkHeader(header []string) error {
	want := Headers()
	var missing []string
	for i, name := range want {
		if i >= len(header) || !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: expected %s at columns %s", ErrHeaderMismatch,
			strings.Join(want, ","), strings.Join(missing, ","))
	}
	return nil
}

func checkCell(col staff.ColumnID, value string) string {
	if value == "" {
		return "is required"
	}
	if col == staff.ColumnIdentifier {
		if !staff.ValidIdentifier(value) {
			return "must look like 12.345.678-9"
		}
		return ""
	}
	err := staff.ValidateCell(col, value)
	var verr *staff.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr) && len(verr.Fields) > 0:
		return verr.Fields[0].Message
	default:
		return err.Error()
	}
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
