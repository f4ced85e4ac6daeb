package spreadsheet

import (
	"bytes"
	"fmt"

	"github.com/municrud/municrud/engine/staff"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Usuarios"
	// ContentType is the only upload format the backend reads
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Headers returns the header row expected by the import endpoint, in
// column order. The cells are the backend field names.
func Headers() []string {
	cols := staff.Columns()
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, string(c.ID))
	}
	return out
}

// Template builds a workbook holding only the header row
func Template() ([]byte, error) {
	return build(nil)
}

// WriteRows builds a workbook with the header row followed by rows
func WriteRows(rows []staff.Row) ([]byte, error) {
	return build(rows)
}

func build(rows []staff.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	cols := staff.Columns()
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellStr(SheetName, cell, string(col.ID)); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(SheetName, name, name, float64(col.Width+4)); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	for r, row := range rows {
		for i, col := range cols {
			value := row.Get(col.ID)
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			// text cells keep leading zeros and '+' in phone-like numbers
			if err := f.SetCellStr(SheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
