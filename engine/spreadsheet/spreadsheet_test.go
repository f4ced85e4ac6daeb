package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/municrud/municrud/engine/staff"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRow() staff.Row {
	return staff.Row{
		Identifier: "12.345.678-9",
		FirstNames: "Ana",
		LastNames:  "Rojas",
		Email:      "ana@muni.cl",
		Role:       staff.RoleUser,
		Department: "Obras",
		Address:    "Calle 1",
		JobNumber:  "+56 2 2222",
		Extension:  "0123",
	}
}

func sheetRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestWorkbook(t *testing.T) {
	t.Run("Should write only the header row in the template", func(t *testing.T) {
		data, err := Template()
		require.NoError(t, err)
		rows := sheetRows(t, data)
		require.Len(t, rows, 1)
		assert.Equal(t, Headers(), rows[0])
	})
	t.Run("Should keep numeric strings as text", func(t *testing.T) {
		data, err := WriteRows([]staff.Row{sampleRow()})
		require.NoError(t, err)
		rows := sheetRows(t, data)
		require.Len(t, rows, 2)
		assert.Equal(t, "0123", rows[1][8])
		assert.Equal(t, "+56 2 2222", rows[1][7])
	})
}

func TestInspect(t *testing.T) {
	t.Run("Should accept a workbook written by WriteRows", func(t *testing.T) {
		data, err := WriteRows([]staff.Row{sampleRow(), sampleRow()})
		require.NoError(t, err)
		report, err := Inspect(data)
		require.NoError(t, err)
		assert.True(t, report.Valid())
		assert.Equal(t, 2, report.Rows)
		assert.Equal(t, SheetName, report.Sheet)
	})
	t.Run("Should report invalid cells by sheet row", func(t *testing.T) {
		bad := sampleRow()
		bad.Email = "not-an-email"
		bad.Extension = "12345"
		data, err := WriteRows([]staff.Row{sampleRow(), bad})
		require.NoError(t, err)
		report, err := Inspect(data)
		require.NoError(t, err)
		assert.False(t, report.Valid())
		require.Len(t, report.Problems, 2)
		assert.Equal(t, 3, report.Problems[0].Row)
		assert.Equal(t, "email", report.Problems[0].Field)
		assert.Equal(t, "anexoMunicipal", report.Problems[1].Field)
	})
	t.Run("Should reject files that are not xlsx", func(t *testing.T) {
		_, err := Inspect([]byte("rut,nombres\n1-9,Ana\n"))
		assert.ErrorIs(t, err, ErrNotSpreadsheet)
	})
	t.Run("Should reject a header that does not match", func(t *testing.T) {
		f := excelize.NewFile()
		require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"name", "mail"}))
		var buf bytes.Buffer
		_, err := f.WriteTo(&buf)
		require.NoError(t, err)
		require.NoError(t, f.Close())
		_, err = Inspect(buf.Bytes())
		assert.ErrorIs(t, err, ErrHeaderMismatch)
	})
}

func TestStore(t *testing.T) {
	t.Run("Should save under the directory using the base name", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		store := NewStore(fs, "/downloads")
		path, err := store.Save("../userdata.xlsx", []byte("data"))
		require.NoError(t, err)
		assert.Equal(t, "/downloads/userdata.xlsx", path)
		got, err := store.Read(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("data"), got)
	})
	t.Run("Should fail reading a missing file", func(t *testing.T) {
		_, err := NewStore(afero.NewMemMapFs(), "").Read("missing.xlsx")
		assert.Error(t, err)
	})
}
