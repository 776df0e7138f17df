package table

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	in := "Sample,Date,Time,Mode,Number of Scans,500.1234_x\n" +
		"Mel202A1_D1,x,y,z,10,50\n" +
		",,,,,\n" +
		"Mel202A1_D2,x,y,z,4\n"

	tbl, err := ReadCSV(strings.NewReader(in), "Mel202A1.csv")
	require.NoError(t, err)

	assert.Equal(t, "Mel202A1.csv", tbl.SampleID)
	assert.Equal(t, 6, len(tbl.Header))
	require.Len(t, tbl.Rows, 2, "blank rows are dropped")
	assert.Equal(t, "", tbl.Rows[1][5], "short rows are padded")
	assert.Equal(t, 4, tbl.ColumnIndex("Number of Scans"))
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), "empty.csv")

	var schemaErr *core.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MP41B2.xlsx")

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Sample", "a", "b", "c", "Number of Scans", "600.5_x"},
		{"MP41B2_D3", "", "", "", 5, 25},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := File{Path: path}.Load()
	require.NoError(t, err)

	assert.Equal(t, "MP41B2.xlsx", tbl.SampleID)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "MP41B2_D3", tbl.Rows[0][0])
	assert.Equal(t, "5", tbl.Rows[0][4])
	assert.Equal(t, "25", tbl.Rows[0][5])
}

func TestReadXLSXIgnoresNumberFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Mel202A1.xlsx")

	f := excelize.NewFile()
	header := []interface{}{"Sample", "a", "b", "c", "Number of Scans", "500.1234_x"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Mel202A1_D1"))
	require.NoError(t, f.SetCellValue("Sheet1", "E2", 7.6))
	require.NoError(t, f.SetCellValue("Sheet1", "F2", 1234.5678))

	integer, err := f.NewStyle(&excelize.Style{NumFmt: 1})
	require.NoError(t, err)
	twoDecimals, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "E2", "E2", integer))
	require.NoError(t, f.SetCellStyle("Sheet1", "F2", "F2", twoDecimals))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := File{Path: path}.Load()
	require.NoError(t, err)

	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "7.6", tbl.Rows[0][4])
	assert.Equal(t, "1234.5678", tbl.Rows[0][5])
}

func TestFileLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "921B3.csv")
	require.NoError(t, os.WriteFile(path, []byte("Sample,Number of Scans\nD1,3\n"), 0o644))

	tbl, err := File{Path: path}.Load()
	require.NoError(t, err)
	assert.Equal(t, "921B3.csv", tbl.SampleID)
	assert.Len(t, tbl.Rows, 1)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.csv", FormatCSV, false},
		{"b.XLSX", FormatXLSX, false},
		{"c.txt", "", true},
	}

	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if tt.wantErr {
			assert.Error(t, err, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}
