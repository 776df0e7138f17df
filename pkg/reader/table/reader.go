// Package table reads per-sample peak intensity tables from CSV and XLSX files
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
	"github.com/xuri/excelize/v2"
)

// Format identifies a supported table format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("cannot detect table format from extension '%s'", ext)
	}
}

// ReadCSV reads a whole CSV table. Short rows are padded with empty cells.
func ReadCSV(r io.Reader, sampleID string) (*core.RawSampleTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return buildTable(sampleID, rows)
}

// ReadXLSX reads the first sheet of a workbook. Cells are read as stored,
// ignoring number formats.
func ReadXLSX(r io.Reader, sampleID string) (*core.RawSampleTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &core.SchemaError{Field: "workbook", Message: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	return buildTable(sampleID, rows)
}

// buildTable splits off the header and pads every row to the header width.
func buildTable(sampleID string, rows [][]string) (*core.RawSampleTable, error) {
	if len(rows) == 0 {
		return nil, &core.SchemaError{Field: "header", Message: "table is empty"}
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	t := &core.RawSampleTable{
		SampleID: sampleID,
		Header:   header,
		Rows:     make([][]string, 0, len(rows)-1),
	}

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		padded := make([]string, len(header))
		copy(padded, row)
		t.Rows = append(t.Rows, padded)
	}

	return t, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// File is a sample table on disk.
type File struct {
	Path string
}

// Name returns the file name used as sample identifier.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// Load reads the file in the format implied by its extension.
func (f File) Load() (*core.RawSampleTable, error) {
	format, err := DetectFormat(f.Path)
	if err != nil {
		return nil, err
	}

	in, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	switch format {
	case FormatXLSX:
		return ReadXLSX(in, f.Name())
	default:
		return ReadCSV(in, f.Name())
	}
}

// Files wraps paths as sample tables.
func Files(paths []string) []File {
	files := make([]File, len(paths))
	for i, p := range paths {
		files[i] = File{Path: p}
	}
	return files
}
