// Package xlsx writes merged and top-peak matrices into one workbook
package xlsx

import (
	"fmt"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
	"github.com/ChrisMcGann/mzmerge/pkg/writer/matrix"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook.
const (
	MergedSheet   = "merged"
	TopPeaksSheet = "top_peaks"
)

// WriteWorkbook saves merged and top on separate sheets of path. A nil top
// matrix is skipped.
func WriteWorkbook(path string, merged, top *core.Matrix) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MergedSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeSheet(f, MergedSheet, merged); err != nil {
		return err
	}

	if top != nil {
		if _, err := f.NewSheet(TopPeaksSheet); err != nil {
			return fmt.Errorf("failed to add sheet: %w", err)
		}
		if err := writeSheet(f, TopPeaksSheet, top); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeSheet lays out the same header rows as the delimited writer. Cells
// hold numbers so spreadsheets can compute on them.
func writeSheet(f *excelize.File, sheet string, m *core.Matrix) error {
	set := func(col, row int, v interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, v)
	}

	headers := []string{matrix.GroupHeader, matrix.TimepointHeader, matrix.PeakHeader}
	for i, h := range headers {
		if err := set(1, i+1, h); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	for j, c := range m.Columns {
		if err := set(j+2, 1, c.Group); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if err := set(j+2, 2, c.Timepoint); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	for i, r := range m.Rows {
		rowIdx := i + len(headers) + 1
		if err := set(1, rowIdx, r.Peak); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
		for j, cell := range r.Cells {
			if !cell.Valid {
				continue
			}
			if err := set(j+2, rowIdx, cell.Value); err != nil {
				return fmt.Errorf("sheet %s: %w", sheet, err)
			}
		}
	}

	return nil
}
