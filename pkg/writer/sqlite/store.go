package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
	"github.com/jmoiron/sqlx"
)

// ErrRunNotFound is returned when a run id is not present in the database.
var ErrRunNotFound = errors.New("run not found")

// Run is a stored RunTable row.
type Run struct {
	ID           string          `db:"RunId"`
	CreationDate string          `db:"CreationDate"`
	Tolerance    float64         `db:"Tolerance"`
	TopPercent   float64         `db:"TopPercent"`
	Threshold    sql.NullFloat64 `db:"Threshold"`
	FileCount    int             `db:"FileCount"`
	SkippedCount int             `db:"SkippedCount"`
}

// Sample is a stored SampleTable row.
type Sample struct {
	FileName      string `db:"FileName"`
	GroupLabel    string `db:"GroupLabel"`
	BioReplicate  string `db:"BioReplicate"`
	TechReplicate string `db:"TechReplicate"`
	RecordCount   int    `db:"RecordCount"`
	Status        string `db:"Status"`
	Message       string `db:"Message"`
}

type peakRow struct {
	PeakID      int     `db:"PeakId"`
	Peak        float64 `db:"Peak"`
	Significant bool    `db:"Significant"`
}

type cellRow struct {
	PeakID     int     `db:"PeakId"`
	GroupLabel string  `db:"GroupLabel"`
	Timepoint  int     `db:"Timepoint"`
	Intensity  float64 `db:"Intensity"`
}

// Store reads runs back from a database written by Writer
type Store struct {
	db *sqlx.DB
}

// Open connects to an existing database file
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// ListRuns returns all runs, newest first
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	var runs []Run
	err := s.db.SelectContext(ctx, &runs, `
		SELECT RunId, CreationDate, Tolerance, TopPercent, Threshold, FileCount, SkippedCount
		FROM RunTable
		ORDER BY CreationDate DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Run returns a run by id
func (s *Store) Run(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, `
		SELECT RunId, CreationDate, Tolerance, TopPercent, Threshold, FileCount, SkippedCount
		FROM RunTable
		WHERE RunId = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return &run, nil
}

// LatestRun returns the most recently written run
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return &runs[0], nil
}

// Samples returns the input files of a run in insertion order
func (s *Store) Samples(ctx context.Context, runID string) ([]Sample, error) {
	var samples []Sample
	err := s.db.SelectContext(ctx, &samples, `
		SELECT FileName, GroupLabel, BioReplicate, TechReplicate, RecordCount, Status, Message
		FROM SampleTable
		WHERE RunId = ?
		ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	return samples, nil
}

// LoadMatrix rebuilds the stored matrix of a run along with the peaks that
// were flagged significant.
func (s *Store) LoadMatrix(ctx context.Context, runID string) (*core.Matrix, []float64, error) {
	var peaks []peakRow
	err := s.db.SelectContext(ctx, &peaks, `
		SELECT PeakId, Peak, Significant FROM PeakTable WHERE RunId = ? ORDER BY Peak
	`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load peaks: %w", err)
	}

	var cells []cellRow
	err = s.db.SelectContext(ctx, &cells, `
		SELECT PeakId, GroupLabel, Timepoint, Intensity FROM CellTable WHERE RunId = ?
	`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cells: %w", err)
	}

	seen := make(map[core.Column]bool)
	var columns []core.Column
	for _, c := range cells {
		col := core.Column{Group: c.GroupLabel, Timepoint: c.Timepoint}
		if !seen[col] {
			seen[col] = true
			columns = append(columns, col)
		}
	}
	core.SortColumns(columns)

	colIdx := make(map[core.Column]int, len(columns))
	for i, c := range columns {
		colIdx[c] = i
	}

	m := &core.Matrix{Columns: columns}
	rowIdx := make(map[int]int, len(peaks))
	var significant []float64
	for _, p := range peaks {
		cellsRow := make([]core.Intensity, len(columns))
		for i := range cellsRow {
			cellsRow[i] = core.None()
		}
		rowIdx[p.PeakID] = len(m.Rows)
		m.Rows = append(m.Rows, core.Row{Peak: p.Peak, Cells: cellsRow})
		if p.Significant {
			significant = append(significant, p.Peak)
		}
	}

	for _, c := range cells {
		i, ok := rowIdx[c.PeakID]
		if !ok {
			return nil, nil, fmt.Errorf("cell references unknown peak id %d", c.PeakID)
		}
		m.Rows[i].Cells[colIdx[core.Column{Group: c.GroupLabel, Timepoint: c.Timepoint}]] = core.Some(c.Intensity)
	}

	return m, significant, nil
}
