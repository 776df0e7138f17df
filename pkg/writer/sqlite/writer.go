// Package sqlite provides SQLite storage for merge runs
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// Date format for RunTable (ISO 8601)
	runDateFormat = time.RFC3339

	schema = `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId TEXT PRIMARY KEY,
		CreationDate TEXT,
		Tolerance DOUBLE,
		TopPercent DOUBLE,
		Threshold DOUBLE,
		FileCount INTEGER,
		SkippedCount INTEGER
	);

	CREATE TABLE IF NOT EXISTS SampleTable (
		RunId TEXT REFERENCES RunTable(RunId),
		FileName TEXT,
		GroupLabel TEXT,
		BioReplicate TEXT,
		TechReplicate TEXT,
		RecordCount INTEGER,
		Status TEXT,
		Message TEXT
	);

	CREATE TABLE IF NOT EXISTS PeakTable (
		RunId TEXT REFERENCES RunTable(RunId),
		PeakId INTEGER,
		Peak DOUBLE,
		Significant BOOLEAN,
		PRIMARY KEY (RunId, PeakId)
	);

	CREATE TABLE IF NOT EXISTS CellTable (
		RunId TEXT REFERENCES RunTable(RunId),
		PeakId INTEGER,
		GroupLabel TEXT,
		Timepoint INTEGER,
		Intensity DOUBLE
	);
	`
)

// Sample status values stored in SampleTable.
const (
	StatusMerged  = "merged"
	StatusSkipped = "skipped"
)

// RunInfo describes the parameters of a run.
type RunInfo struct {
	Tolerance  float64
	TopPercent float64
	FileCount  int
}

// SampleInfo is one input file of a run.
type SampleInfo struct {
	FileName string
	Metadata core.SampleMetadata
	Records  int
	Err      error // Non-nil when the file was skipped
}

// Writer handles writing one run to a SQLite database file
type Writer struct {
	db         *sql.DB
	outputPath string
	runID      string
	sampleStmt *sql.Stmt
	peakStmt   *sql.Stmt
	cellStmt   *sql.Stmt
	peakID     int
	skipped    int
	closed     bool
}

// NewWriter opens (or creates) the database and starts a new run
func NewWriter(outputPath string, info RunInfo) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		runID:      uuid.NewString(),
		peakID:     1,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.Exec(`
		INSERT INTO RunTable (RunId, CreationDate, Tolerance, TopPercent, Threshold, FileCount, SkippedCount)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.runID, time.Now().UTC().Format(runDateFormat), info.Tolerance, info.TopPercent, nil, info.FileCount, 0)
	if err != nil {
		w.closeStatements()
		db.Close()
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return w, nil
}

// RunID returns the identifier of the run being written.
func (w *Writer) RunID() string {
	return w.runID
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	if _, err := w.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.sampleStmt, err = w.db.Prepare(`
		INSERT INTO SampleTable (
			RunId, FileName, GroupLabel, BioReplicate, TechReplicate, RecordCount, Status, Message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample statement: %w", err)
	}

	w.peakStmt, err = w.db.Prepare(`
		INSERT INTO PeakTable (RunId, PeakId, Peak, Significant) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare peak statement: %w", err)
	}

	w.cellStmt, err = w.db.Prepare(`
		INSERT INTO CellTable (RunId, PeakId, GroupLabel, Timepoint, Intensity) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cell statement: %w", err)
	}

	return nil
}

// WriteSample records the outcome of one input file
func (w *Writer) WriteSample(s SampleInfo) error {
	status, message := StatusMerged, ""
	if s.Err != nil {
		status, message = StatusSkipped, s.Err.Error()
		w.skipped++
	}

	_, err := w.sampleStmt.Exec(
		w.runID,
		s.FileName,
		s.Metadata.Group,
		s.Metadata.BioReplicate,
		s.Metadata.TechReplicate,
		s.Records,
		status,
		message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sample %s: %w", s.FileName, err)
	}
	return nil
}

// WriteMatrix stores every row of m. Peaks listed in significant are flagged.
// Undefined cells are not stored.
func (w *Writer) WriteMatrix(m *core.Matrix, significant []float64) error {
	flagged := make(map[float64]bool, len(significant))
	for _, p := range significant {
		flagged[p] = true
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	peakStmt := tx.Stmt(w.peakStmt)
	cellStmt := tx.Stmt(w.cellStmt)

	for _, r := range m.Rows {
		if _, err := peakStmt.Exec(w.runID, w.peakID, r.Peak, flagged[r.Peak]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert peak %.4f: %w", r.Peak, err)
		}

		for j, c := range m.Columns {
			cell := r.Cells[j]
			if !cell.Valid {
				continue
			}
			if _, err := cellStmt.Exec(w.runID, w.peakID, c.Group, c.Timepoint, cell.Value); err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert cell %.4f/%s: %w", r.Peak, c.Label(), err)
			}
		}

		w.peakID++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit matrix: %w", err)
	}
	return nil
}

// Finalize stores the threshold and skip count and closes the database. A nil
// threshold leaves it unset.
func (w *Writer) Finalize(threshold *float64) error {
	if w.closed {
		return nil
	}
	w.closed = true

	var t interface{}
	if threshold != nil {
		t = *threshold
	}

	_, err := w.db.Exec(`UPDATE RunTable SET Threshold = ?, SkippedCount = ? WHERE RunId = ?`, t, w.skipped, w.runID)
	if err != nil {
		w.closeStatements()
		w.db.Close()
		return fmt.Errorf("failed to update run: %w", err)
	}

	w.closeStatements()

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close finalizes the run without a threshold if Finalize was not called
func (w *Writer) Close() error {
	return w.Finalize(nil)
}

func (w *Writer) closeStatements() {
	for _, stmt := range []*sql.Stmt{w.sampleStmt, w.peakStmt, w.cellStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
}
