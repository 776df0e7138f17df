package core

import "fmt"

// MetadataReason tells which part of a sample name could not be recognized.
type MetadataReason int

const (
	// MissingGroup means no vocabulary token occurs in the sample name.
	MissingGroup MetadataReason = iota + 1
	// MissingReplicate means no letters-then-digits token follows the group.
	MissingReplicate
)

func (r MetadataReason) String() string {
	switch r {
	case MissingGroup:
		return "group token not found"
	case MissingReplicate:
		return "replicate ID not found"
	default:
		return "unknown metadata error"
	}
}

// MetadataError is returned when a sample identifier does not follow the
// naming convention. The sample is skipped.
type MetadataError struct {
	Sample string
	Reason MetadataReason
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("%s in sample name: %s", e.Reason, e.Sample)
}

// SchemaError is returned when a table lacks a required column.
type SchemaError struct {
	Field   string
	Message string
	Column  string // Missing column name, if any
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error in %s: %s", e.Field, e.Message)
}

// ParseError is returned when a value that must be numeric is not.
type ParseError struct {
	Field string
	Value string
	Row   int // 1-based data row, 0 for header values
	Err   error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("cannot parse %s %q", e.Field, e.Value)
	if e.Row > 0 {
		msg = fmt.Sprintf("row %d: %s", e.Row, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EmptyInputError aborts a run that has nothing left to compute on.
type EmptyInputError struct {
	Stage   string
	Message string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no usable data for %s: %s", e.Stage, e.Message)
}
