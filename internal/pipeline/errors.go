package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySheet        = errors.New("sheet has no data rows")
	ErrNoColumns         = errors.New("sheet has no columns")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoOutput          = errors.New("no record file could be processed")
)

// FileParseError is confined to one uploaded file: the file is skipped and
// the batch carries on.
type FileParseError struct {
	File string
	Err  error
}

func (e *FileParseError) Error() string {
	return fmt.Sprintf("file %q: %v", e.File, e.Err)
}

func (e *FileParseError) Unwrap() error {
	return e.Err
}

// MissingColumnError is returned by rendering steps that locate a column by
// its header text.
type MissingColumnError struct {
	Sheet  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("sheet %q has no %q column", e.Sheet, e.Column)
}
