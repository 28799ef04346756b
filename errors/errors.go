// Package errors provides DICOM and DICOMDIR specific error types for better error handling
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrNotPart10           = errors.New("dicom: not a DICOM Part 10 file")
	ErrTruncated           = errors.New("dicom: truncated data")
	ErrNestingTooDeep      = errors.New("dicom: sequences nested too deep")
	ErrUnsupportedTransfer = errors.New("dicom: unsupported transfer syntax")
	ErrMalformedRecord     = errors.New("dicomdir: malformed directory record")
	ErrCycle               = errors.New("dicomdir: circular reference")
	ErrAlreadyLinked       = errors.New("dicomdir: entry already linked")
	ErrForeignEntry        = errors.New("dicomdir: entry belongs to another directory")
	ErrInvalidHierarchy    = errors.New("dicomdir: invalid record hierarchy")
	ErrFileReference       = errors.New("dicomdir: referenced file not found")
	ErrInvalidFileID       = errors.New("dicomdir: invalid file ID")
	ErrDirectoryNotFound   = errors.New("store: directory not found")
	ErrInvalidConfig       = errors.New("config: invalid configuration")
)

// MalformedRecordError reports a directory record that cannot be turned into an entry.
// Index is the record position in the flat record sequence (-1 when the record
// sequence as a whole is at fault), Offset its byte offset in the DICOMDIR file
// when known (0 otherwise).
type MalformedRecordError struct {
	Index  int
	Offset uint32
	Msg    string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	var b strings.Builder
	if e.Index < 0 {
		b.WriteString("malformed directory record sequence")
	} else {
		fmt.Fprintf(&b, "malformed directory record %d", e.Index)
	}
	if e.Offset != 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Is makes every MalformedRecordError match ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// NewMalformedRecordError creates a new malformed record error
func NewMalformedRecordError(index int, offset uint32, msg string, err error) *MalformedRecordError {
	return &MalformedRecordError{
		Index:  index,
		Offset: offset,
		Msg:    msg,
		Err:    err,
	}
}

// LinkError represents a rejected next/child link between two entries
type LinkError struct {
	Op   string
	From int
	To   int
	Err  error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s %d -> %d: %v", e.Op, e.From, e.To, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// NewLinkError creates a new link error
func NewLinkError(op string, from, to int, err error) *LinkError {
	return &LinkError{
		Op:   op,
		From: from,
		To:   to,
		Err:  err,
	}
}

// FileReferenceError represents a record whose referenced file cannot be resolved.
// It never invalidates the directory itself.
type FileReferenceError struct {
	Parts []string
	Path  string
	Err   error
}

func (e *FileReferenceError) Error() string {
	return fmt.Sprintf("file reference %s (%s): %v", strings.Join(e.Parts, `\`), e.Path, e.Err)
}

// Is makes every FileReferenceError match ErrFileReference.
func (e *FileReferenceError) Is(target error) bool {
	return target == ErrFileReference
}

func (e *FileReferenceError) Unwrap() error {
	return e.Err
}

// NewFileReferenceError creates a new file reference error
func NewFileReferenceError(parts []string, path string, err error) *FileReferenceError {
	return &FileReferenceError{
		Parts: append([]string(nil), parts...),
		Path:  path,
		Err:   err,
	}
}

// HierarchyError represents a record whose type does not fit its position in the tree
type HierarchyError struct {
	Index  int
	Type   string
	Parent string
	Msg    string
}

func (e *HierarchyError) Error() string {
	parent := e.Parent
	if parent == "" {
		parent = "root"
	}
	return fmt.Sprintf("record %d (%s under %s): %s", e.Index, e.Type, parent, e.Msg)
}

// Is makes every HierarchyError match ErrInvalidHierarchy.
func (e *HierarchyError) Is(target error) bool {
	return target == ErrInvalidHierarchy
}

// NewHierarchyError creates a new hierarchy error
func NewHierarchyError(index int, recordType, parent, msg string) *HierarchyError {
	return &HierarchyError{
		Index:  index,
		Type:   recordType,
		Parent: parent,
		Msg:    msg,
	}
}
