package errors

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestMalformedRecordError(t *testing.T) {
	err := NewMalformedRecordError(3, 412, "next record offset does not resolve", nil)

	if !errors.Is(err, ErrMalformedRecord) {
		t.Error("Should match ErrMalformedRecord")
	}

	errMsg := err.Error()
	if !strings.Contains(errMsg, "record 3") {
		t.Errorf("Error message should name the record, got %q", errMsg)
	}
	if !strings.Contains(errMsg, "offset 412") {
		t.Errorf("Error message should include the offset, got %q", errMsg)
	}
}

func TestMalformedRecordError_WrapsCause(t *testing.T) {
	err := NewMalformedRecordError(0, 0, "linking", ErrCycle)

	if !errors.Is(err, ErrMalformedRecord) {
		t.Error("Should match ErrMalformedRecord")
	}
	if !errors.Is(err, ErrCycle) {
		t.Error("Should unwrap to ErrCycle")
	}
	if strings.Contains(err.Error(), "offset") {
		t.Errorf("Zero offset should be omitted, got %q", err.Error())
	}
}

func TestLinkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"Cycle", ErrCycle},
		{"Already linked", ErrAlreadyLinked},
		{"Foreign entry", ErrForeignEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewLinkError("set next", 1, 2, tt.err)

			if !errors.Is(err, tt.err) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.err)
			}

			var linkErr *LinkError
			if !errors.As(err, &linkErr) {
				t.Fatal("Should be a LinkError")
			}
			if linkErr.From != 1 || linkErr.To != 2 {
				t.Errorf("From/To = %d/%d, want 1/2", linkErr.From, linkErr.To)
			}
		})
	}
}

func TestFileReferenceError(t *testing.T) {
	parts := []string{"DICOM", "IMG001"}
	err := NewFileReferenceError(parts, "/media/DICOM/IMG001", fs.ErrNotExist)

	if !errors.Is(err, ErrFileReference) {
		t.Error("Should match ErrFileReference")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("Should unwrap to fs.ErrNotExist")
	}

	parts[0] = "CHANGED"
	if err.Parts[0] != "DICOM" {
		t.Error("Parts should be copied")
	}

	if !strings.Contains(err.Error(), `DICOM\IMG001`) {
		t.Errorf("Error message should contain the file ID, got %q", err.Error())
	}
}

func TestHierarchyError(t *testing.T) {
	err := NewHierarchyError(4, "SERIES", "", "must be a child of STUDY")

	if !errors.Is(err, ErrInvalidHierarchy) {
		t.Error("Should match ErrInvalidHierarchy")
	}
	if !strings.Contains(err.Error(), "under root") {
		t.Errorf("Empty parent should read as root, got %q", err.Error())
	}
}
