// Package media connects directories to the files of a file-set: it resolves
// Referenced File IDs under a media root, reads referenced instances and scans
// a media root to build a directory.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caio-sobreiro/dicomdir/dicomdir"
	derrors "github.com/caio-sobreiro/dicomdir/errors"
)

// isoVersionSuffix is appended to file names by ISO 9660 mastering tools
const isoVersionSuffix = ";1"

// Resolve returns the path of the file referenced by parts under root. Each
// component is matched exactly first, then case-insensitively, since file-sets
// written on ISO 9660 media use upper case names. Components that could leave
// root are rejected. Failures are *errors.FileReferenceError.
func Resolve(root string, parts []string) (string, error) {
	if len(parts) == 0 {
		return "", derrors.NewFileReferenceError(parts, root, fmt.Errorf("%w: no components", derrors.ErrInvalidFileID))
	}

	path := root
	for _, part := range parts {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", derrors.NewFileReferenceError(parts, path,
				fmt.Errorf("%w: component %q", derrors.ErrInvalidFileID, part))
		}

		next := filepath.Join(path, part)
		if _, err := os.Lstat(next); err == nil {
			path = next
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return "", derrors.NewFileReferenceError(parts, next, os.ErrNotExist)
		}
		found := ""
		for _, entry := range entries {
			name := strings.TrimSuffix(entry.Name(), isoVersionSuffix)
			if strings.EqualFold(name, part) {
				found = entry.Name()
				break
			}
		}
		if found == "" {
			return "", derrors.NewFileReferenceError(parts, next, os.ErrNotExist)
		}
		path = filepath.Join(path, found)
	}
	return path, nil
}

// Open opens the file referenced by parts under root
func Open(root string, parts []string) (*os.File, error) {
	path, err := Resolve(root, parts)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, derrors.NewFileReferenceError(parts, path, err)
	}
	return f, nil
}

// CheckReferences resolves the file of every attached entry that has file parts.
// Unresolved references are returned; they never invalidate the directory. The
// returned error is only set when ctx is done.
func CheckReferences(ctx context.Context, dir *dicomdir.Dir, root string) ([]*derrors.FileReferenceError, error) {
	var missing []*derrors.FileReferenceError
	for e := range dir.Walk() {
		if err := ctx.Err(); err != nil {
			return missing, err
		}
		parts := e.FileParts()
		if len(parts) == 0 {
			continue
		}
		if _, err := Resolve(root, parts); err != nil {
			missing = append(missing, err.(*derrors.FileReferenceError))
		}
	}
	return missing, nil
}
