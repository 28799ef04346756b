package dicomdir

import (
	"fmt"

	derrors "github.com/caio-sobreiro/dicomdir/errors"
)

const (
	maxFileIDComponents = 8
	maxFileIDLength     = 8
)

// CheckFileID reports whether parts is a conformant Referenced File ID for
// interchange media: 1 to 8 components of 1 to 8 characters from A-Z, 0-9 and
// underscore. Directories accept any parts; this check is for writers that
// target the general purpose media profiles.
func CheckFileID(parts []string) error {
	if len(parts) == 0 {
		return fmt.Errorf("%w: no components", derrors.ErrInvalidFileID)
	}
	if len(parts) > maxFileIDComponents {
		return fmt.Errorf("%w: %d components, at most %d allowed",
			derrors.ErrInvalidFileID, len(parts), maxFileIDComponents)
	}
	for i, part := range parts {
		if part == "" || len(part) > maxFileIDLength {
			return fmt.Errorf("%w: component %d %q must have 1 to %d characters",
				derrors.ErrInvalidFileID, i, part, maxFileIDLength)
		}
		for _, c := range part {
			if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
				return fmt.Errorf("%w: component %d %q contains %q",
					derrors.ErrInvalidFileID, i, part, c)
			}
		}
	}
	return nil
}
