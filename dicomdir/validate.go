package dicomdir

import (
	"errors"

	derrors "github.com/caio-sobreiro/dicomdir/errors"
)

// Validate checks the attached tree against the record hierarchy of the Basic
// Directory: PATIENT records at the root, STUDY under PATIENT, SERIES under STUDY
// and instance records under SERIES. Instance records must reference a file and
// structural records must not. Every violation is reported, joined into one
// error whose parts are *errors.HierarchyError.
func (d *Dir) Validate() error {
	type frame struct {
		id     int
		parent int
	}

	var errs []error
	stack := []frame{}
	if d.first != noEntry {
		stack = append(stack, frame{d.first, noEntry})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e := d.entries[top.id]

		parentType := RecordUnknown
		parentName := ""
		if top.parent != noEntry {
			parentType = d.entries[top.parent].typ
			parentName = parentType.String()
		}

		if !e.typ.allowedUnder(parentType, top.parent == noEntry) {
			errs = append(errs, derrors.NewHierarchyError(e.id, e.typ.String(), parentName,
				"expected under "+e.typ.expectedParent()))
		}
		switch {
		case e.typ.ReferencesFile() && len(e.fileParts) == 0:
			errs = append(errs, derrors.NewHierarchyError(e.id, e.typ.String(), parentName,
				"record must reference a file"))
		case e.typ.info().structural && len(e.fileParts) > 0:
			errs = append(errs, derrors.NewHierarchyError(e.id, e.typ.String(), parentName,
				"structural record must not reference a file"))
		}

		if e.next != noEntry {
			stack = append(stack, frame{e.next, top.parent})
		}
		if e.child != noEntry {
			stack = append(stack, frame{e.child, e.id})
		}
	}
	return errors.Join(errs...)
}
