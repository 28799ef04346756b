package dicomdir

import (
	"iter"
	"slices"

	"github.com/caio-sobreiro/dicomdir/dicom"
)

// Entry is one directory record. It is created by a Dir and stays owned by it.
type Entry struct {
	dir       *Dir
	id        int
	dataSet   *dicom.Dataset
	typ       RecordType
	fileParts []string
	next      int
	child     int
	// ref is the single incoming link: an entry ID, dirRef or noEntry
	ref int
}

// ID returns the entry's stable position in its directory
func (e *Entry) ID() int {
	return e.id
}

// Dir returns the directory owning the entry
func (e *Entry) Dir() *Dir {
	return e.dir
}

// DataSet returns the record's dataset. It is never nil.
func (e *Entry) DataSet() *dicom.Dataset {
	return e.dataSet
}

// Type returns the record type fixed when the entry was created
func (e *Entry) Type() RecordType {
	return e.typ
}

// TypeString returns the defined term of the record type, "UNKNOWN" when the
// dataset named no known type.
func (e *Entry) TypeString() string {
	return e.typ.String()
}

// FileParts returns a copy of the Referenced File ID components. An empty
// result marks a structural record.
func (e *Entry) FileParts() []string {
	return slices.Clone(e.fileParts)
}

// SetFileParts replaces the Referenced File ID components
func (e *Entry) SetFileParts(parts []string) {
	if len(parts) == 0 {
		e.fileParts = nil
		return
	}
	e.fileParts = slices.Clone(parts)
}

// Next returns the next sibling, or nil
func (e *Entry) Next() *Entry {
	return e.dir.entry(e.next)
}

// FirstChild returns the first child, or nil
func (e *Entry) FirstChild() *Entry {
	return e.dir.entry(e.child)
}

// SetNext links next as the sibling following e. A nil next detaches the
// current sibling chain. The link is rejected when next belongs to another
// directory, already has an incoming link or is e or one of its ancestors.
func (e *Entry) SetNext(next *Entry) error {
	return e.dir.link("set next", e.id, &e.next, next)
}

// SetFirstChild links child as e's first child, with the same rules as SetNext
func (e *Entry) SetFirstChild(child *Entry) error {
	return e.dir.link("set first child", e.id, &e.child, child)
}

// AppendChild attaches child at the end of e's child chain
func (e *Entry) AppendChild(child *Entry) error {
	if tail := last(e.FirstChild()); tail != nil {
		return tail.SetNext(child)
	}
	return e.SetFirstChild(child)
}

// Children iterates e's child chain
func (e *Entry) Children() iter.Seq[*Entry] {
	return chain(e.FirstChild())
}

// Parent returns the record e's sibling chain hangs under, or nil for roots
// and detached entries.
func (e *Entry) Parent() *Entry {
	cur := e
	for cur.ref >= 0 {
		src := e.dir.entries[cur.ref]
		if src.child == cur.id {
			return src
		}
		cur = src
	}
	return nil
}

// IsAttached reports whether e is reachable from the directory's first root
func (e *Entry) IsAttached() bool {
	cur := e
	for cur.ref >= 0 {
		cur = e.dir.entries[cur.ref]
	}
	return cur.ref == dirRef
}

// Detach removes the single incoming link of e. The entry and its subtree stay
// owned by the directory and can be linked again.
func (e *Entry) Detach() {
	d := e.dir
	switch {
	case e.ref == dirRef:
		d.first = noEntry
	case e.ref >= 0:
		src := d.entries[e.ref]
		if src.next == e.id {
			src.next = noEntry
		} else {
			src.child = noEntry
		}
	}
	e.ref = noEntry
}
