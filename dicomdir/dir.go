// Package dicomdir implements the DICOM Basic Directory (DICOMDIR): a tree of
// directory records, each carrying a DICOM dataset and optionally the File ID
// of a referenced instance on the same media.
//
// A Dir owns every Entry it creates. Entries are linked through two fields,
// the next sibling and the first child, and each entry has at most one incoming
// link. Link setters reject links that would give an entry a second parent or
// close a cycle, so a Dir is always a forest.
package dicomdir

import (
	"iter"
	"log/slog"

	"github.com/caio-sobreiro/dicomdir/dicom"
	derrors "github.com/caio-sobreiro/dicomdir/errors"
	"github.com/caio-sobreiro/dicomdir/types"
)

const (
	noEntry = -1
	// dirRef marks an entry referenced by the directory's first root slot
	dirRef = -2
)

// Option configures a Dir and the decoding of DICOMDIR files
type Option func(*options)

type options struct {
	logger *slog.Logger
	strict bool
}

// WithLogger sets the logger used while decoding and encoding
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStrictHierarchy makes Decode and Rebuild fail when the tree does not pass Validate
func WithStrictHierarchy() Option {
	return func(o *options) {
		o.strict = true
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Dir is a DICOM Basic Directory: an arena of entries plus the file-set level
// attributes of the DICOMDIR file.
//
// A Dir is not safe for concurrent mutation. Concurrent traversals of a Dir that
// is not being modified are safe.
type Dir struct {
	entries     []*Entry
	first       int
	header      *dicom.Dataset
	instanceUID string
	logger      *slog.Logger
}

// New creates an empty directory with a fresh Media Storage SOP Instance UID
func New(opts ...Option) *Dir {
	o := newOptions(opts)
	header := dicom.NewDataset()
	header.AddElement(dicom.FileSetID, dicom.VR_CS, "")
	return &Dir{
		first:       noEntry,
		header:      header,
		instanceUID: types.NewUID(),
		logger:      o.logger,
	}
}

func (o options) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}

func (d *Dir) log() *slog.Logger {
	return options{logger: d.logger}.log()
}

// Header returns the file-set level attributes of the DICOMDIR (File-set ID,
// descriptor file, character set of the descriptor). Record offsets and the
// record sequence are managed by the codec and never appear here.
func (d *Dir) Header() *dicom.Dataset {
	return d.header
}

// SetHeader replaces the file-set level attributes with a copy of ds. Record
// offsets and the record sequence are dropped.
func (d *Dir) SetHeader(ds *dicom.Dataset) {
	header := ds.Clone()
	if header == nil {
		header = dicom.NewDataset()
	}
	for _, tag := range headerTags {
		header.RemoveElement(tag)
	}
	d.header = header
}

// FileSetID returns the File-set ID (0004,1130)
func (d *Dir) FileSetID() string {
	return d.header.GetString(dicom.FileSetID)
}

// SetFileSetID sets the File-set ID (0004,1130)
func (d *Dir) SetFileSetID(id string) {
	d.header.AddElement(dicom.FileSetID, dicom.VR_CS, id)
}

// InstanceUID returns the Media Storage SOP Instance UID written to the file meta information
func (d *Dir) InstanceUID() string {
	return d.instanceUID
}

// SetInstanceUID sets the Media Storage SOP Instance UID
func (d *Dir) SetInstanceUID(uid string) {
	d.instanceUID = uid
}

// NewEntry creates a detached entry of the given type with an empty dataset
func (d *Dir) NewEntry(t RecordType) *Entry {
	ds := dicom.NewDataset()
	if t != RecordUnknown {
		ds.AddElement(dicom.DirectoryRecordType, dicom.VR_CS, t.String())
	}
	return d.NewEntryFromDataSet(ds)
}

// NewEntryFromDataSet creates a detached entry owning ds. The record type is
// taken from (0004,1430) and the file parts from (0004,1500). Link and in-use
// attributes are dropped: the tree structure lives in the entries.
func (d *Dir) NewEntryFromDataSet(ds *dicom.Dataset) *Entry {
	if ds == nil {
		ds = dicom.NewDataset()
	}
	e := &Entry{
		dir:     d,
		id:      len(d.entries),
		dataSet: ds,
		typ:     ParseRecordType(ds.GetString(dicom.DirectoryRecordType)),
		next:    noEntry,
		child:   noEntry,
		ref:     noEntry,
	}
	if parts := ds.GetStrings(dicom.ReferencedFileID); len(parts) > 1 || (len(parts) == 1 && parts[0] != "") {
		e.SetFileParts(parts)
	}
	for _, tag := range structuralTags {
		ds.RemoveElement(tag)
	}
	d.entries = append(d.entries, e)
	return e
}

// structuralTags are the record attributes derived from the tree on encoding
var structuralTags = []dicom.Tag{
	dicom.OffsetOfNextRecord,
	dicom.RecordInUseFlag,
	dicom.OffsetOfLowerLevelRecords,
	dicom.ReferencedFileID,
}

// Len returns the number of entries owned by the directory, attached or not
func (d *Dir) Len() int {
	return len(d.entries)
}

// Entry returns the entry with the given ID, or nil
func (d *Dir) Entry(id int) *Entry {
	if id < 0 || id >= len(d.entries) {
		return nil
	}
	return d.entries[id]
}

func (d *Dir) entry(id int) *Entry {
	if id == noEntry {
		return nil
	}
	return d.entries[id]
}

// FirstRoot returns the first root record, or nil for an empty directory
func (d *Dir) FirstRoot() *Entry {
	return d.entry(d.first)
}

// SetFirstRoot makes e the first root record. A nil e clears the slot, which
// detaches every root.
func (d *Dir) SetFirstRoot(e *Entry) error {
	return d.link("set first root", dirRef, &d.first, e)
}

// Roots iterates the root records
func (d *Dir) Roots() iter.Seq[*Entry] {
	return chain(d.FirstRoot())
}

// LastRoot returns the last record of the root chain, or nil
func (d *Dir) LastRoot() *Entry {
	return last(d.FirstRoot())
}

// AppendRoot attaches e at the end of the root chain
func (d *Dir) AppendRoot(e *Entry) error {
	if tail := d.LastRoot(); tail != nil {
		return tail.SetNext(e)
	}
	return d.SetFirstRoot(e)
}

// link points slot, owned by from (an entry ID or dirRef), at target.
func (d *Dir) link(op string, from int, slot *int, target *Entry) error {
	if target == nil {
		if *slot != noEntry {
			d.entries[*slot].ref = noEntry
			*slot = noEntry
		}
		return nil
	}
	if target.dir != d {
		return derrors.NewLinkError(op, from, target.id, derrors.ErrForeignEntry)
	}
	if *slot == target.id {
		return nil
	}
	if target.ref != noEntry {
		return derrors.NewLinkError(op, from, target.id, derrors.ErrAlreadyLinked)
	}
	// target must not be from or one of its ancestors. An unlinked target
	// without links of its own is nobody's ancestor.
	if target.next == noEntry && target.child == noEntry {
		if from == target.id {
			return derrors.NewLinkError(op, from, target.id, derrors.ErrCycle)
		}
	} else {
		for cur := from; cur >= 0; cur = d.entries[cur].ref {
			if cur == target.id {
				return derrors.NewLinkError(op, from, target.id, derrors.ErrCycle)
			}
		}
	}

	if *slot != noEntry {
		d.entries[*slot].ref = noEntry
	}
	*slot = target.id
	target.ref = from
	return nil
}

// chain iterates first and its next siblings
func chain(first *Entry) iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for e := first; e != nil; e = e.Next() {
			if !yield(e) {
				return
			}
		}
	}
}

func last(first *Entry) *Entry {
	var tail *Entry
	for e := range chain(first) {
		tail = e
	}
	return tail
}
