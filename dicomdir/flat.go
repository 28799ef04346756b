package dicomdir

import (
	"fmt"
	"slices"

	"github.com/caio-sobreiro/dicomdir/dicom"
	derrors "github.com/caio-sobreiro/dicomdir/errors"
)

// NoIndex marks an absent link in a FlatRecord
const NoIndex = -1

// FlatRecord is one directory record of the flat, index-linked form of a tree.
// Next and Child are indices into the record slice, or NoIndex.
type FlatRecord struct {
	DataSet   *dicom.Dataset
	FileParts []string
	Next      int
	Child     int
}

// Flatten lists the attached entries of d in pre-order. Record 0 is the first
// root. Datasets are copied and carry the entry's record type; an unknown
// record keeps its original term, or is written as UNKNOWN when it has none.
func Flatten(d *Dir) []FlatRecord {
	index := make(map[int]int, len(d.entries))
	var order []*Entry
	for e := range d.Walk() {
		index[e.id] = len(order)
		order = append(order, e)
	}

	lookup := func(id int) int {
		if id == noEntry {
			return NoIndex
		}
		return index[id]
	}

	records := make([]FlatRecord, len(order))
	for i, e := range order {
		ds := e.dataSet.Clone()
		if _, ok := ds.GetElement(dicom.DirectoryRecordType); !ok || e.typ != RecordUnknown {
			ds.AddElement(dicom.DirectoryRecordType, dicom.VR_CS, e.typ.String())
		}
		records[i] = FlatRecord{
			DataSet:   ds,
			FileParts: slices.Clone(e.fileParts),
			Next:      lookup(e.next),
			Child:     lookup(e.child),
		}
	}
	return records
}

// Rebuild reconstructs a directory from flat records. Records that no other
// record links to form the root chain in record order. A record without a
// Directory Record Type, a link index out of range, a record linked twice or a
// cycle fails the whole rebuild with a *errors.MalformedRecordError.
func Rebuild(records []FlatRecord, opts ...Option) (*Dir, error) {
	return rebuild(records, nil, NoIndex, newOptions(opts))
}

// rebuild links records and sets up the root chain. offsets, when set, holds
// the byte offset of every record for error reports. With an explicit firstRoot
// records unreachable from it stay detached; with NoIndex every unreferenced
// record is chained as a root.
func rebuild(records []FlatRecord, offsets []uint32, firstRoot int, o options) (*Dir, error) {
	d := New(WithLogger(o.logger))

	offsetOf := func(i int) uint32 {
		if offsets == nil {
			return 0
		}
		return offsets[i]
	}

	for i, r := range records {
		ds := r.DataSet.Clone()
		if ds == nil {
			return nil, derrors.NewMalformedRecordError(i, offsetOf(i), "record has no dataset", nil)
		}
		if _, ok := ds.GetElement(dicom.DirectoryRecordType); !ok {
			return nil, derrors.NewMalformedRecordError(i, offsetOf(i), "missing directory record type", nil)
		}
		e := d.NewEntryFromDataSet(ds)
		if r.FileParts != nil {
			e.SetFileParts(r.FileParts)
		}
	}

	// Links are made last record first: in pre-order a record's own incoming
	// link is not set yet, which keeps the cycle check short.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		e := d.entries[i]
		for _, l := range []struct {
			name   string
			target int
			set    func(*Entry) error
		}{
			{"next", r.Next, e.SetNext},
			{"child", r.Child, e.SetFirstChild},
		} {
			if l.target == NoIndex {
				continue
			}
			if l.target < 0 || l.target >= len(records) {
				return nil, derrors.NewMalformedRecordError(i, offsetOf(i),
					fmt.Sprintf("%s record index %d out of range", l.name, l.target), nil)
			}
			if err := l.set(d.entries[l.target]); err != nil {
				return nil, derrors.NewMalformedRecordError(i, offsetOf(i), "linking "+l.name+" record", err)
			}
		}
	}

	if firstRoot != NoIndex {
		if err := d.SetFirstRoot(d.entries[firstRoot]); err != nil {
			return nil, derrors.NewMalformedRecordError(firstRoot, offsetOf(firstRoot), "first root record", err)
		}
	} else if err := d.chainRoots(offsetOf); err != nil {
		return nil, err
	}

	if detached := d.countDetached(); detached > 0 {
		d.log().Debug("Directory records not reachable from the root chain",
			"records", len(records),
			"detached", detached)
	}

	if o.strict {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// chainRoots links every unreferenced entry into the root chain, keeping the
// entry order. Each root brings along the sibling chain that follows it.
func (d *Dir) chainRoots(offsetOf func(int) uint32) error {
	var heads []*Entry
	for _, e := range d.entries {
		if e.ref == noEntry {
			heads = append(heads, e)
		}
	}
	if len(heads) == 0 {
		return nil
	}

	for k := len(heads) - 1; k > 0; k-- {
		e := heads[k]
		if err := last(heads[k-1]).SetNext(e); err != nil {
			return derrors.NewMalformedRecordError(e.id, offsetOf(e.id), "root record", err)
		}
	}
	if err := d.SetFirstRoot(heads[0]); err != nil {
		return derrors.NewMalformedRecordError(heads[0].id, offsetOf(heads[0].id), "first root record", err)
	}
	return nil
}

// countDetached counts root entries of detached subtrees
func (d *Dir) countDetached() int {
	n := 0
	for _, e := range d.entries {
		if e.ref == noEntry {
			n++
		}
	}
	return n
}
