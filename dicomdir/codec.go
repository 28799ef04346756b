package dicomdir

import (
	"fmt"
	"io"
	"os"

	"github.com/caio-sobreiro/dicomdir/dicom"
	derrors "github.com/caio-sobreiro/dicomdir/errors"
	"github.com/caio-sobreiro/dicomdir/types"
)

const (
	// ImplementationClassUID identifies this library in the File Meta Information
	ImplementationClassUID = "2.25.140229173062317420339120787526612376402"
	// ImplementationVersionName accompanies ImplementationClassUID
	ImplementationVersionName = "DICOMDIR_GO_1"

	recordInUse = 0xFFFF
)

// headerTags are the header attributes computed by the codec
var headerTags = []dicom.Tag{
	dicom.OffsetOfFirstRootRecord,
	dicom.OffsetOfLastRootRecord,
	dicom.FileSetConsistencyFlag,
	dicom.DirectoryRecordSequence,
}

// Bytes encodes the directory as a DICOMDIR Part 10 file in Explicit VR Little
// Endian. Only entries reachable from the first root are written.
func (d *Dir) Bytes() ([]byte, error) {
	records := Flatten(d)

	items := make([]*dicom.Dataset, len(records))
	for i, r := range records {
		item := r.DataSet
		item.AddElement(dicom.OffsetOfNextRecord, dicom.VR_UL, uint32(0))
		item.AddElement(dicom.RecordInUseFlag, dicom.VR_US, uint16(recordInUse))
		item.AddElement(dicom.OffsetOfLowerLevelRecords, dicom.VR_UL, uint32(0))
		if len(r.FileParts) > 0 {
			item.AddElement(dicom.ReferencedFileID, dicom.VR_CS, r.FileParts)
		} else {
			item.RemoveElement(dicom.ReferencedFileID)
		}
		items[i] = item
	}

	ds := d.header.Clone()
	ds.AddElement(dicom.OffsetOfFirstRootRecord, dicom.VR_UL, uint32(0))
	ds.AddElement(dicom.OffsetOfLastRootRecord, dicom.VR_UL, uint32(0))
	ds.AddElement(dicom.FileSetConsistencyFlag, dicom.VR_US, uint16(0))
	ds.AddElement(dicom.DirectoryRecordSequence, dicom.VR_SQ, items)

	f := dicom.NewFile(types.MediaStorageDirectoryStorage, d.instanceUID, types.ExplicitVRLittleEndian, ds)
	f.Meta.AddElement(dicom.ImplementationClassUID, dicom.VR_UI, ImplementationClassUID)
	f.Meta.AddElement(dicom.ImplementationVersionName, dicom.VR_SH, ImplementationVersionName)

	// First pass places the items. Offsets are fixed size UL values, so the
	// second pass keeps every item where the first one put it.
	if _, err := f.Encode(); err != nil {
		return nil, fmt.Errorf("encoding DICOMDIR: %w", err)
	}

	offsetOf := func(index int) uint32 {
		if index == NoIndex {
			return 0
		}
		return uint32(f.ItemOffsets[items[index]])
	}
	for i, r := range records {
		items[i].AddElement(dicom.OffsetOfNextRecord, dicom.VR_UL, offsetOf(r.Next))
		items[i].AddElement(dicom.OffsetOfLowerLevelRecords, dicom.VR_UL, offsetOf(r.Child))
	}
	if len(records) > 0 {
		lastRoot := 0
		for records[lastRoot].Next != NoIndex {
			lastRoot = records[lastRoot].Next
		}
		ds.AddElement(dicom.OffsetOfFirstRootRecord, dicom.VR_UL, offsetOf(0))
		ds.AddElement(dicom.OffsetOfLastRootRecord, dicom.VR_UL, offsetOf(lastRoot))
	}

	data, err := f.Encode()
	if err != nil {
		return nil, fmt.Errorf("encoding DICOMDIR: %w", err)
	}

	d.log().Debug("Encoded DICOMDIR",
		"file_set_id", d.FileSetID(),
		"records", len(records),
		"bytes", len(data))

	return data, nil
}

// WriteTo writes the encoded directory to w
func (d *Dir) WriteTo(w io.Writer) (int64, error) {
	data, err := d.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// WriteFile encodes the directory into the file at path
func (d *Dir) WriteFile(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing DICOMDIR %s: %w", path, err)
	}
	return nil
}

// Decode reads a DICOMDIR Part 10 file. Record offsets are resolved against the
// items of the Directory Record Sequence; an offset that names no record, a
// record linked twice or a cycle fails with a *errors.MalformedRecordError and
// no directory is returned.
func Decode(data []byte, opts ...Option) (*Dir, error) {
	o := newOptions(opts)

	f, err := dicom.ParsePart10(data)
	if err != nil {
		return nil, fmt.Errorf("decoding DICOMDIR: %w", err)
	}

	items, ok := f.Dataset.GetSequence(dicom.DirectoryRecordSequence)
	if !ok {
		return nil, derrors.NewMalformedRecordError(-1, 0, "missing directory record sequence", nil)
	}

	index := make(map[uint32]int, len(items))
	offsets := make([]uint32, len(items))
	for i, item := range items {
		offsets[i] = uint32(f.ItemOffsets[item])
		index[offsets[i]] = i
	}

	resolve := func(ds *dicom.Dataset, tag dicom.Tag) (int, bool) {
		offset, ok := ds.GetUint32(tag)
		if !ok || offset == 0 {
			return NoIndex, true
		}
		i, found := index[offset]
		return i, found
	}

	records := make([]FlatRecord, len(items))
	for i, item := range items {
		next, ok := resolve(item, dicom.OffsetOfNextRecord)
		if !ok {
			offset, _ := item.GetUint32(dicom.OffsetOfNextRecord)
			return nil, derrors.NewMalformedRecordError(i, offsets[i],
				fmt.Sprintf("next record offset %d does not point to a record", offset), nil)
		}
		child, ok := resolve(item, dicom.OffsetOfLowerLevelRecords)
		if !ok {
			offset, _ := item.GetUint32(dicom.OffsetOfLowerLevelRecords)
			return nil, derrors.NewMalformedRecordError(i, offsets[i],
				fmt.Sprintf("lower level record offset %d does not point to a record", offset), nil)
		}
		if flag, ok := item.GetUint16(dicom.RecordInUseFlag); ok && flag == 0 {
			o.log().Debug("Directory record marked inactive",
				"record", i,
				"offset", offsets[i])
		}
		records[i] = FlatRecord{
			DataSet: item,
			Next:    next,
			Child:   child,
		}
	}

	firstRoot, ok := resolve(f.Dataset, dicom.OffsetOfFirstRootRecord)
	if !ok {
		offset, _ := f.Dataset.GetUint32(dicom.OffsetOfFirstRootRecord)
		return nil, derrors.NewMalformedRecordError(-1, offset, "first root record offset does not point to a record", nil)
	}

	d, err := rebuild(records, offsets, firstRoot, o)
	if err != nil {
		return nil, err
	}

	d.SetHeader(f.Dataset)
	if uid := f.Meta.GetString(dicom.MediaStorageSOPInstanceUID); uid != "" {
		d.instanceUID = uid
	}

	d.log().Debug("Decoded DICOMDIR",
		"file_set_id", d.FileSetID(),
		"records", len(records),
		"transfer_syntax", f.TransferSyntaxUID())

	return d, nil
}

// ReadFile decodes the DICOMDIR file at path
func ReadFile(path string, opts ...Option) (*Dir, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading DICOMDIR %s: %w", path, err)
	}
	return Decode(data, opts...)
}
