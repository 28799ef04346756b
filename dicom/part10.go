package dicom

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	derrors "github.com/caio-sobreiro/dicomdir/errors"
)

const (
	preambleLength = 128
	part10Prefix   = "DICM"
)

// File is a DICOM Part 10 file: File Meta Information plus the dataset.
//
// ItemOffsets holds, for every sequence item of Dataset, the byte position of its
// item tag counted from the first byte of the preamble. It is filled by
// ParsePart10 and by Encode.
type File struct {
	Meta        *Dataset
	Dataset     *Dataset
	ItemOffsets map[*Dataset]int64
}

// NewFile creates a Part 10 file for a dataset of the given SOP class and instance
func NewFile(sopClassUID, sopInstanceUID, transferSyntaxUID string, dataset *Dataset) *File {
	meta := NewDataset()
	meta.AddElement(MediaStorageSOPClassUID, VR_UI, sopClassUID)
	meta.AddElement(MediaStorageSOPInstanceUID, VR_UI, sopInstanceUID)
	meta.AddElement(TransferSyntaxUID, VR_UI, transferSyntaxUID)
	return &File{
		Meta:    meta,
		Dataset: dataset,
	}
}

// TransferSyntaxUID returns the transfer syntax named in the File Meta Information
func (f *File) TransferSyntaxUID() string {
	if f.Meta == nil {
		return ""
	}
	return f.Meta.GetString(TransferSyntaxUID)
}

// readFileMeta checks the preamble and reads the group 0002 elements. It returns
// the meta dataset and the position of the first dataset element.
func readFileMeta(data []byte) (*Dataset, int, error) {
	if len(data) < preambleLength+len(part10Prefix) {
		return nil, 0, fmt.Errorf("%w: data too short to be DICOM Part 10 (need at least 132 bytes, got %d)",
			derrors.ErrNotPart10, len(data))
	}

	// Check for DICM prefix at offset 128
	if string(data[preambleLength:preambleLength+len(part10Prefix)]) != part10Prefix {
		return nil, 0, fmt.Errorf("%w: missing DICM prefix at offset 128", derrors.ErrNotPart10)
	}

	// File Meta Information is always Explicit VR Little Endian
	dec := &decoder{data: data}
	meta := NewDataset()
	pos := preambleLength + len(part10Prefix)
	for pos+4 <= len(data) && dec.tagAt(pos).Group == 0x0002 {
		element, next, err := dec.readElement(pos)
		if err != nil {
			return nil, 0, fmt.Errorf("reading file meta information: %w", err)
		}
		meta.Elements[element.Tag] = element
		pos = next
	}
	return meta, pos, nil
}

// ParsePart10 parses a complete Part 10 file. The dataset is decoded with the
// transfer syntax named in the File Meta Information.
func ParsePart10(data []byte) (*File, error) {
	meta, pos, err := readFileMeta(data)
	if err != nil {
		return nil, err
	}

	transferSyntaxUID := meta.GetString(TransferSyntaxUID)
	implicit, err := isImplicitVR(transferSyntaxUID)
	if err != nil {
		return nil, err
	}

	dec := &decoder{
		data:     data,
		implicit: implicit,
		offsets:  make(map[*Dataset]int64),
	}
	dataset, _, err := dec.readDataset(pos, len(data), false)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	slog.Debug("Parsed DICOM Part 10 file",
		"transfer_syntax", transferSyntaxUID,
		"dataset_start_offset", pos,
		"elements", len(dataset.Elements))

	return &File{
		Meta:        meta,
		Dataset:     dataset,
		ItemOffsets: dec.offsets,
	}, nil
}

// Encode serializes the file with a zero preamble. The File Meta Information
// group length is recomputed and the File Meta Information Version is added when
// missing. ItemOffsets is replaced with the positions of the encoded items.
func (f *File) Encode() ([]byte, error) {
	meta := f.Meta.Clone()
	if meta == nil {
		meta = NewDataset()
	}
	meta.RemoveElement(FileMetaInformationGroupLength)
	if _, ok := meta.GetElement(FileMetaInformationVersion); !ok {
		meta.AddElement(FileMetaInformationVersion, VR_OB, []byte{0x00, 0x01})
	}
	if meta.GetString(TransferSyntaxUID) == "" {
		meta.AddElement(TransferSyntaxUID, VR_UI, TransferSyntaxExplicitVRLittleEndian)
	}

	implicit, err := isImplicitVR(meta.GetString(TransferSyntaxUID))
	if err != nil {
		return nil, err
	}

	metaBytes := meta.EncodeDataset()

	buf := make([]byte, preambleLength, preambleLength+len(part10Prefix)+12+len(metaBytes))
	buf = append(buf, part10Prefix...)
	// (0002,0000) UL group length
	buf = binary.LittleEndian.AppendUint16(buf, FileMetaInformationGroupLength.Group)
	buf = binary.LittleEndian.AppendUint16(buf, FileMetaInformationGroupLength.Element)
	buf = append(buf, VR_UL...)
	buf = binary.LittleEndian.AppendUint16(buf, 4)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(metaBytes)))
	buf = append(buf, metaBytes...)

	enc := &encoder{
		buf:      buf,
		implicit: implicit,
		offsets:  make(map[*Dataset]int64),
	}
	enc.writeDataset(f.Dataset)
	f.ItemOffsets = enc.offsets
	return enc.buf, nil
}

// StripPart10Header removes the DICOM Part 10 preamble and File Meta Information
// to extract just the dataset.
//
// DICOM Part 10 files contain:
//   - 128 byte preamble
//   - 4 byte "DICM" prefix
//   - File Meta Information elements (group 0x0002)
//   - Dataset (the actual DICOM data)
func StripPart10Header(data []byte) ([]byte, error) {
	meta, offset, err := readFileMeta(data)
	if err != nil {
		return nil, err
	}

	if transferSyntaxUID := meta.GetString(TransferSyntaxUID); transferSyntaxUID != "" {
		slog.Debug("Found Transfer Syntax UID in File Meta Information",
			"transfer_syntax", transferSyntaxUID,
			"dataset_start_offset", offset)
	}

	if offset >= len(data) {
		return nil, fmt.Errorf("failed to find dataset after File Meta Information")
	}

	return data[offset:], nil
}

// HasPart10Header checks if the data starts with a DICOM Part 10 header.
//
// Returns true if the data contains the 128-byte preamble followed by "DICM".
func HasPart10Header(data []byte) bool {
	if len(data) < preambleLength+len(part10Prefix) {
		return false
	}
	return string(data[preambleLength:preambleLength+len(part10Prefix)]) == part10Prefix
}
