package dicom

import (
	"encoding/binary"
	"errors"
	"testing"

	derrors "github.com/caio-sobreiro/dicomdir/errors"
)

// shortElement builds an Explicit VR element with a 2-byte length
func shortElement(tag Tag, vr string, value []byte) []byte {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint16(data[0:2], tag.Group)
	binary.LittleEndian.PutUint16(data[2:4], tag.Element)
	copy(data[4:6], vr)
	binary.LittleEndian.PutUint16(data[6:8], uint16(len(value)))
	return append(data, value...)
}

func TestTag_String(t *testing.T) {
	tests := []struct {
		tag      Tag
		expected string
	}{
		{Tag{0x0010, 0x0010}, "(0010,0010)"},
		{DirectoryRecordSequence, "(0004,1220)"},
		{Item, "(fffe,e000)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := tt.tag.String(); result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestDataset_Getters(t *testing.T) {
	ds := NewDataset()
	ds.AddElement(PatientName, VR_PN, "  DOE^JOHN  ")
	ds.AddElement(ReferencedFileID, VR_CS, `DICOM\IMG001`)
	ds.AddElement(RecordInUseFlag, VR_US, uint16(0xFFFF))
	ds.AddElement(OffsetOfNextRecord, VR_UL, []uint32{412, 0})
	ds.AddElement(DirectoryRecordSequence, VR_SQ, []*Dataset{NewDataset()})

	if got := ds.GetString(PatientName); got != "DOE^JOHN" {
		t.Errorf("GetString() = %q, want DOE^JOHN", got)
	}

	parts := ds.GetStrings(ReferencedFileID)
	if len(parts) != 2 || parts[0] != "DICOM" || parts[1] != "IMG001" {
		t.Errorf("GetStrings() = %v", parts)
	}

	if v, ok := ds.GetUint16(RecordInUseFlag); !ok || v != 0xFFFF {
		t.Errorf("GetUint16() = %v, %v", v, ok)
	}

	if v, ok := ds.GetUint32(OffsetOfNextRecord); !ok || v != 412 {
		t.Errorf("GetUint32() = %v, %v", v, ok)
	}

	if _, ok := ds.GetUint32(PatientID); ok {
		t.Error("GetUint32() should fail for a missing tag")
	}

	items, ok := ds.GetSequence(DirectoryRecordSequence)
	if !ok || len(items) != 1 {
		t.Errorf("GetSequence() = %v, %v", items, ok)
	}

	if _, ok := ds.GetSequence(PatientName); ok {
		t.Error("GetSequence() should fail for a text element")
	}

	if !ds.RemoveElement(PatientName) || ds.RemoveElement(PatientName) {
		t.Error("RemoveElement() should report presence once")
	}
}

func TestParseDataset(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		expectedLen int
		checks      func(t *testing.T, ds *Dataset)
	}{
		{
			name:        "Empty dataset",
			data:        []byte{},
			expectedLen: 0,
		},
		{
			name: "Text elements",
			data: append(
				shortElement(PatientName, VR_PN, []byte("DOE^JOHN")),
				shortElement(PatientID, VR_LO, []byte("12345 "))...),
			expectedLen: 2,
			checks: func(t *testing.T, ds *Dataset) {
				if v := ds.GetString(PatientName); v != "DOE^JOHN" {
					t.Errorf("Expected DOE^JOHN, got %s", v)
				}
				if v := ds.GetString(PatientID); v != "12345" {
					t.Errorf("Expected 12345, got %s", v)
				}
			},
		},
		{
			name:        "Odd length with padding",
			data:        append(shortElement(PatientName, VR_PN, []byte("JOHNSON")), 0x20),
			expectedLen: 1,
			checks: func(t *testing.T, ds *Dataset) {
				if v := ds.GetString(PatientName); v != "JOHNSON" {
					t.Errorf("Expected JOHNSON, got %s", v)
				}
			},
		},
		{
			name: "Numeric elements",
			data: append(
				shortElement(OffsetOfNextRecord, VR_UL, []byte{0x9c, 0x01, 0x00, 0x00}),
				shortElement(RecordInUseFlag, VR_US, []byte{0xff, 0xff})...),
			expectedLen: 2,
			checks: func(t *testing.T, ds *Dataset) {
				if v, _ := ds.GetUint32(OffsetOfNextRecord); v != 412 {
					t.Errorf("Expected 412, got %d", v)
				}
				if v, _ := ds.GetUint16(RecordInUseFlag); v != 0xFFFF {
					t.Errorf("Expected 0xFFFF, got %#x", v)
				}
			},
		},
		{
			name: "Undefined length sequence",
			data: func() []byte {
				data := []byte{0x04, 0x00, 0x20, 0x12, 'S', 'Q', 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}
				data = append(data, 0xfe, 0xff, 0x00, 0xe0, 0xff, 0xff, 0xff, 0xff)
				data = append(data, shortElement(DirectoryRecordType, VR_CS, []byte("PATIENT "))...)
				data = append(data, 0xfe, 0xff, 0x0d, 0xe0, 0x00, 0x00, 0x00, 0x00)
				data = append(data, 0xfe, 0xff, 0xdd, 0xe0, 0x00, 0x00, 0x00, 0x00)
				return append(data, shortElement(PatientID, VR_LO, []byte("42"))...)
			}(),
			expectedLen: 2,
			checks: func(t *testing.T, ds *Dataset) {
				items, ok := ds.GetSequence(DirectoryRecordSequence)
				if !ok || len(items) != 1 {
					t.Fatalf("Expected one item, got %v", items)
				}
				if v := items[0].GetString(DirectoryRecordType); v != "PATIENT" {
					t.Errorf("Expected PATIENT, got %s", v)
				}
				if v := ds.GetString(PatientID); v != "42" {
					t.Errorf("Expected 42, got %s", v)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ParseDataset(tt.data)
			if err != nil {
				t.Fatalf("ParseDataset() error = %v", err)
			}

			if len(ds.Elements) != tt.expectedLen {
				t.Errorf("Expected %d elements, got %d", tt.expectedLen, len(ds.Elements))
			}

			if tt.checks != nil {
				tt.checks(t, ds)
			}
		})
	}
}

func TestParseDataset_Truncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Short header", []byte{0x10, 0x00, 0x10}},
		{"Value past end", shortElement(PatientName, VR_PN, []byte("DOE^JOHN"))[:12]},
		{"Unterminated sequence", []byte{0x04, 0x00, 0x20, 0x12, 'S', 'Q', 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}},
		{"Item longer than sequence", []byte{
			0x04, 0x00, 0x20, 0x12, 'S', 'Q', 0x00, 0x00, 0x08, 0x00, 0x00, 0x00,
			0xfe, 0xff, 0x00, 0xe0, 0x10, 0x00, 0x00, 0x00,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDataset(tt.data)
			if !errors.Is(err, derrors.ErrTruncated) {
				t.Errorf("ParseDataset() error = %v, want ErrTruncated", err)
			}
		})
	}
}

func TestParseDataset_NestingTooDeep(t *testing.T) {
	level := []byte{
		0x04, 0x00, 0x20, 0x12, 'S', 'Q', 0x00, 0x00, 0xff, 0xff, 0xff, 0xff,
		0xfe, 0xff, 0x00, 0xe0, 0xff, 0xff, 0xff, 0xff,
	}
	var data []byte
	for i := 0; i < 1000; i++ {
		data = append(data, level...)
	}

	_, err := ParseDataset(data)
	if !errors.Is(err, derrors.ErrNestingTooDeep) {
		t.Errorf("ParseDataset() error = %v, want ErrNestingTooDeep", err)
	}
}

func TestDataset_EncodeDataset(t *testing.T) {
	ds := NewDataset()
	ds.AddElement(StudyInstanceUID, VR_UI, "1.2.3")
	ds.AddElement(PatientName, VR_PN, "JOHNSON")

	data := ds.EncodeDataset()

	// First tag is the smallest
	group := binary.LittleEndian.Uint16(data[0:2])
	element := binary.LittleEndian.Uint16(data[2:4])
	if group != 0x0010 || element != 0x0010 {
		t.Errorf("First tag should be (0010,0010), got (%04x,%04x)", group, element)
	}

	// Odd text values are space padded
	if length := binary.LittleEndian.Uint16(data[6:8]); length != 8 {
		t.Errorf("Expected padded length 8, got %d", length)
	}
	if data[15] != 0x20 {
		t.Errorf("Expected space padding, got %#x", data[15])
	}

	// Odd UIDs are null padded
	if data[len(data)-1] != 0x00 {
		t.Errorf("Expected null padding, got %#x", data[len(data)-1])
	}

	if len(NewDataset().EncodeDataset()) != 0 {
		t.Error("Empty dataset should encode to no bytes")
	}
}

func TestDataset_RoundTrip(t *testing.T) {
	record := NewDataset()
	record.AddElement(OffsetOfNextRecord, VR_UL, uint32(0))
	record.AddElement(RecordInUseFlag, VR_US, uint16(0xFFFF))
	record.AddElement(DirectoryRecordType, VR_CS, "IMAGE")
	record.AddElement(ReferencedFileID, VR_CS, []string{"DICOM", "IMG001"})

	original := NewDataset()
	original.AddElement(FileSetID, VR_CS, "EXAMPLE")
	original.AddElement(DirectoryRecordSequence, VR_SQ, []*Dataset{record, NewDataset()})
	original.AddElement(PatientName, VR_PN, "DOE^JOHN")

	for _, ts := range []string{TransferSyntaxExplicitVRLittleEndian, TransferSyntaxImplicitVRLittleEndian} {
		t.Run(ts, func(t *testing.T) {
			encoded, err := EncodeDatasetWithTransferSyntax(original, ts)
			if err != nil {
				t.Fatalf("EncodeDatasetWithTransferSyntax() error = %v", err)
			}

			parsed, err := ParseDatasetWithTransferSyntax(encoded, ts)
			if err != nil {
				t.Fatalf("ParseDatasetWithTransferSyntax() error = %v", err)
			}

			if !parsed.Equal(original) {
				t.Error("Round trip changed the dataset")
			}

			items, _ := parsed.GetSequence(DirectoryRecordSequence)
			if len(items) != 2 {
				t.Fatalf("Expected 2 items, got %d", len(items))
			}
			if parts := items[0].GetStrings(ReferencedFileID); len(parts) != 2 || parts[1] != "IMG001" {
				t.Errorf("Expected [DICOM IMG001], got %v", parts)
			}
			if len(items[1].Elements) != 0 {
				t.Errorf("Expected empty item, got %d elements", len(items[1].Elements))
			}
		})
	}
}

func TestTransferSyntax_Unsupported(t *testing.T) {
	_, err := EncodeDatasetWithTransferSyntax(NewDataset(), "1.2.840.10008.1.2.2")
	if !errors.Is(err, derrors.ErrUnsupportedTransfer) {
		t.Errorf("EncodeDatasetWithTransferSyntax() error = %v", err)
	}

	_, err = ParseDatasetWithTransferSyntax(nil, "1.2.840.10008.1.2.1.99")
	if !errors.Is(err, derrors.ErrUnsupportedTransfer) {
		t.Errorf("ParseDatasetWithTransferSyntax() error = %v", err)
	}
}

func TestDataset_Clone(t *testing.T) {
	item := NewDataset()
	item.AddElement(DirectoryRecordType, VR_CS, "PATIENT")

	original := NewDataset()
	original.AddElement(DirectoryRecordSequence, VR_SQ, []*Dataset{item})
	original.AddElement(ReferencedFileID, VR_CS, []string{"A", "B"})

	clone := original.Clone()
	if !clone.Equal(original) {
		t.Fatal("Clone should equal the original")
	}

	item.AddElement(DirectoryRecordType, VR_CS, "STUDY")
	original.GetStrings(ReferencedFileID)[0] = "Z"

	items, _ := clone.GetSequence(DirectoryRecordSequence)
	if v := items[0].GetString(DirectoryRecordType); v != "PATIENT" {
		t.Errorf("Clone shares sequence items, got %s", v)
	}
	if v := clone.GetStrings(ReferencedFileID)[0]; v != "A" {
		t.Errorf("Clone shares string values, got %s", v)
	}
	if clone.Equal(original) {
		t.Error("Clone should differ after mutating the original")
	}
}

func TestDetermineVR(t *testing.T) {
	tests := []struct {
		name     string
		tag      Tag
		expected string
	}{
		{"Patient Name", PatientName, VR_PN},
		{"Study Instance UID", StudyInstanceUID, VR_UI},
		{"Directory Record Sequence", DirectoryRecordSequence, VR_SQ},
		{"Offset of Next Record", OffsetOfNextRecord, VR_UL},
		{"Record In-use Flag", RecordInUseFlag, VR_US},
		{"Referenced File ID", ReferencedFileID, VR_CS},
		{"Group length", Tag{0x0008, 0x0000}, VR_UL},
		{"Unknown tag", Tag{0xFFFF, 0xFFFF}, VR_UN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := determineVR(tt.tag); result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestEncodeElementValue_VariousTypes(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected []byte
	}{
		{"String with null terminator", "12345\x00\x00", []byte("12345")},
		{"String array", []string{"CT", "MR"}, []byte(`CT\MR`)},
		{"Integer value", 42, []byte("42")},
		{"Uint16 value", uint16(0x0020), []byte{0x20, 0x00}},
		{"Uint16 values", []uint16{1, 2}, []byte{0x01, 0x00, 0x02, 0x00}},
		{"Uint32 value", uint32(0x12345678), []byte{0x78, 0x56, 0x34, 0x12}},
		{"Raw bytes", []byte{0xde, 0xad}, []byte{0xde, 0xad}},
		{"Nil value", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := encodeElementValue(&Element{Value: tt.value})
			if string(result) != string(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestCodec(t *testing.T) {
	codec := Codec{TransferSyntaxUID: TransferSyntaxImplicitVRLittleEndian}

	ds := NewDataset()
	ds.AddElement(DirectoryRecordType, VR_CS, "SERIES")

	data, err := codec.EncodeDataset(ds)
	if err != nil {
		t.Fatalf("EncodeDataset() error = %v", err)
	}
	parsed, err := codec.ParseDataset(data)
	if err != nil {
		t.Fatalf("ParseDataset() error = %v", err)
	}
	if v := parsed.GetString(DirectoryRecordType); v != "SERIES" {
		t.Errorf("Expected SERIES, got %s", v)
	}
}
