package dicom

import "testing"

func TestLookupCharset(t *testing.T) {
	tests := []struct {
		term    string
		wantNil bool
		wantErr bool
	}{
		{"", true, false},
		{"ISO_IR 6", true, false},
		{"ISO_IR 100", false, false},
		{"ISO 2022 IR 100", false, false},
		{"ISO_IR 192", false, false},
		{"GB18030", false, false},
		{"KLINGON", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			enc, err := LookupCharset(tt.term)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LookupCharset() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (enc == nil) != tt.wantNil {
				t.Errorf("LookupCharset() = %v, wantNil %v", enc, tt.wantNil)
			}
		})
	}
}

func TestDataset_UnicodeString(t *testing.T) {
	ds := NewDataset()
	ds.AddElement(SpecificCharacterSet, VR_CS, "ISO_IR 100")

	if err := ds.SetUnicodeString(PatientName, VR_PN, "MÜLLER^JÖRG"); err != nil {
		t.Fatalf("SetUnicodeString() error = %v", err)
	}

	raw := ds.GetString(PatientName)
	if raw != "M\xdcLLER^J\xd6RG" {
		t.Errorf("Expected Latin-1 bytes, got %q", raw)
	}

	got, err := ds.GetUnicodeString(PatientName)
	if err != nil {
		t.Fatalf("GetUnicodeString() error = %v", err)
	}
	if got != "MÜLLER^JÖRG" {
		t.Errorf("Expected MÜLLER^JÖRG, got %s", got)
	}
}

func TestDataset_UnicodeStringDefaultRepertoire(t *testing.T) {
	ds := NewDataset()

	if err := ds.SetUnicodeString(PatientName, VR_PN, "DOE^JOHN"); err != nil {
		t.Fatalf("SetUnicodeString() error = %v", err)
	}
	if err := ds.SetUnicodeString(PatientName, VR_PN, "MÜLLER"); err == nil {
		t.Error("SetUnicodeString() should reject non-ASCII text without a character set")
	}

	got, err := ds.GetUnicodeString(PatientName)
	if err != nil || got != "DOE^JOHN" {
		t.Errorf("GetUnicodeString() = %q, %v", got, err)
	}
}
