package media

import (
	"fmt"
	"os"
	"strings"

	dcm "github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Instance holds the attributes of a stored instance that directory records
// are built from
type Instance struct {
	Path      string
	FileParts []string

	SpecificCharacterSet string
	SOPClassUID          string
	SOPInstanceUID       string
	TransferSyntaxUID    string

	PatientName      string
	PatientID        string
	PatientBirthDate string
	PatientSex       string

	StudyInstanceUID string
	StudyID          string
	StudyDate        string
	StudyTime        string
	StudyDescription string
	AccessionNumber  string

	SeriesInstanceUID string
	SeriesNumber      string
	SeriesDescription string
	Modality          string

	InstanceNumber string
	ContentDate    string
	ContentTime    string
}

// ReadInstance reads the header of the DICOM Part 10 file at path. Pixel data
// is skipped.
func ReadInstance(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat file: %w", err)
	}

	ds, err := dcm.Parse(f, info.Size(), nil, dcm.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("could not parse DICOM %s: %w", path, err)
	}

	get := func(t tag.Tag) string {
		return elementString(&ds, t)
	}

	inst := &Instance{
		Path:                 path,
		SpecificCharacterSet: get(tag.SpecificCharacterSet),
		SOPClassUID:          get(tag.SOPClassUID),
		SOPInstanceUID:       get(tag.SOPInstanceUID),
		TransferSyntaxUID:    get(tag.TransferSyntaxUID),
		PatientName:          get(tag.PatientName),
		PatientID:            get(tag.PatientID),
		PatientBirthDate:     get(tag.PatientBirthDate),
		PatientSex:           get(tag.PatientSex),
		StudyInstanceUID:     get(tag.StudyInstanceUID),
		StudyID:              get(tag.StudyID),
		StudyDate:            get(tag.StudyDate),
		StudyTime:            get(tag.StudyTime),
		StudyDescription:     get(tag.StudyDescription),
		AccessionNumber:      get(tag.AccessionNumber),
		SeriesInstanceUID:    get(tag.SeriesInstanceUID),
		SeriesNumber:         get(tag.SeriesNumber),
		SeriesDescription:    get(tag.SeriesDescription),
		Modality:             get(tag.Modality),
		InstanceNumber:       get(tag.InstanceNumber),
		ContentDate:          get(tag.ContentDate),
		ContentTime:          get(tag.ContentTime),
	}

	// The file meta information names the instance when the dataset does not
	if inst.SOPClassUID == "" {
		inst.SOPClassUID = get(tag.MediaStorageSOPClassUID)
	}
	if inst.SOPInstanceUID == "" {
		inst.SOPInstanceUID = get(tag.MediaStorageSOPInstanceUID)
	}
	if inst.SOPInstanceUID == "" {
		return nil, fmt.Errorf("DICOM %s has no SOP Instance UID", path)
	}
	return inst, nil
}

// elementString returns the first value of an element as text, or "" when the
// element is absent
func elementString(ds *dcm.Dataset, t tag.Tag) string {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem.Value == nil {
		return ""
	}

	switch v := elem.Value.GetValue().(type) {
	case []string:
		if len(v) > 0 {
			return strings.Trim(v[0], " \x00")
		}
	case string:
		return strings.Trim(v, " \x00")
	case []int:
		if len(v) > 0 {
			return fmt.Sprintf("%d", v[0])
		}
	case nil:
	default:
		return fmt.Sprintf("%v", v)
	}
	return ""
}
