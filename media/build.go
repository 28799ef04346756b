package media

import (
	"fmt"

	"github.com/caio-sobreiro/dicomdir/dicom"
	"github.com/caio-sobreiro/dicomdir/dicomdir"
	"github.com/caio-sobreiro/dicomdir/types"
)

// utf8CharacterSet holds any value the declared repertoire cannot
const utf8CharacterSet = "ISO_IR 192"

// Group arranges instances into the patient, study and series hierarchy. Groups
// keep the order in which their first instance appears. Instances without a
// study or series UID are grouped under an empty UID.
func Group(instances []*Instance) []types.Patient {
	var patients []types.Patient
	patientIdx := map[string]int{}
	studyIdx := map[[2]string]int{}
	seriesIdx := map[[3]string]int{}

	for _, inst := range instances {
		pKey := inst.PatientID + "\x00" + inst.PatientName
		pi, ok := patientIdx[pKey]
		if !ok {
			pi = len(patients)
			patientIdx[pKey] = pi
			patients = append(patients, types.Patient{
				Name:         inst.PatientName,
				ID:           inst.PatientID,
				BirthDate:    inst.PatientBirthDate,
				Sex:          inst.PatientSex,
				CharacterSet: inst.SpecificCharacterSet,
			})
		}
		patient := &patients[pi]

		sKey := [2]string{pKey, inst.StudyInstanceUID}
		si, ok := studyIdx[sKey]
		if !ok {
			si = len(patient.Studies)
			studyIdx[sKey] = si
			patient.Studies = append(patient.Studies, types.Study{
				InstanceUID:  inst.StudyInstanceUID,
				ID:           inst.StudyID,
				Date:         inst.StudyDate,
				Time:         inst.StudyTime,
				Description:  inst.StudyDescription,
				AccessionNum: inst.AccessionNumber,
			})
		}
		study := &patient.Studies[si]

		seKey := [3]string{pKey, inst.StudyInstanceUID, inst.SeriesInstanceUID}
		sei, ok := seriesIdx[seKey]
		if !ok {
			sei = len(study.Series)
			seriesIdx[seKey] = sei
			study.Series = append(study.Series, types.Series{
				InstanceUID: inst.SeriesInstanceUID,
				Number:      inst.SeriesNumber,
				Description: inst.SeriesDescription,
				Modality:    inst.Modality,
			})
		}
		series := &study.Series[sei]

		series.Images = append(series.Images, types.Image{
			SOPInstanceUID:    inst.SOPInstanceUID,
			SOPClassUID:       inst.SOPClassUID,
			TransferSyntaxUID: inst.TransferSyntaxUID,
			InstanceNumber:    inst.InstanceNumber,
			ContentDate:       inst.ContentDate,
			ContentTime:       inst.ContentTime,
			FileParts:         inst.FileParts,
		})
	}
	return patients
}

type attribute struct {
	tag   dicom.Tag
	vr    string
	value string
}

// NewDirectory builds a directory with PATIENT, STUDY and SERIES records and
// one leaf record per image, typed after its SOP class. charset is the Specific
// Character Set for patients whose instances declare none.
func NewDirectory(patients []types.Patient, charset string, opts ...dicomdir.Option) (*dicomdir.Dir, error) {
	d := dicomdir.New(opts...)
	if charset != "" {
		d.Header().AddElement(dicom.SpecificCharacterSetOfFileSetDescriptorFile, dicom.VR_CS, charset)
	}

	var lastPatient *dicomdir.Entry
	for _, p := range patients {
		cs := p.CharacterSet
		if cs == "" {
			cs = charset
		}

		patient, err := newRecord(d, dicomdir.RecordPatient, cs, []attribute{
			{dicom.PatientName, dicom.VR_PN, p.Name},
			{dicom.PatientID, dicom.VR_LO, p.ID},
			{dicom.PatientBirthDate, dicom.VR_DA, p.BirthDate},
			{dicom.PatientSex, dicom.VR_CS, p.Sex},
		})
		if err != nil {
			return nil, fmt.Errorf("patient %s: %w", p.ID, err)
		}
		if err := attach(d, nil, lastPatient, patient); err != nil {
			return nil, err
		}
		lastPatient = patient

		var lastStudy *dicomdir.Entry
		for _, st := range p.Studies {
			study, err := newRecord(d, dicomdir.RecordStudy, cs, []attribute{
				{dicom.StudyDate, dicom.VR_DA, st.Date},
				{dicom.StudyTime, dicom.VR_TM, st.Time},
				{dicom.StudyDescription, dicom.VR_LO, st.Description},
				{dicom.StudyInstanceUID, dicom.VR_UI, st.InstanceUID},
				{dicom.StudyID, dicom.VR_SH, st.ID},
				{dicom.AccessionNumber, dicom.VR_SH, st.AccessionNum},
			})
			if err != nil {
				return nil, fmt.Errorf("study %s: %w", st.InstanceUID, err)
			}
			if err := attach(d, patient, lastStudy, study); err != nil {
				return nil, err
			}
			lastStudy = study

			var lastSeries *dicomdir.Entry
			for _, se := range st.Series {
				series, err := newRecord(d, dicomdir.RecordSeries, cs, []attribute{
					{dicom.Modality, dicom.VR_CS, se.Modality},
					{dicom.SeriesInstanceUID, dicom.VR_UI, se.InstanceUID},
					{dicom.SeriesNumber, dicom.VR_IS, se.Number},
					{dicom.SeriesDescription, dicom.VR_LO, se.Description},
				})
				if err != nil {
					return nil, fmt.Errorf("series %s: %w", se.InstanceUID, err)
				}
				if err := attach(d, study, lastSeries, series); err != nil {
					return nil, err
				}
				lastSeries = series

				var lastLeaf *dicomdir.Entry
				for _, im := range se.Images {
					leaf, err := newRecord(d, leafType(im.SOPClassUID), "", []attribute{
						{dicom.ReferencedSOPClassUIDInFile, dicom.VR_UI, im.SOPClassUID},
						{dicom.ReferencedSOPInstanceUIDInFile, dicom.VR_UI, im.SOPInstanceUID},
						{dicom.ReferencedTransferSyntaxUIDInFile, dicom.VR_UI, im.TransferSyntaxUID},
						{dicom.InstanceNumber, dicom.VR_IS, im.InstanceNumber},
						{dicom.ContentDate, dicom.VR_DA, im.ContentDate},
						{dicom.ContentTime, dicom.VR_TM, im.ContentTime},
					})
					if err != nil {
						return nil, fmt.Errorf("instance %s: %w", im.SOPInstanceUID, err)
					}
					leaf.SetFileParts(im.FileParts)
					if err := attach(d, series, lastLeaf, leaf); err != nil {
						return nil, err
					}
					lastLeaf = leaf
				}
			}
		}
	}
	return d, nil
}

// attach links e after tail, or as the first record under parent when tail is
// nil. A nil parent stands for the root chain.
func attach(d *dicomdir.Dir, parent, tail, e *dicomdir.Entry) error {
	switch {
	case tail != nil:
		return tail.SetNext(e)
	case parent != nil:
		return parent.SetFirstChild(e)
	default:
		return d.SetFirstRoot(e)
	}
}

// leafType maps a SOP class to its directory record type, IMAGE when unknown
func leafType(sopClassUID string) dicomdir.RecordType {
	if t := dicomdir.ParseRecordType(types.RecordTypeForSOPClass(sopClassUID)); t != dicomdir.RecordUnknown {
		return t
	}
	return dicomdir.RecordImage
}

func newRecord(d *dicomdir.Dir, t dicomdir.RecordType, charset string, attrs []attribute) (*dicomdir.Entry, error) {
	e := d.NewEntry(t)
	if err := setAttributes(e.DataSet(), charset, attrs); err != nil {
		if err := setAttributes(e.DataSet(), utf8CharacterSet, attrs); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// setAttributes writes attrs encoded in charset. Empty values are written as
// empty attributes.
func setAttributes(ds *dicom.Dataset, charset string, attrs []attribute) error {
	if charset != "" {
		ds.AddElement(dicom.SpecificCharacterSet, dicom.VR_CS, charset)
	}
	for _, a := range attrs {
		if err := ds.SetUnicodeString(a.tag, a.vr, a.value); err != nil {
			return err
		}
	}
	return nil
}
