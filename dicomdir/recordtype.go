package dicomdir

import "strings"

// RecordType is the Directory Record Type (0004,1430) of an entry
type RecordType int

const (
	RecordUnknown RecordType = iota
	RecordPatient
	RecordStudy
	RecordSeries
	RecordImage
	RecordRTDose
	RecordRTStructureSet
	RecordRTPlan
	RecordRTTreatRecord
	RecordPresentation
	RecordWaveform
	RecordSRDocument
	RecordKeyObjectDoc
	RecordSpectroscopy
	RecordRawData
	RecordRegistration
	RecordFiducial
	RecordHangingProtocol
	RecordEncapDoc
	RecordHL7StrucDoc
	RecordValueMap
	RecordStereometric
	RecordPalette
	RecordImplant
	RecordImplantAssy
	RecordImplantGroup
	RecordPlan
	RecordMeasurement
	RecordSurface
	RecordSurfaceScan
	RecordTract
	RecordAssessment
	RecordRadiotherapy
	RecordAnnotation
	RecordPrivate

	// Retired record types
	RecordMRDR
	RecordTopic
	RecordVisit
	RecordResults
	RecordInterpretation
	RecordStudyComponent
	RecordStoredPrint
	RecordOverlay
	RecordModalityLUT
	RecordVOILUT
	RecordCurve
)

// placement describes where a record type may appear in the tree
type placement int

const (
	// anywhere: no position or file reference rule is checked
	anywhere placement = iota
	// root records hang off the directory and reference a file unless structural
	root
	underPatient
	underStudy
	underSeries
	underResults
)

type recordInfo struct {
	term      string
	placement placement
	// structural records never reference a file, the others always do
	structural bool
	retired    bool
}

// recordInfos follows the defined terms of PS3.3 F.5 and the hierarchy of F.4
var recordInfos = [...]recordInfo{
	RecordUnknown:         {"UNKNOWN", anywhere, false, false},
	RecordPatient:         {"PATIENT", root, true, false},
	RecordStudy:           {"STUDY", underPatient, true, false},
	RecordSeries:          {"SERIES", underStudy, true, false},
	RecordImage:           {"IMAGE", underSeries, false, false},
	RecordRTDose:          {"RT DOSE", underSeries, false, false},
	RecordRTStructureSet:  {"RT STRUCTURE SET", underSeries, false, false},
	RecordRTPlan:          {"RT PLAN", underSeries, false, false},
	RecordRTTreatRecord:   {"RT TREAT RECORD", underSeries, false, false},
	RecordPresentation:    {"PRESENTATION", underSeries, false, false},
	RecordWaveform:        {"WAVEFORM", underSeries, false, false},
	RecordSRDocument:      {"SR DOCUMENT", underSeries, false, false},
	RecordKeyObjectDoc:    {"KEY OBJECT DOC", underSeries, false, false},
	RecordSpectroscopy:    {"SPECTROSCOPY", underSeries, false, false},
	RecordRawData:         {"RAW DATA", underSeries, false, false},
	RecordRegistration:    {"REGISTRATION", underSeries, false, false},
	RecordFiducial:        {"FIDUCIAL", underSeries, false, false},
	RecordHangingProtocol: {"HANGING PROTOCOL", root, false, false},
	RecordEncapDoc:        {"ENCAP DOC", underSeries, false, false},
	RecordHL7StrucDoc:     {"HL7 STRUC DOC", underPatient, false, false},
	RecordValueMap:        {"VALUE MAP", underSeries, false, false},
	RecordStereometric:    {"STEREOMETRIC", underSeries, false, false},
	RecordPalette:         {"PALETTE", root, false, false},
	RecordImplant:         {"IMPLANT", root, false, false},
	RecordImplantAssy:     {"IMPLANT ASSY", root, false, false},
	RecordImplantGroup:    {"IMPLANT GROUP", root, false, false},
	RecordPlan:            {"PLAN", underSeries, false, false},
	RecordMeasurement:     {"MEASUREMENT", underSeries, false, false},
	RecordSurface:         {"SURFACE", underSeries, false, false},
	RecordSurfaceScan:     {"SURFACE SCAN", underSeries, false, false},
	RecordTract:           {"TRACT", underSeries, false, false},
	RecordAssessment:      {"ASSESSMENT", underSeries, false, false},
	RecordRadiotherapy:    {"RADIOTHERAPY", underSeries, false, false},
	RecordAnnotation:      {"ANNOTATION", underSeries, false, false},
	RecordPrivate:         {"PRIVATE", anywhere, false, false},
	RecordMRDR:            {"MRDR", anywhere, false, true},
	RecordTopic:           {"TOPIC", root, true, true},
	RecordVisit:           {"VISIT", underStudy, true, true},
	RecordResults:         {"RESULTS", underStudy, true, true},
	RecordInterpretation:  {"INTERPRETATION", underResults, true, true},
	RecordStudyComponent:  {"STUDY COMPONENT", underStudy, true, true},
	RecordStoredPrint:     {"STORED PRINT", underSeries, false, true},
	RecordOverlay:         {"OVERLAY", underSeries, false, true},
	RecordModalityLUT:     {"MODALITY LUT", underSeries, false, true},
	RecordVOILUT:          {"VOI LUT", underSeries, false, true},
	RecordCurve:           {"CURVE", underSeries, false, true},
}

var recordTypesByTerm = func() map[string]RecordType {
	m := make(map[string]RecordType, len(recordInfos))
	for t, info := range recordInfos {
		if RecordType(t) != RecordUnknown {
			m[info.term] = RecordType(t)
		}
	}
	return m
}()

// ParseRecordType resolves a Directory Record Type defined term. Unknown or
// empty terms resolve to RecordUnknown.
func ParseRecordType(term string) RecordType {
	return recordTypesByTerm[strings.TrimSpace(term)]
}

func (t RecordType) info() recordInfo {
	if t < 0 || int(t) >= len(recordInfos) {
		return recordInfos[RecordUnknown]
	}
	return recordInfos[t]
}

// String returns the defined term of the record type, "UNKNOWN" for RecordUnknown
func (t RecordType) String() string {
	return t.info().term
}

// IsRetired reports whether the defined term has been retired from the standard
func (t RecordType) IsRetired() bool {
	return t.info().retired
}

// ReferencesFile reports whether records of this type must carry a Referenced File ID.
// RecordUnknown, RecordPrivate and RecordMRDR may go either way and report false.
func (t RecordType) ReferencesFile() bool {
	info := t.info()
	return info.placement != anywhere && !info.structural
}

// IsInstance reports whether the type is an instance level record below SERIES
func (t RecordType) IsInstance() bool {
	return t.info().placement == underSeries
}

// allowedUnder reports whether a record of type t may be a child of parent, or
// a root record when isRoot is set. Records under a free-form parent are not checked.
func (t RecordType) allowedUnder(parent RecordType, isRoot bool) bool {
	info := t.info()
	if info.placement == anywhere {
		return true
	}
	if isRoot {
		return info.placement == root
	}
	if parent.info().placement == anywhere {
		return true
	}
	switch info.placement {
	case underPatient:
		return parent == RecordPatient
	case underStudy:
		return parent == RecordStudy
	case underSeries:
		return parent == RecordSeries
	case underResults:
		return parent == RecordResults
	}
	return false
}

// expectedParent names the record type a misplaced record should hang under
func (t RecordType) expectedParent() string {
	switch t.info().placement {
	case root:
		return "the directory root"
	case underPatient:
		return RecordPatient.String()
	case underStudy:
		return RecordStudy.String()
	case underSeries:
		return RecordSeries.String()
	case underResults:
		return RecordResults.String()
	}
	return ""
}
