package dicom

// File Meta Information (group 0002)
var (
	FileMetaInformationGroupLength = Tag{0x0002, 0x0000}
	FileMetaInformationVersion     = Tag{0x0002, 0x0001}
	MediaStorageSOPClassUID        = Tag{0x0002, 0x0002}
	MediaStorageSOPInstanceUID     = Tag{0x0002, 0x0003}
	TransferSyntaxUID              = Tag{0x0002, 0x0010}
	ImplementationClassUID         = Tag{0x0002, 0x0012}
	ImplementationVersionName      = Tag{0x0002, 0x0013}
)

// Directory structuring elements (group 0004), PS3.3 F.3
var (
	FileSetID                                   = Tag{0x0004, 0x1130}
	FileSetDescriptorFileID                     = Tag{0x0004, 0x1141}
	SpecificCharacterSetOfFileSetDescriptorFile = Tag{0x0004, 0x1142}
	OffsetOfFirstRootRecord                     = Tag{0x0004, 0x1200}
	OffsetOfLastRootRecord                      = Tag{0x0004, 0x1202}
	FileSetConsistencyFlag                      = Tag{0x0004, 0x1212}
	DirectoryRecordSequence                     = Tag{0x0004, 0x1220}
	OffsetOfNextRecord                          = Tag{0x0004, 0x1400}
	RecordInUseFlag                             = Tag{0x0004, 0x1410}
	OffsetOfLowerLevelRecords                   = Tag{0x0004, 0x1420}
	DirectoryRecordType                         = Tag{0x0004, 0x1430}
	PrivateRecordUID                            = Tag{0x0004, 0x1432}
	ReferencedFileID                            = Tag{0x0004, 0x1500}
	ReferencedSOPClassUIDInFile                 = Tag{0x0004, 0x1510}
	ReferencedSOPInstanceUIDInFile              = Tag{0x0004, 0x1511}
	ReferencedTransferSyntaxUIDInFile           = Tag{0x0004, 0x1512}
)

// Patient, study, series and instance attributes used by directory records
var (
	SpecificCharacterSet     = Tag{0x0008, 0x0005}
	SOPClassUID              = Tag{0x0008, 0x0016}
	SOPInstanceUID           = Tag{0x0008, 0x0018}
	StudyDate                = Tag{0x0008, 0x0020}
	ContentDate              = Tag{0x0008, 0x0023}
	StudyTime                = Tag{0x0008, 0x0030}
	ContentTime              = Tag{0x0008, 0x0033}
	AccessionNumber          = Tag{0x0008, 0x0050}
	Modality                 = Tag{0x0008, 0x0060}
	StudyDescription         = Tag{0x0008, 0x1030}
	SeriesDescription        = Tag{0x0008, 0x103E}
	PatientName              = Tag{0x0010, 0x0010}
	PatientID                = Tag{0x0010, 0x0020}
	PatientBirthDate         = Tag{0x0010, 0x0030}
	PatientSex               = Tag{0x0010, 0x0040}
	StudyInstanceUID         = Tag{0x0020, 0x000D}
	SeriesInstanceUID        = Tag{0x0020, 0x000E}
	StudyID                  = Tag{0x0020, 0x0010}
	SeriesNumber             = Tag{0x0020, 0x0011}
	InstanceNumber           = Tag{0x0020, 0x0013}
	Rows                     = Tag{0x0028, 0x0010}
	Columns                  = Tag{0x0028, 0x0011}
	ContentLabel             = Tag{0x0070, 0x0080}
	PresentationCreationDate = Tag{0x0070, 0x0082}
	PresentationCreationTime = Tag{0x0070, 0x0083}
	CompletionFlag           = Tag{0x0040, 0xA491}
	VerificationFlag         = Tag{0x0040, 0xA493}
)

// Sequence delimitation (group FFFE)
var (
	Item                     = Tag{0xFFFE, 0xE000}
	ItemDelimitationItem     = Tag{0xFFFE, 0xE00D}
	SequenceDelimitationItem = Tag{0xFFFE, 0xE0DD}
)

// dictionary maps the tags this package knows to their VR. It is only consulted
// for implicit VR data and for elements added without a VR.
var dictionary = map[Tag]string{
	FileMetaInformationGroupLength: VR_UL,
	FileMetaInformationVersion:     VR_OB,
	MediaStorageSOPClassUID:        VR_UI,
	MediaStorageSOPInstanceUID:     VR_UI,
	TransferSyntaxUID:              VR_UI,
	ImplementationClassUID:         VR_UI,
	ImplementationVersionName:      VR_SH,

	FileSetID:                                   VR_CS,
	FileSetDescriptorFileID:                     VR_CS,
	SpecificCharacterSetOfFileSetDescriptorFile: VR_CS,
	OffsetOfFirstRootRecord:                     VR_UL,
	OffsetOfLastRootRecord:                      VR_UL,
	FileSetConsistencyFlag:                      VR_US,
	DirectoryRecordSequence:                     VR_SQ,
	OffsetOfNextRecord:                          VR_UL,
	RecordInUseFlag:                             VR_US,
	OffsetOfLowerLevelRecords:                   VR_UL,
	DirectoryRecordType:                         VR_CS,
	PrivateRecordUID:                            VR_UI,
	ReferencedFileID:                            VR_CS,
	ReferencedSOPClassUIDInFile:                 VR_UI,
	ReferencedSOPInstanceUIDInFile:              VR_UI,
	ReferencedTransferSyntaxUIDInFile:           VR_UI,

	SpecificCharacterSet:     VR_CS,
	SOPClassUID:              VR_UI,
	SOPInstanceUID:           VR_UI,
	StudyDate:                VR_DA,
	ContentDate:              VR_DA,
	StudyTime:                VR_TM,
	ContentTime:              VR_TM,
	AccessionNumber:          VR_SH,
	{0x0008, 0x0052}:         VR_CS, // Query/Retrieve Level
	{0x0008, 0x0054}:         VR_AE, // Retrieve AE Title
	Modality:                 VR_CS,
	{0x0008, 0x0080}:         VR_LO, // Institution Name
	{0x0008, 0x0090}:         VR_PN, // Referring Physician's Name
	StudyDescription:         VR_LO,
	SeriesDescription:        VR_LO,
	{0x0008, 0x1040}:         VR_LO, // Institutional Department Name
	{0x0008, 0x1050}:         VR_PN, // Performing Physician's Name
	{0x0008, 0x1060}:         VR_PN, // Name of Physician(s) Reading Study
	{0x0008, 0x1070}:         VR_PN, // Operators' Name
	PatientName:              VR_PN,
	PatientID:                VR_LO,
	PatientBirthDate:         VR_DA,
	PatientSex:               VR_CS,
	{0x0010, 0x1010}:         VR_AS, // Patient's Age
	{0x0018, 0x0015}:         VR_CS, // Body Part Examined
	StudyInstanceUID:         VR_UI,
	SeriesInstanceUID:        VR_UI,
	StudyID:                  VR_SH,
	SeriesNumber:             VR_IS,
	InstanceNumber:           VR_IS,
	{0x0020, 0x0020}:         VR_CS, // Patient Orientation
	Rows:                     VR_US,
	Columns:                  VR_US,
	ContentLabel:             VR_CS,
	PresentationCreationDate: VR_DA,
	PresentationCreationTime: VR_TM,
	CompletionFlag:           VR_CS,
	VerificationFlag:         VR_CS,
}

// determineVR returns the dictionary VR of a tag. Group length elements are UL
// and anything not in the dictionary is UN.
func determineVR(tag Tag) string {
	if vr, ok := dictionary[tag]; ok {
		return vr
	}
	if tag.Element == 0x0000 {
		return VR_UL
	}
	return VR_UN
}
