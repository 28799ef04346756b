package types

// QueryLevel represents the level of a directory query. Each level maps to one
// directory record type.
type QueryLevel string

const (
	QueryLevelPatient QueryLevel = "PATIENT"
	QueryLevelStudy   QueryLevel = "STUDY"
	QueryLevelSeries  QueryLevel = "SERIES"
	QueryLevelImage   QueryLevel = "IMAGE"
)

// QueryRequest holds matching keys for a directory query. Empty keys match
// everything; the others accept C-FIND style * and ? wildcards.
type QueryRequest struct {
	Level             QueryLevel
	PatientName       string
	PatientID         string
	StudyInstanceUID  string
	StudyID           string
	StudyDate         string
	AccessionNumber   string
	Modality          string
	SeriesInstanceUID string
	SeriesNumber      string
	SOPInstanceUID    string
	InstanceNumber    string
}

// Patient groups the studies found for one patient on a file-set
type Patient struct {
	Name      string
	ID        string
	BirthDate string
	Sex       string
	// CharacterSet is the Specific Character Set of the patient's instances
	CharacterSet string
	Studies      []Study
}

// Study groups the series of one study
type Study struct {
	InstanceUID  string
	ID           string
	Date         string
	Time         string
	Description  string
	AccessionNum string
	Series       []Series
}

// Series groups the instances of one series
type Series struct {
	InstanceUID string
	Number      string
	Description string
	Modality    string
	Images      []Image
}

// Image is one referenced instance. FileParts is its File ID relative to the
// file-set root.
type Image struct {
	SOPInstanceUID    string
	SOPClassUID       string
	TransferSyntaxUID string
	InstanceNumber    string
	ContentDate       string
	ContentTime       string
	FileParts         []string
}
