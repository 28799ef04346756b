package types

// DICOM SOP Class UIDs, PS3.4 Annex B. Only the storage classes that appear on
// interchange media are listed.

// MediaStorageDirectoryStorage is the SOP class of a DICOMDIR file
const MediaStorageDirectoryStorage = "1.2.840.10008.1.3.10"

// Image Storage SOP Classes
const (
	ComputedRadiographyImageStorage                   = "1.2.840.10008.5.1.4.1.1.1"
	DigitalXRayImageStorageForPresentation            = "1.2.840.10008.5.1.4.1.1.1.1"
	DigitalMammographyXRayImageStorageForPresentation = "1.2.840.10008.5.1.4.1.1.1.2"
	CTImageStorage                                    = "1.2.840.10008.5.1.4.1.1.2"
	EnhancedCTImageStorage                            = "1.2.840.10008.5.1.4.1.1.2.1"
	UltrasoundMultiFrameImageStorage                  = "1.2.840.10008.5.1.4.1.1.3.1"
	MRImageStorage                                    = "1.2.840.10008.5.1.4.1.1.4"
	EnhancedMRImageStorage                            = "1.2.840.10008.5.1.4.1.1.4.1"
	UltrasoundImageStorage                            = "1.2.840.10008.5.1.4.1.1.6.1"
	SecondaryCaptureImageStorage                      = "1.2.840.10008.5.1.4.1.1.7"
	XRayAngiographicImageStorage                      = "1.2.840.10008.5.1.4.1.1.12.1"
	XRayRadiofluoroscopicImageStorage                 = "1.2.840.10008.5.1.4.1.1.12.2"
	NuclearMedicineImageStorage                       = "1.2.840.10008.5.1.4.1.1.20"
	VLPhotographicImageStorage                        = "1.2.840.10008.5.1.4.1.1.77.1.4"
	PETImageStorage                                   = "1.2.840.10008.5.1.4.1.1.128"
	RTImageStorage                                    = "1.2.840.10008.5.1.4.1.1.481.1"
)

// Non-image Storage SOP Classes, grouped by the directory record that references them
const (
	MRSpectroscopyStorage                     = "1.2.840.10008.5.1.4.1.1.4.2"
	GrayscaleSoftcopyPresentationStateStorage = "1.2.840.10008.5.1.4.1.1.11.1"
	TwelveLeadECGWaveformStorage              = "1.2.840.10008.5.1.4.1.1.9.1.1"
	RawDataStorage                            = "1.2.840.10008.5.1.4.1.1.66"
	SpatialRegistrationStorage                = "1.2.840.10008.5.1.4.1.1.66.1"
	SpatialFiducialsStorage                   = "1.2.840.10008.5.1.4.1.1.66.2"
	StereometricRelationshipStorage           = "1.2.840.10008.5.1.4.1.1.77.1.5.3"
	BasicTextSRStorage                        = "1.2.840.10008.5.1.4.1.1.88.11"
	EnhancedSRStorage                         = "1.2.840.10008.5.1.4.1.1.88.22"
	ComprehensiveSRStorage                    = "1.2.840.10008.5.1.4.1.1.88.33"
	KeyObjectSelectionDocumentStorage         = "1.2.840.10008.5.1.4.1.1.88.59"
	EncapsulatedPDFStorage                    = "1.2.840.10008.5.1.4.1.1.104.1"
	EncapsulatedCDAStorage                    = "1.2.840.10008.5.1.4.1.1.104.2"
	SurfaceSegmentationStorage                = "1.2.840.10008.5.1.4.1.1.66.5"
	RTDoseStorage                             = "1.2.840.10008.5.1.4.1.1.481.2"
	RTStructureSetStorage                     = "1.2.840.10008.5.1.4.1.1.481.3"
	RTBeamsTreatmentRecordStorage             = "1.2.840.10008.5.1.4.1.1.481.4"
	RTPlanStorage                             = "1.2.840.10008.5.1.4.1.1.481.5"
	HangingProtocolStorage                    = "1.2.840.10008.5.1.4.38.1"
	ColorPaletteStorage                       = "1.2.840.10008.5.1.4.39.1"
	GenericImplantTemplateStorage             = "1.2.840.10008.5.1.4.43.1"
	ImplantAssemblyTemplateStorage            = "1.2.840.10008.5.1.4.44.1"
	ImplantTemplateGroupStorage               = "1.2.840.10008.5.1.4.45.1"
)

// SOPClassInfo provides metadata about a SOP Class.
//
// RecordType is the Directory Record Type (PS3.3 F.5) of the record that
// references instances of this class on media.
type SOPClassInfo struct {
	UID        string
	Name       string
	Category   string
	RecordType string
}

// GetSOPClassInfo returns information about a SOP Class UID
func GetSOPClassInfo(uid string) *SOPClassInfo {
	info, ok := sopClassRegistry[uid]
	if !ok {
		return &SOPClassInfo{
			UID:      uid,
			Name:     "Unknown",
			Category: "Unknown",
		}
	}
	return &info
}

// IsStorageSOPClass returns true if the SOP Class is a storage class
func IsStorageSOPClass(uid string) bool {
	return GetSOPClassInfo(uid).Category == "Storage"
}

// RecordTypeForSOPClass returns the directory record type that references
// instances of a SOP class, or "" when the class is not registered.
func RecordTypeForSOPClass(uid string) string {
	return GetSOPClassInfo(uid).RecordType
}

var sopClassRegistry = func() map[string]SOPClassInfo {
	storage := []struct {
		uid, name, record string
	}{
		{ComputedRadiographyImageStorage, "Computed Radiography Image Storage", "IMAGE"},
		{DigitalXRayImageStorageForPresentation, "Digital X-Ray Image Storage - For Presentation", "IMAGE"},
		{DigitalMammographyXRayImageStorageForPresentation, "Digital Mammography X-Ray Image Storage - For Presentation", "IMAGE"},
		{CTImageStorage, "CT Image Storage", "IMAGE"},
		{EnhancedCTImageStorage, "Enhanced CT Image Storage", "IMAGE"},
		{UltrasoundMultiFrameImageStorage, "Ultrasound Multi-frame Image Storage", "IMAGE"},
		{MRImageStorage, "MR Image Storage", "IMAGE"},
		{EnhancedMRImageStorage, "Enhanced MR Image Storage", "IMAGE"},
		{UltrasoundImageStorage, "Ultrasound Image Storage", "IMAGE"},
		{SecondaryCaptureImageStorage, "Secondary Capture Image Storage", "IMAGE"},
		{XRayAngiographicImageStorage, "X-Ray Angiographic Image Storage", "IMAGE"},
		{XRayRadiofluoroscopicImageStorage, "X-Ray Radiofluoroscopic Image Storage", "IMAGE"},
		{NuclearMedicineImageStorage, "Nuclear Medicine Image Storage", "IMAGE"},
		{VLPhotographicImageStorage, "VL Photographic Image Storage", "IMAGE"},
		{PETImageStorage, "PET Image Storage", "IMAGE"},
		{RTImageStorage, "RT Image Storage", "IMAGE"},
		{MRSpectroscopyStorage, "MR Spectroscopy Storage", "SPECTROSCOPY"},
		{GrayscaleSoftcopyPresentationStateStorage, "Grayscale Softcopy Presentation State Storage", "PRESENTATION"},
		{TwelveLeadECGWaveformStorage, "12-lead ECG Waveform Storage", "WAVEFORM"},
		{RawDataStorage, "Raw Data Storage", "RAW DATA"},
		{SpatialRegistrationStorage, "Spatial Registration Storage", "REGISTRATION"},
		{SpatialFiducialsStorage, "Spatial Fiducials Storage", "FIDUCIAL"},
		{StereometricRelationshipStorage, "Stereometric Relationship Storage", "STEREOMETRIC"},
		{BasicTextSRStorage, "Basic Text SR Storage", "SR DOCUMENT"},
		{EnhancedSRStorage, "Enhanced SR Storage", "SR DOCUMENT"},
		{ComprehensiveSRStorage, "Comprehensive SR Storage", "SR DOCUMENT"},
		{KeyObjectSelectionDocumentStorage, "Key Object Selection Document Storage", "KEY OBJECT DOC"},
		{EncapsulatedPDFStorage, "Encapsulated PDF Storage", "ENCAP DOC"},
		{EncapsulatedCDAStorage, "Encapsulated CDA Storage", "ENCAP DOC"},
		{SurfaceSegmentationStorage, "Surface Segmentation Storage", "SURFACE"},
		{RTDoseStorage, "RT Dose Storage", "RT DOSE"},
		{RTStructureSetStorage, "RT Structure Set Storage", "RT STRUCTURE SET"},
		{RTBeamsTreatmentRecordStorage, "RT Beams Treatment Record Storage", "RT TREAT RECORD"},
		{RTPlanStorage, "RT Plan Storage", "RT PLAN"},
		{HangingProtocolStorage, "Hanging Protocol Storage", "HANGING PROTOCOL"},
		{ColorPaletteStorage, "Color Palette Storage", "PALETTE"},
		{GenericImplantTemplateStorage, "Generic Implant Template Storage", "IMPLANT"},
		{ImplantAssemblyTemplateStorage, "Implant Assembly Template Storage", "IMPLANT ASSY"},
		{ImplantTemplateGroupStorage, "Implant Template Group Storage", "IMPLANT GROUP"},
	}

	registry := make(map[string]SOPClassInfo, len(storage)+1)
	for _, s := range storage {
		registry[s.uid] = SOPClassInfo{UID: s.uid, Name: s.name, Category: "Storage", RecordType: s.record}
	}
	registry[MediaStorageDirectoryStorage] = SOPClassInfo{
		UID:      MediaStorageDirectoryStorage,
		Name:     "Media Storage Directory Storage",
		Category: "Media",
	}
	return registry
}()
