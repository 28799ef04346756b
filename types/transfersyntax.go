package types

// DICOM Transfer Syntax UIDs as defined in DICOM Part 5, Section 8 and Part 6, Annex A.4
// https://dicom.nema.org/medical/dicom/current/output/chtml/part05/chapter_8.html

// Native (uncompressed) transfer syntaxes
const (
	// ImplicitVRLittleEndian - Default Transfer Syntax for DICOM
	ImplicitVRLittleEndian = "1.2.840.10008.1.2"

	// ExplicitVRLittleEndian - the only transfer syntax a DICOMDIR may use
	ExplicitVRLittleEndian = "1.2.840.10008.1.2.1"

	// ExplicitVRBigEndian - Explicit VR with big endian byte ordering (retired)
	ExplicitVRBigEndian = "1.2.840.10008.1.2.2"

	// DeflatedExplicitVRLittleEndian - zlib/deflate on top of explicit VR encoding
	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
)

// Encapsulated transfer syntaxes commonly found on interchange media
const (
	JPEGBaseline8Bit   = "1.2.840.10008.1.2.4.50"
	JPEGExtended12Bit  = "1.2.840.10008.1.2.4.51"
	JPEGLossless       = "1.2.840.10008.1.2.4.57"
	JPEGLosslessSV1    = "1.2.840.10008.1.2.4.70"
	JPEGLSLossless     = "1.2.840.10008.1.2.4.80"
	JPEGLSNearLossless = "1.2.840.10008.1.2.4.81"
	JPEG2000Lossless   = "1.2.840.10008.1.2.4.90"
	JPEG2000           = "1.2.840.10008.1.2.4.91"
	MPEG2MainProfile   = "1.2.840.10008.1.2.4.100"
	MPEG4HighProfile   = "1.2.840.10008.1.2.4.102"
	RLELossless        = "1.2.840.10008.1.2.5"
)

// TransferSyntaxInfo provides metadata about a transfer syntax
type TransferSyntaxInfo struct {
	UID        string
	Name       string
	Compressed bool
	Lossless   bool
	Retired    bool
}

// GetTransferSyntaxInfo returns information about a transfer syntax UID
func GetTransferSyntaxInfo(uid string) *TransferSyntaxInfo {
	info, ok := transferSyntaxRegistry[uid]
	if !ok {
		return &TransferSyntaxInfo{
			UID:      uid,
			Name:     "Unknown",
			Lossless: true,
		}
	}
	return &info
}

// IsCompressed returns true if the transfer syntax uses compression
func IsCompressed(uid string) bool {
	return GetTransferSyntaxInfo(uid).Compressed
}

// IsLossless returns true if the transfer syntax is lossless.
// Native transfer syntaxes are lossless.
func IsLossless(uid string) bool {
	return GetTransferSyntaxInfo(uid).Lossless
}

// IsRetired returns true if the transfer syntax is retired
func IsRetired(uid string) bool {
	return GetTransferSyntaxInfo(uid).Retired
}

var transferSyntaxRegistry = func() map[string]TransferSyntaxInfo {
	list := []TransferSyntaxInfo{
		{ImplicitVRLittleEndian, "Implicit VR Little Endian", false, true, false},
		{ExplicitVRLittleEndian, "Explicit VR Little Endian", false, true, false},
		{ExplicitVRBigEndian, "Explicit VR Big Endian", false, true, true},
		{DeflatedExplicitVRLittleEndian, "Deflated Explicit VR Little Endian", true, true, false},
		{JPEGBaseline8Bit, "JPEG Baseline (Process 1)", true, false, false},
		{JPEGExtended12Bit, "JPEG Extended (Process 2 & 4)", true, false, false},
		{JPEGLossless, "JPEG Lossless (Process 14)", true, true, false},
		{JPEGLosslessSV1, "JPEG Lossless, Non-Hierarchical, First-Order Prediction", true, true, false},
		{JPEGLSLossless, "JPEG-LS Lossless", true, true, false},
		{JPEGLSNearLossless, "JPEG-LS Lossy (Near-Lossless)", true, false, false},
		{JPEG2000Lossless, "JPEG 2000 Lossless Only", true, true, false},
		{JPEG2000, "JPEG 2000", true, false, false},
		{MPEG2MainProfile, "MPEG2 Main Profile / Main Level", true, false, false},
		{MPEG4HighProfile, "MPEG-4 AVC/H.264 High Profile / Level 4.1", true, false, false},
		{RLELossless, "RLE Lossless", true, true, false},
	}
	registry := make(map[string]TransferSyntaxInfo, len(list))
	for _, info := range list {
		registry[info.UID] = info
	}
	return registry
}()
