package dicom

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	derrors "github.com/caio-sobreiro/dicomdir/errors"
	"github.com/caio-sobreiro/dicomdir/types"
)

// VR (Value Representation) constants
const (
	VR_AE = "AE" // Application Entity
	VR_AS = "AS" // Age String
	VR_AT = "AT" // Attribute Tag
	VR_CS = "CS" // Code String
	VR_DA = "DA" // Date
	VR_DS = "DS" // Decimal String
	VR_DT = "DT" // Date Time
	VR_FL = "FL" // Floating Point Single
	VR_FD = "FD" // Floating Point Double
	VR_IS = "IS" // Integer String
	VR_LO = "LO" // Long String
	VR_LT = "LT" // Long Text
	VR_OB = "OB" // Other Byte
	VR_OD = "OD" // Other Double
	VR_OF = "OF" // Other Float
	VR_OL = "OL" // Other Long
	VR_OV = "OV" // Other Very Long
	VR_OW = "OW" // Other Word
	VR_PN = "PN" // Person Name
	VR_SH = "SH" // Short String
	VR_SL = "SL" // Signed Long
	VR_SQ = "SQ" // Sequence of Items
	VR_SS = "SS" // Signed Short
	VR_ST = "ST" // Short Text
	VR_SV = "SV" // Signed Very Long
	VR_TM = "TM" // Time
	VR_UC = "UC" // Unlimited Characters
	VR_UI = "UI" // Unique Identifier
	VR_UL = "UL" // Unsigned Long
	VR_UN = "UN" // Unknown
	VR_UR = "UR" // Universal Resource
	VR_US = "US" // Unsigned Short
	VR_UT = "UT" // Unlimited Text
	VR_UV = "UV" // Unsigned Very Long
)

// Common transfer syntax UIDs
const (
	TransferSyntaxImplicitVRLittleEndian = types.ImplicitVRLittleEndian
	TransferSyntaxExplicitVRLittleEndian = types.ExplicitVRLittleEndian
)

const undefinedLength = 0xFFFFFFFF

// maxSequenceDepth bounds sequence nesting when decoding
const maxSequenceDepth = 32

// Tag represents a DICOM tag (group, element)
type Tag struct {
	Group   uint16
	Element uint16
}

// String returns the tag as a string in (GGGG,EEEE) format
func (t Tag) String() string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

func compareTags(a, b Tag) int {
	if c := cmp.Compare(a.Group, b.Group); c != 0 {
		return c
	}
	return cmp.Compare(a.Element, b.Element)
}

// Element represents a DICOM data element.
//
// Value holds a string for text VRs, uint16/[]uint16 for US, uint32/[]uint32 for UL,
// []*Dataset for SQ and the raw bytes for every other binary VR.
type Element struct {
	Tag    Tag
	VR     string
	Length uint32
	Value  interface{}
}

// Dataset represents a collection of DICOM elements
type Dataset struct {
	Elements map[Tag]*Element
}

// NewDataset creates a new empty dataset
func NewDataset() *Dataset {
	return &Dataset{
		Elements: make(map[Tag]*Element),
	}
}

// AddElement adds an element to the dataset
func (d *Dataset) AddElement(tag Tag, vr string, value interface{}) {
	element := &Element{
		Tag:   tag,
		VR:    vr,
		Value: value,
	}
	d.Elements[tag] = element
}

// RemoveElement deletes an element, reporting whether it was present.
func (d *Dataset) RemoveElement(tag Tag) bool {
	_, exists := d.Elements[tag]
	delete(d.Elements, tag)
	return exists
}

// GetElement returns an element by tag
func (d *Dataset) GetElement(tag Tag) (*Element, bool) {
	element, exists := d.Elements[tag]
	return element, exists
}

// GetString returns a string value for a tag
func (d *Dataset) GetString(tag Tag) string {
	if element, exists := d.Elements[tag]; exists {
		switch v := element.Value.(type) {
		case string:
			return strings.TrimSpace(v)
		case []string:
			return strings.Join(v, "\\")
		case []byte:
			return trimText(v)
		}
	}
	return ""
}

// GetStrings returns a slice of string values for a tag
func (d *Dataset) GetStrings(tag Tag) []string {
	if element, exists := d.Elements[tag]; exists {
		switch v := element.Value.(type) {
		case string:
			// Split by backslash for multiple values
			parts := strings.Split(v, "\\")
			result := make([]string, len(parts))
			for i, part := range parts {
				result[i] = strings.TrimSpace(part)
			}
			return result
		case []string:
			return v
		}
	}
	return nil
}

// GetUint16 returns the first value of a US element
func (d *Dataset) GetUint16(tag Tag) (uint16, bool) {
	if element, exists := d.Elements[tag]; exists {
		switch v := element.Value.(type) {
		case uint16:
			return v, true
		case []uint16:
			if len(v) > 0 {
				return v[0], true
			}
		case int:
			return uint16(v), true
		}
	}
	return 0, false
}

// GetUint32 returns the first value of a UL element
func (d *Dataset) GetUint32(tag Tag) (uint32, bool) {
	if element, exists := d.Elements[tag]; exists {
		switch v := element.Value.(type) {
		case uint32:
			return v, true
		case []uint32:
			if len(v) > 0 {
				return v[0], true
			}
		case int:
			return uint32(v), true
		}
	}
	return 0, false
}

// GetSequence returns the items of a sequence element
func (d *Dataset) GetSequence(tag Tag) ([]*Dataset, bool) {
	if element, exists := d.Elements[tag]; exists {
		items, ok := element.Value.([]*Dataset)
		return items, ok
	}
	return nil, false
}

// SortedTags returns the dataset's tags in ascending order
func (d *Dataset) SortedTags() []Tag {
	tags := make([]Tag, 0, len(d.Elements))
	for tag := range d.Elements {
		tags = append(tags, tag)
	}
	slices.SortFunc(tags, compareTags)
	return tags
}

// Clone returns a deep copy of the dataset, sequence items included.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	clone := NewDataset()
	for tag, element := range d.Elements {
		copied := *element
		switch v := element.Value.(type) {
		case []*Dataset:
			items := make([]*Dataset, len(v))
			for i, item := range v {
				items[i] = item.Clone()
			}
			copied.Value = items
		case []byte:
			copied.Value = slices.Clone(v)
		case []string:
			copied.Value = slices.Clone(v)
		case []uint16:
			copied.Value = slices.Clone(v)
		case []uint32:
			copied.Value = slices.Clone(v)
		}
		clone.Elements[tag] = &copied
	}
	return clone
}

// Equal reports whether both datasets have the same Explicit VR Little Endian encoding.
func (d *Dataset) Equal(other *Dataset) bool {
	if d == nil || other == nil {
		return d == other
	}
	return bytes.Equal(d.EncodeDataset(), other.EncodeDataset())
}

// ParseDataset parses a DICOM dataset from raw bytes (Explicit VR Little Endian)
func ParseDataset(data []byte) (*Dataset, error) {
	dec := &decoder{data: data}
	dataset, _, err := dec.readDataset(0, len(data), false)
	return dataset, err
}

// ParseDatasetWithTransferSyntax parses a dataset using the provided transfer syntax.
func ParseDatasetWithTransferSyntax(data []byte, transferSyntaxUID string) (*Dataset, error) {
	implicit, err := isImplicitVR(transferSyntaxUID)
	if err != nil {
		return nil, err
	}
	if implicit {
		return parseImplicitVRDataset(data)
	}
	return ParseDataset(data)
}

func parseImplicitVRDataset(data []byte) (*Dataset, error) {
	dec := &decoder{data: data, implicit: true}
	dataset, _, err := dec.readDataset(0, len(data), false)
	return dataset, err
}

// isImplicitVR reports how a transfer syntax encodes the dataset. Encapsulated
// syntaxes use Explicit VR Little Endian outside the pixel data.
func isImplicitVR(transferSyntaxUID string) (bool, error) {
	switch transferSyntaxUID {
	case "", TransferSyntaxExplicitVRLittleEndian:
		return false, nil
	case TransferSyntaxImplicitVRLittleEndian:
		return true, nil
	case types.ExplicitVRBigEndian, types.DeflatedExplicitVRLittleEndian:
		return false, fmt.Errorf("%w: %s", derrors.ErrUnsupportedTransfer, transferSyntaxUID)
	default:
		return false, nil
	}
}

func isLongVR(vr string) bool {
	switch vr {
	case VR_OB, VR_OD, VR_OF, VR_OL, VR_OV, VR_OW, VR_SQ, VR_SV, VR_UC, VR_UN, VR_UR, VR_UT, VR_UV:
		return true
	}
	return false
}

// decoder reads elements from data. Positions are byte offsets into data, so a
// decoder over a whole Part 10 file reports item offsets from the preamble.
type decoder struct {
	data     []byte
	implicit bool
	offsets  map[*Dataset]int64
	depth    int
}

func (dec *decoder) truncated(pos int, what string) error {
	return fmt.Errorf("%w: %s at offset %d", derrors.ErrTruncated, what, pos)
}

func (dec *decoder) tagAt(pos int) Tag {
	return Tag{
		Group:   binary.LittleEndian.Uint16(dec.data[pos : pos+2]),
		Element: binary.LittleEndian.Uint16(dec.data[pos+2 : pos+4]),
	}
}

// readHeader reads an element header and returns the tag, VR, value length and
// the position of the value.
func (dec *decoder) readHeader(pos int) (Tag, string, uint32, int, error) {
	data := dec.data
	if pos+8 > len(data) {
		return Tag{}, "", 0, 0, dec.truncated(pos, "element header")
	}
	tag := dec.tagAt(pos)

	// Items and delimiters never carry a VR
	if tag.Group == 0xFFFE || dec.implicit {
		length := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
		vr := ""
		if tag.Group != 0xFFFE {
			vr = determineVR(tag)
			if length == undefinedLength {
				vr = VR_SQ
			}
		}
		return tag, vr, length, pos + 8, nil
	}

	vr := string(data[pos+4 : pos+6])
	if isLongVR(vr) {
		// Long VR: Tag (4) + VR (2) + Reserved (2) + Length (4) = 12 bytes header
		if pos+12 > len(data) {
			return Tag{}, "", 0, 0, dec.truncated(pos, "element header")
		}
		return tag, vr, binary.LittleEndian.Uint32(data[pos+8 : pos+12]), pos + 12, nil
	}
	// Short VR: Tag (4) + VR (2) + Length (2) = 8 bytes header
	return tag, vr, uint32(binary.LittleEndian.Uint16(data[pos+6 : pos+8])), pos + 8, nil
}

func (dec *decoder) readElement(pos int) (*Element, int, error) {
	tag, vr, length, valuePos, err := dec.readHeader(pos)
	if err != nil {
		return nil, 0, err
	}

	if vr == VR_SQ {
		items, next, err := dec.readSequence(valuePos, length)
		if err != nil {
			return nil, 0, fmt.Errorf("sequence %s: %w", tag, err)
		}
		return &Element{Tag: tag, VR: vr, Length: length, Value: items}, next, nil
	}

	if length == undefinedLength {
		return nil, 0, fmt.Errorf("element %s: undefined length is not supported for VR %s", tag, vr)
	}
	end := valuePos + int(length)
	if end > len(dec.data) {
		return nil, 0, dec.truncated(pos, "value of "+tag.String())
	}

	value := parseElementValue(vr, dec.data[valuePos:end])

	// Move to next element (including padding if odd length)
	next := end
	if length%2 == 1 && next < len(dec.data) {
		next++
	}
	return &Element{Tag: tag, VR: vr, Length: length, Value: value}, next, nil
}

// readDataset reads elements in [pos, end). A delimited dataset stops at its
// item delimitation item instead.
func (dec *decoder) readDataset(pos, end int, delimited bool) (*Dataset, int, error) {
	dataset := NewDataset()
	for pos < end {
		if pos+4 <= len(dec.data) && dec.tagAt(pos).Group == 0xFFFE {
			tag := dec.tagAt(pos)
			if delimited && tag == ItemDelimitationItem {
				if pos+8 > len(dec.data) {
					return nil, 0, dec.truncated(pos, "item delimitation")
				}
				return dataset, pos + 8, nil
			}
			return nil, 0, fmt.Errorf("unexpected %s at offset %d", tag, pos)
		}

		element, next, err := dec.readElement(pos)
		if err != nil {
			return nil, 0, err
		}
		if next > end {
			return nil, 0, dec.truncated(pos, "item containing "+element.Tag.String())
		}
		dataset.Elements[element.Tag] = element
		pos = next
	}
	if delimited {
		return nil, 0, dec.truncated(pos, "item delimitation")
	}
	return dataset, pos, nil
}

func (dec *decoder) readSequence(pos int, length uint32) ([]*Dataset, int, error) {
	if dec.depth >= maxSequenceDepth {
		return nil, 0, fmt.Errorf("%w: more than %d levels at offset %d", derrors.ErrNestingTooDeep, maxSequenceDepth, pos)
	}
	dec.depth++
	defer func() { dec.depth-- }()

	end := len(dec.data)
	if length != undefinedLength {
		end = pos + int(length)
		if end > len(dec.data) {
			return nil, 0, dec.truncated(pos, "sequence")
		}
	}

	items := []*Dataset{}
	for pos < end {
		tag, _, itemLength, valuePos, err := dec.readHeader(pos)
		if err != nil {
			return nil, 0, err
		}
		switch tag {
		case SequenceDelimitationItem:
			return items, valuePos, nil
		case Item:
		default:
			return nil, 0, fmt.Errorf("unexpected %s in sequence at offset %d", tag, pos)
		}

		var item *Dataset
		if itemLength == undefinedLength {
			item, valuePos, err = dec.readDataset(valuePos, len(dec.data), true)
		} else {
			itemEnd := valuePos + int(itemLength)
			if itemEnd > end {
				return nil, 0, dec.truncated(pos, "item")
			}
			item, _, err = dec.readDataset(valuePos, itemEnd, false)
			valuePos = itemEnd
		}
		if err != nil {
			return nil, 0, err
		}
		if dec.offsets != nil {
			dec.offsets[item] = int64(pos)
		}
		items = append(items, item)
		pos = valuePos
	}

	if length == undefinedLength {
		return nil, 0, dec.truncated(pos, "sequence delimitation")
	}
	return items, pos, nil
}

// parseElementValue converts the raw value bytes according to the VR
func parseElementValue(vr string, data []byte) interface{} {
	if len(data) == 0 {
		return ""
	}

	switch vr {
	case VR_US:
		if len(data) < 2 {
			return slices.Clone(data)
		}
		values := make([]uint16, len(data)/2)
		for i := range values {
			values[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
		if len(values) == 1 {
			return values[0]
		}
		return values
	case VR_UL:
		if len(data) < 4 {
			return slices.Clone(data)
		}
		values := make([]uint32, len(data)/4)
		for i := range values {
			values[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
		if len(values) == 1 {
			return values[0]
		}
		return values
	case VR_AT, VR_FD, VR_FL, VR_OB, VR_OD, VR_OF, VR_OL, VR_OV, VR_OW,
		VR_SL, VR_SS, VR_SV, VR_UN, VR_UV:
		return slices.Clone(data)
	}

	return trimText(data)
}

// trimText removes null padding and surrounding whitespace
func trimText(data []byte) string {
	value := string(data)
	if idx := strings.IndexByte(value, 0); idx != -1 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}

// EncodeDataset encodes a dataset to bytes (Explicit VR Little Endian)
func (d *Dataset) EncodeDataset() []byte {
	enc := &encoder{}
	enc.writeDataset(d)
	return enc.buf
}

// EncodeDatasetWithTransferSyntax encodes a dataset using the provided transfer syntax.
func EncodeDatasetWithTransferSyntax(dataset *Dataset, transferSyntaxUID string) ([]byte, error) {
	if dataset == nil {
		return nil, nil
	}

	implicit, err := isImplicitVR(transferSyntaxUID)
	if err != nil {
		return nil, err
	}
	if implicit {
		return encodeImplicitVRDataset(dataset), nil
	}
	return dataset.EncodeDataset(), nil
}

func encodeImplicitVRDataset(dataset *Dataset) []byte {
	enc := &encoder{implicit: true}
	enc.writeDataset(dataset)
	return enc.buf
}

// encoder appends elements to buf in ascending tag order. When offsets is set it
// records the position in buf of every sequence item it writes.
type encoder struct {
	buf      []byte
	implicit bool
	offsets  map[*Dataset]int64
}

func (enc *encoder) putTag(tag Tag) {
	enc.buf = binary.LittleEndian.AppendUint16(enc.buf, tag.Group)
	enc.buf = binary.LittleEndian.AppendUint16(enc.buf, tag.Element)
}

func (enc *encoder) writeDataset(d *Dataset) {
	if d == nil {
		return
	}
	for _, tag := range d.SortedTags() {
		enc.writeElement(d.Elements[tag])
	}
}

func (enc *encoder) writeElement(element *Element) {
	if items, ok := element.Value.([]*Dataset); ok {
		enc.writeSequence(element.Tag, items)
		return
	}

	vr := element.VR
	if vr == "" {
		vr = determineVR(element.Tag)
	}

	valueBytes := encodeElementValue(element)
	// DICOM requires even lengths
	if len(valueBytes)%2 == 1 {
		valueBytes = append(valueBytes, paddingByte(vr))
	}

	enc.putTag(element.Tag)
	switch {
	case enc.implicit:
		enc.buf = binary.LittleEndian.AppendUint32(enc.buf, uint32(len(valueBytes)))
	case isLongVR(vr):
		// Long VR format: VR (2 bytes) + Reserved (2 bytes) + Length (4 bytes)
		enc.buf = append(enc.buf, vr...)
		enc.buf = append(enc.buf, 0x00, 0x00)
		enc.buf = binary.LittleEndian.AppendUint32(enc.buf, uint32(len(valueBytes)))
	default:
		// Short VR format: VR (2 bytes) + Length (2 bytes)
		if len(valueBytes) > 0xFFFE {
			valueBytes = valueBytes[:0xFFFE]
		}
		enc.buf = append(enc.buf, vr...)
		enc.buf = binary.LittleEndian.AppendUint16(enc.buf, uint16(len(valueBytes)))
	}
	enc.buf = append(enc.buf, valueBytes...)
}

// writeSequence writes items with explicit lengths, patched once each item is written.
func (enc *encoder) writeSequence(tag Tag, items []*Dataset) {
	enc.putTag(tag)
	if !enc.implicit {
		enc.buf = append(enc.buf, VR_SQ...)
		enc.buf = append(enc.buf, 0x00, 0x00)
	}
	lengthPos := len(enc.buf)
	enc.buf = binary.LittleEndian.AppendUint32(enc.buf, 0)
	start := len(enc.buf)

	for _, item := range items {
		itemPos := len(enc.buf)
		enc.putTag(Item)
		enc.buf = binary.LittleEndian.AppendUint32(enc.buf, 0)
		if enc.offsets != nil && item != nil {
			enc.offsets[item] = int64(itemPos)
		}
		enc.writeDataset(item)
		binary.LittleEndian.PutUint32(enc.buf[itemPos+4:], uint32(len(enc.buf)-itemPos-8))
	}

	binary.LittleEndian.PutUint32(enc.buf[lengthPos:], uint32(len(enc.buf)-start))
}

func paddingByte(vr string) byte {
	switch vr {
	case VR_UI, VR_OB, VR_UN:
		return 0x00
	}
	return 0x20
}

// encodeElementValue encodes an element value to bytes
func encodeElementValue(element *Element) []byte {
	switch v := element.Value.(type) {
	case string:
		// Remove any existing null terminators, padding is added by the caller
		return []byte(strings.TrimRight(v, "\x00"))
	case []string:
		joined := strings.Join(v, "\\")
		joined = strings.TrimRight(joined, "\x00")
		return []byte(joined)
	case []byte:
		return v
	case int:
		return []byte(fmt.Sprintf("%d", v))
	case uint16:
		return binary.LittleEndian.AppendUint16(nil, v)
	case []uint16:
		result := make([]byte, 0, len(v)*2)
		for _, n := range v {
			result = binary.LittleEndian.AppendUint16(result, n)
		}
		return result
	case uint32:
		return binary.LittleEndian.AppendUint32(nil, v)
	case []uint32:
		result := make([]byte, 0, len(v)*4)
		for _, n := range v {
			result = binary.LittleEndian.AppendUint32(result, n)
		}
		return result
	case nil:
		return nil
	default:
		return []byte(fmt.Sprintf("%v", v))
	}
}

// Codec encodes and parses bare datasets in one transfer syntax.
type Codec struct {
	TransferSyntaxUID string
}

// EncodeDataset encodes a dataset in the codec's transfer syntax
func (c Codec) EncodeDataset(dataset *Dataset) ([]byte, error) {
	return EncodeDatasetWithTransferSyntax(dataset, c.TransferSyntaxUID)
}

// ParseDataset parses a dataset in the codec's transfer syntax
func (c Codec) ParseDataset(data []byte) (*Dataset, error) {
	return ParseDatasetWithTransferSyntax(data, c.TransferSyntaxUID)
}
