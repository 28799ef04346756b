package dicom

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// defaultRepertoire decodes values of datasets without Specific Character Set.
// It is a superset of the ASCII default repertoire.
var defaultRepertoire encoding.Encoding = charmap.Windows1252

// charsetLabels maps Specific Character Set defined terms (PS3.2 D.6.2) to the
// labels understood by charset.Lookup. ISO 2022 terms share the label of their
// single-byte counterpart; code extensions are not interpreted.
var charsetLabels = map[string]string{
	"ISO_IR 6":   "us-ascii",
	"ISO_IR 100": "iso-8859-1",
	"ISO_IR 101": "iso-8859-2",
	"ISO_IR 109": "iso-8859-3",
	"ISO_IR 110": "iso-8859-4",
	"ISO_IR 144": "iso-8859-5",
	"ISO_IR 127": "iso-8859-6",
	"ISO_IR 126": "iso-8859-7",
	"ISO_IR 138": "iso-8859-8",
	"ISO_IR 148": "iso-8859-9",
	"ISO_IR 13":  "shift_jis",
	"ISO_IR 166": "tis-620",
	"ISO_IR 192": "utf-8",
	"ISO_IR 87":  "iso-2022-jp",
	"ISO_IR 159": "iso-2022-jp",
	"ISO_IR 149": "euc-kr",
	"GB18030":    "gb18030",
	"GBK":        "gbk",
}

// LookupCharset returns the encoding for a Specific Character Set defined term.
// A nil encoding means the default repertoire.
func LookupCharset(term string) (encoding.Encoding, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	label, ok := charsetLabels[strings.Replace(term, "ISO 2022 IR ", "ISO_IR ", 1)]
	if !ok {
		return nil, fmt.Errorf("unknown specific character set %q", term)
	}
	if label == "us-ascii" {
		return nil, nil
	}
	enc, _ := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("no encoding for character set label %q", label)
	}
	return enc, nil
}

// characterSet returns the encoding named by the first Specific Character Set value
func (d *Dataset) characterSet() (encoding.Encoding, error) {
	terms := d.GetStrings(SpecificCharacterSet)
	if len(terms) == 0 {
		return nil, nil
	}
	return LookupCharset(terms[0])
}

// GetUnicodeString returns a text value decoded with the dataset's Specific Character Set
func (d *Dataset) GetUnicodeString(tag Tag) (string, error) {
	raw := d.GetString(tag)
	if raw == "" {
		return "", nil
	}

	enc, err := d.characterSet()
	if err != nil {
		return "", err
	}
	if enc == nil {
		if isASCII(raw) {
			return raw, nil
		}
		enc = defaultRepertoire
	}

	decoded, err := enc.NewDecoder().String(raw)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", tag, err)
	}
	return decoded, nil
}

// SetUnicodeString encodes value with the dataset's Specific Character Set and stores it
func (d *Dataset) SetUnicodeString(tag Tag, vr string, value string) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("value for %s is not valid UTF-8", tag)
	}

	enc, err := d.characterSet()
	if err != nil {
		return err
	}
	if enc == nil {
		if !isASCII(value) {
			return fmt.Errorf("value for %s needs a Specific Character Set", tag)
		}
		d.AddElement(tag, vr, value)
		return nil
	}

	encoded, err := enc.NewEncoder().String(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", tag, err)
	}
	d.AddElement(tag, vr, encoded)
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
