package dicomdir

import (
	"strings"

	"github.com/caio-sobreiro/dicomdir/dicom"
	"github.com/caio-sobreiro/dicomdir/types"
)

type matchKey struct {
	tag   dicom.Tag
	value string
	match func(pattern, value string) bool
}

// Find returns the attached records at the query level whose keys, and whose
// ancestors' keys, match the request. Keys of levels below the query level are
// ignored. Results are in pre-order.
func (d *Dir) Find(q *types.QueryRequest) []*Entry {
	if q == nil {
		return nil
	}
	target, ok := queryLevelDepth[q.Level]
	if !ok {
		return nil
	}

	keys := [...][]matchKey{
		{
			{dicom.PatientID, q.PatientID, matchWildcard},
			{dicom.PatientName, q.PatientName, matchPersonName},
		},
		{
			{dicom.StudyInstanceUID, q.StudyInstanceUID, matchUID},
			{dicom.StudyID, q.StudyID, matchWildcard},
			{dicom.StudyDate, q.StudyDate, matchDate},
			{dicom.AccessionNumber, q.AccessionNumber, matchWildcard},
		},
		{
			{dicom.SeriesInstanceUID, q.SeriesInstanceUID, matchUID},
			{dicom.Modality, q.Modality, matchWildcard},
			{dicom.SeriesNumber, q.SeriesNumber, matchWildcard},
		},
		{
			{dicom.ReferencedSOPInstanceUIDInFile, q.SOPInstanceUID, matchUID},
			{dicom.InstanceNumber, q.InstanceNumber, matchWildcard},
		},
	}

	var found []*Entry
	stack := []int{}
	if d.first != noEntry {
		stack = append(stack, d.first)
	}
	for len(stack) > 0 {
		e := d.entries[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if e.next != noEntry {
			stack = append(stack, e.next)
		}

		depth := recordDepth(e.typ)
		if depth < 0 {
			if e.child != noEntry {
				stack = append(stack, e.child)
			}
			continue
		}
		if depth > target || !matchAll(e.dataSet, keys[depth]) {
			continue
		}
		if depth == target {
			found = append(found, e)
			continue
		}
		if e.child != noEntry {
			stack = append(stack, e.child)
		}
	}
	return found
}

var queryLevelDepth = map[types.QueryLevel]int{
	types.QueryLevelPatient: 0,
	types.QueryLevelStudy:   1,
	types.QueryLevelSeries:  2,
	types.QueryLevelImage:   3,
}

// recordDepth maps a record type to its query level depth, -1 for records
// outside the patient hierarchy.
func recordDepth(t RecordType) int {
	switch {
	case t == RecordPatient:
		return 0
	case t == RecordStudy:
		return 1
	case t == RecordSeries:
		return 2
	case t.IsInstance():
		return 3
	}
	return -1
}

func matchAll(ds *dicom.Dataset, keys []matchKey) bool {
	for _, k := range keys {
		if k.value == "" {
			continue
		}
		if !k.match(k.value, ds.GetString(k.tag)) {
			return false
		}
	}
	return true
}

func matchUID(pattern, value string) bool {
	return pattern == value
}

func matchPersonName(pattern, value string) bool {
	return matchWildcard(strings.ToUpper(pattern), strings.ToUpper(value))
}

// matchDate accepts a single date or a YYYYMMDD-YYYYMMDD range with either
// bound open.
func matchDate(pattern, value string) bool {
	lower, upper, isRange := strings.Cut(pattern, "-")
	if !isRange {
		return matchWildcard(pattern, value)
	}
	if value == "" {
		return false
	}
	return (lower == "" || value >= lower) && (upper == "" || value <= upper)
}

// matchWildcard matches value against pattern, where * matches any run of
// characters and ? exactly one.
func matchWildcard(pattern, value string) bool {
	p, v := []rune(pattern), []rune(value)
	pi, vi := 0, 0
	star, mark := -1, 0
	for vi < len(v) {
		switch {
		case pi < len(p) && p[pi] == '*':
			star, mark = pi, vi
			pi++
		case pi < len(p) && (p[pi] == '?' || p[pi] == v[vi]):
			pi++
			vi++
		case star >= 0:
			pi = star + 1
			mark++
			vi = mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
