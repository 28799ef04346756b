package dicomdir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caio-sobreiro/dicomdir/dicom"
	derrors "github.com/caio-sobreiro/dicomdir/errors"
)

func flatRecord(term string, next, child int) FlatRecord {
	ds := dicom.NewDataset()
	ds.AddElement(dicom.DirectoryRecordType, dicom.VR_CS, term)
	return FlatRecord{DataSet: ds, Next: next, Child: child}
}

func TestFlatten(t *testing.T) {
	assert := assert.New(t)
	d := sampleDir(t)

	records := Flatten(d)
	require.Len(t, records, 6)

	// P1 -> ST1 -> SE1 -> IM1, IM2; P2
	assert.Equal(5, records[0].Next)
	assert.Equal(1, records[0].Child)
	assert.Equal(2, records[1].Child)
	assert.Equal(3, records[2].Child)
	assert.Equal(4, records[3].Next)
	assert.Equal(NoIndex, records[4].Next)
	assert.Equal(NoIndex, records[5].Next)
	assert.Equal(NoIndex, records[5].Child)
	assert.Equal([]string{"DICOM", "SE1", "IM2"}, records[4].FileParts)
	assert.Equal("SERIES", records[2].DataSet.GetString(dicom.DirectoryRecordType))

	records[0].DataSet.AddElement(dicom.PatientID, dicom.VR_LO, "CHANGED")
	assert.Equal("P1", d.FirstRoot().DataSet().GetString(dicom.PatientID), "flattened datasets are copies")
}

func TestRebuild(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		d := sampleDir(t)
		records := Flatten(d)

		rebuilt, err := Rebuild(records)
		require.NoError(t, err)
		assertSameRecords(t, records, Flatten(rebuilt))
	})

	t.Run("RootIsFirstUnreferenced", func(t *testing.T) {
		records := []FlatRecord{
			flatRecord("STUDY", NoIndex, NoIndex),
			flatRecord("PATIENT", NoIndex, 0),
		}
		d, err := Rebuild(records)
		require.NoError(t, err)
		assert.Equal(t, 1, d.FirstRoot().ID())
		assert.Equal(t, []int{1, 0}, ids(d.Walk()))
	})

	t.Run("EveryUnreferencedRecordIsRoot", func(t *testing.T) {
		records := []FlatRecord{
			flatRecord("PATIENT", NoIndex, NoIndex),
			flatRecord("STUDY", NoIndex, NoIndex),
			flatRecord("PATIENT", NoIndex, 1),
			flatRecord("PATIENT", NoIndex, NoIndex),
		}
		d, err := Rebuild(records)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 2, 1, 3}, ids(d.Walk()))
		assert.Equal(t, []int{0, 2, 3}, ids(d.Roots()))
		assert.Len(t, Flatten(d), len(records))
	})

	t.Run("RootsKeepTheirSiblings", func(t *testing.T) {
		records := []FlatRecord{
			flatRecord("PATIENT", 1, NoIndex),
			flatRecord("PATIENT", NoIndex, NoIndex),
			flatRecord("PATIENT", NoIndex, NoIndex),
		}
		d, err := Rebuild(records)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, ids(d.Roots()))
	})

	t.Run("FilePartsFromDataSet", func(t *testing.T) {
		r := flatRecord("IMAGE", NoIndex, NoIndex)
		r.DataSet.AddElement(dicom.ReferencedFileID, dicom.VR_CS, []string{"DICOM", "IM1"})

		d, err := Rebuild([]FlatRecord{r})
		require.NoError(t, err)
		assert.Equal(t, []string{"DICOM", "IM1"}, d.FirstRoot().FileParts())
	})

	t.Run("UnknownWithoutTerm", func(t *testing.T) {
		d := New()
		require.NoError(t, d.SetFirstRoot(d.NewEntryFromDataSet(nil)))

		records := Flatten(d)
		assert.Equal(t, "UNKNOWN", records[0].DataSet.GetString(dicom.DirectoryRecordType))

		rebuilt, err := Rebuild(records)
		require.NoError(t, err)
		assert.Equal(t, RecordUnknown, rebuilt.FirstRoot().Type())
	})

	t.Run("LongSiblingChain", func(t *testing.T) {
		const n = 20000
		records := make([]FlatRecord, n+1)
		records[0] = flatRecord("SERIES", NoIndex, 1)
		for i := 1; i <= n; i++ {
			next := i + 1
			if i == n {
				next = NoIndex
			}
			records[i] = flatRecord("IMAGE", next, NoIndex)
		}
		d, err := Rebuild(records)
		require.NoError(t, err)
		assert.Len(t, ids(d.FirstRoot().Children()), n)
	})

	t.Run("Empty", func(t *testing.T) {
		d, err := Rebuild(nil)
		require.NoError(t, err)
		assert.Nil(t, d.FirstRoot())
	})

	tests := []struct {
		name    string
		records []FlatRecord
		want    error
	}{
		{
			name:    "DanglingIndex",
			records: []FlatRecord{flatRecord("PATIENT", 3, NoIndex)},
		},
		{
			name:    "NegativeIndex",
			records: []FlatRecord{flatRecord("PATIENT", NoIndex, -7)},
		},
		{
			name: "DuplicateReference",
			records: []FlatRecord{
				flatRecord("PATIENT", 2, 1),
				flatRecord("STUDY", NoIndex, 2),
				flatRecord("SERIES", NoIndex, NoIndex),
			},
			want: derrors.ErrAlreadyLinked,
		},
		{
			name: "Cycle",
			records: []FlatRecord{
				flatRecord("PATIENT", 1, NoIndex),
				flatRecord("PATIENT", 0, NoIndex),
			},
			want: derrors.ErrCycle,
		},
		{
			name:    "SelfChild",
			records: []FlatRecord{flatRecord("PATIENT", NoIndex, 0)},
			want:    derrors.ErrCycle,
		},
		{
			name:    "NilDataSet",
			records: []FlatRecord{{Next: NoIndex, Child: NoIndex}},
		},
		{
			name: "MissingRecordType",
			records: []FlatRecord{
				flatRecord("PATIENT", NoIndex, 1),
				{DataSet: dicom.NewDataset(), Next: NoIndex, Child: NoIndex},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Rebuild(tt.records)
			assert.Nil(t, d, "no partial tree is returned")
			assert.ErrorIs(t, err, derrors.ErrMalformedRecord)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			var recordErr *derrors.MalformedRecordError
			assert.True(t, errors.As(err, &recordErr))
		})
	}
}
