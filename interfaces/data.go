package interfaces

import (
	"context"

	"github.com/caio-sobreiro/dicomdir/dicom"
	"github.com/caio-sobreiro/dicomdir/dicomdir"
	"github.com/caio-sobreiro/dicomdir/types"
)

// DatasetCodec encodes and parses record datasets for persistence
type DatasetCodec interface {
	EncodeDataset(dataset *dicom.Dataset) ([]byte, error)
	ParseDataset(data []byte) (*dicom.Dataset, error)
}

// DirectoryStore persists whole directories under a name
type DirectoryStore interface {
	Save(ctx context.Context, name string, dir *dicomdir.Dir) error
	Load(ctx context.Context, name string) (*dicomdir.Dir, error)
	Names(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// DirectoryQuerier answers hierarchical queries against a directory
type DirectoryQuerier interface {
	Find(query *types.QueryRequest) []*dicomdir.Entry
}
