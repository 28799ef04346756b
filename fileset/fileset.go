// Package fileset builds and opens DICOM file-sets: a media root holding
// instances and the DICOMDIR that indexes them.
package fileset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/caio-sobreiro/dicomdir/config"
	"github.com/caio-sobreiro/dicomdir/dicomdir"
	derrors "github.com/caio-sobreiro/dicomdir/errors"
	"github.com/caio-sobreiro/dicomdir/interfaces"
	"github.com/caio-sobreiro/dicomdir/media"
	"github.com/caio-sobreiro/dicomdir/store"
)

// Option configures a Builder or Open
type Option func(*options)

type options struct {
	logger *slog.Logger
	store  interfaces.DirectoryStore
}

var _ interfaces.DirectoryQuerier = (*dicomdir.Dir)(nil)

// WithLogger sets the logger passed down to scanning, encoding and indexing
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore indexes built directories in store instead of the SQLite index
// named by the configuration
func WithStore(st interfaces.DirectoryStore) Option {
	return func(o *options) {
		o.store = st
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}

// FileSet is a DICOMDIR together with the media root it was read from or written to
type FileSet struct {
	Dir  *dicomdir.Dir
	Root string
	Path string
	// Missing lists referenced files that could not be resolved under Root
	Missing []*derrors.FileReferenceError
}

// Builder writes the DICOMDIR of a media root
type Builder struct {
	cfg  *config.Config
	opts options
}

// NewBuilder creates a builder for the media root of cfg
func NewBuilder(cfg *config.Config, opts ...Option) *Builder {
	return &Builder{cfg: cfg, opts: newOptions(opts)}
}

// Build scans the media root, writes its DICOMDIR and, when an index path is
// configured, saves the directory to the index. Hierarchy violations fail the
// build in strict mode and are logged otherwise.
func (b *Builder) Build(ctx context.Context) (*FileSet, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	logger := b.opts.log()

	scanner := media.NewScanner(
		media.WithWorkers(b.cfg.Workers),
		media.WithCharacterSet(b.cfg.CharacterSet),
		media.WithLogger(b.opts.logger),
	)
	dir, err := scanner.Build(ctx, b.cfg.MediaRoot)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", b.cfg.MediaRoot, err)
	}
	dir.SetFileSetID(b.cfg.FileSetID)

	if err := dir.Validate(); err != nil {
		if b.cfg.Strict {
			return nil, err
		}
		logger.WarnContext(ctx, "Directory does not follow the record hierarchy",
			"root", b.cfg.MediaRoot,
			"error", err)
	}

	path := filepath.Join(b.cfg.MediaRoot, media.DirectoryFileName)
	if err := dir.WriteFile(path); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Wrote DICOMDIR",
		"path", path,
		"file_set_id", dir.FileSetID(),
		"records", dir.Len())

	if b.opts.store != nil || b.cfg.IndexPath != "" {
		if err := b.index(ctx, dir); err != nil {
			return nil, err
		}
	}

	return &FileSet{Dir: dir, Root: b.cfg.MediaRoot, Path: path}, nil
}

func (b *Builder) index(ctx context.Context, dir *dicomdir.Dir) error {
	st := b.opts.store
	if st == nil {
		db, err := store.Open(b.cfg.IndexPath, store.WithLogger(b.opts.logger))
		if err != nil {
			return err
		}
		defer db.Close()
		st = db
	}

	if err := st.Save(ctx, IndexName(b.cfg), dir); err != nil {
		return fmt.Errorf("indexing %s: %w", b.cfg.MediaRoot, err)
	}
	return nil
}

// IndexName is the name a file-set is saved under in the index: its File-set
// ID, or the absolute media root when the ID is empty.
func IndexName(cfg *config.Config) string {
	if cfg.FileSetID != "" {
		return cfg.FileSetID
	}
	if abs, err := filepath.Abs(cfg.MediaRoot); err == nil {
		return abs
	}
	return cfg.MediaRoot
}

// Open reads the DICOMDIR at the media root of cfg and resolves every file it
// references. Unresolved references are reported in FileSet.Missing.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*FileSet, error) {
	o := newOptions(opts)

	decodeOpts := []dicomdir.Option{dicomdir.WithLogger(o.logger)}
	if cfg.Strict {
		decodeOpts = append(decodeOpts, dicomdir.WithStrictHierarchy())
	}

	path := filepath.Join(cfg.MediaRoot, media.DirectoryFileName)
	dir, err := dicomdir.ReadFile(path, decodeOpts...)
	if err != nil {
		return nil, err
	}

	missing, err := media.CheckReferences(ctx, dir, cfg.MediaRoot)
	if err != nil {
		return nil, err
	}
	for _, m := range missing {
		o.log().WarnContext(ctx, "Referenced file not found",
			"file_id", m.Parts,
			"path", m.Path)
	}

	return &FileSet{Dir: dir, Root: cfg.MediaRoot, Path: path, Missing: missing}, nil
}
