package media

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/caio-sobreiro/dicomdir/dicomdir"
)

// DirectoryFileName is the name of the DICOMDIR file at the media root
const DirectoryFileName = "DICOMDIR"

// Option configures a Scanner
type Option func(*Scanner)

// WithLogger sets the scanner's logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithWorkers bounds the number of files read concurrently
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithCharacterSet sets the Specific Character Set used for records whose
// instance declares none
func WithCharacterSet(term string) Option {
	return func(s *Scanner) {
		s.charset = term
	}
}

// Scanner reads the instances stored under a media root
type Scanner struct {
	workers int
	charset string
	logger  *slog.Logger
}

// NewScanner creates a scanner reading 4 files at a time unless configured otherwise
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{workers: 4}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scanner) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Scan walks root and reads the header of every DICOM file below it. Files
// that are not DICOM are skipped. Instances are returned in path order with
// FileParts relative to root.
func (s *Scanner) Scan(ctx context.Context, root string) ([]*Instance, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Dir(path) == filepath.Clean(root) && strings.EqualFold(d.Name(), DirectoryFileName) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)

	s.log().InfoContext(ctx, "Scanning media",
		"root", root,
		"files", len(paths),
		"workers", s.workers)

	results := make([]*Instance, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			inst, err := ReadInstance(path)
			if err != nil {
				s.log().DebugContext(ctx, "Skipping file",
					"path", path,
					"error", err)
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			inst.FileParts = strings.Split(filepath.ToSlash(rel), "/")
			if err := dicomdir.CheckFileID(inst.FileParts); err != nil {
				s.log().WarnContext(ctx, "File ID not conformant for interchange media",
					"path", path,
					"error", err)
			}
			results[i] = inst
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	instances := slices.DeleteFunc(results, func(inst *Instance) bool { return inst == nil })
	s.log().InfoContext(ctx, "Scanned media",
		"root", root,
		"instances", len(instances),
		"skipped", len(paths)-len(instances))
	return instances, nil
}

// Build scans root and returns a directory of its instances
func (s *Scanner) Build(ctx context.Context, root string) (*dicomdir.Dir, error) {
	instances, err := s.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	return NewDirectory(Group(instances), s.charset, dicomdir.WithLogger(s.logger))
}
