// Package store keeps directories in a SQLite index. Each directory is saved as
// its flat record sequence, one row per record, so a stored directory can be
// queried by record type without decoding it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/caio-sobreiro/dicomdir/dicom"
	"github.com/caio-sobreiro/dicomdir/dicomdir"
	derrors "github.com/caio-sobreiro/dicomdir/errors"
	"github.com/caio-sobreiro/dicomdir/interfaces"
	"github.com/caio-sobreiro/dicomdir/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS directories (
	name TEXT PRIMARY KEY,
	file_set_id TEXT,
	instance_uid TEXT,
	header BLOB,
	saved_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS records (
	directory TEXT NOT NULL REFERENCES directories(name) ON DELETE CASCADE,
	idx INTEGER NOT NULL,
	record_type TEXT,
	file_parts TEXT,
	next_idx INTEGER,
	child_idx INTEGER,
	dataset BLOB,
	PRIMARY KEY (directory, idx)
);

CREATE INDEX IF NOT EXISTS idx_records_type ON records(directory, record_type);
`

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store's logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithCodec sets the codec used for record datasets. The default is Explicit VR
// Little Endian.
func WithCodec(codec interfaces.DatasetCodec) Option {
	return func(s *Store) {
		s.codec = codec
	}
}

// Store is a SQLite backed interfaces.DirectoryStore
type Store struct {
	db     *sql.DB
	codec  interfaces.DatasetCodec
	logger *slog.Logger
}

var _ interfaces.DirectoryStore = (*Store)(nil)

// Open opens or creates the index database at path. Use ":memory:" for a
// private in-memory index.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	// An in-memory database lives on a single connection
	db.SetMaxOpenConns(1)

	s := &Store{
		db:    db,
		codec: dicom.Codec{TransferSyntaxUID: types.ExplicitVRLittleEndian},
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}
	return s, nil
}

func (s *Store) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores dir under name, replacing any directory saved under the same name.
// Only entries reachable from the first root are stored.
func (s *Store) Save(ctx context.Context, name string, dir *dicomdir.Dir) error {
	header, err := s.codec.EncodeDataset(dir.Header())
	if err != nil {
		return fmt.Errorf("encoding header of %s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE directory = ?", name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM directories WHERE name = ?", name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO directories (name, file_set_id, instance_uid, header, saved_at)
		VALUES (?, ?, ?, ?, ?)
	`, name, dir.FileSetID(), dir.InstanceUID(), header, time.Now().UTC()); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (directory, idx, record_type, file_parts, next_idx, child_idx, dataset)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	records := dicomdir.Flatten(dir)
	for i, r := range records {
		data, err := s.codec.EncodeDataset(r.DataSet)
		if err != nil {
			return fmt.Errorf("encoding record %d of %s: %w", i, name, err)
		}
		recordType := dicomdir.ParseRecordType(r.DataSet.GetString(dicom.DirectoryRecordType))
		if _, err := stmt.ExecContext(ctx, name, i, recordType.String(),
			strings.Join(r.FileParts, `\`), r.Next, r.Child, data); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.log().DebugContext(ctx, "Saved directory to index",
		"name", name,
		"records", len(records))
	return nil
}

// Load rebuilds the directory saved under name. A missing name fails with
// errors.ErrDirectoryNotFound; inconsistent records fail like dicomdir.Rebuild.
func (s *Store) Load(ctx context.Context, name string) (*dicomdir.Dir, error) {
	var instanceUID string
	var header []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT instance_uid, header FROM directories WHERE name = ?", name).Scan(&instanceUID, &header)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", derrors.ErrDirectoryNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT file_parts, next_idx, child_idx, dataset
		FROM records WHERE directory = ? ORDER BY idx
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []dicomdir.FlatRecord
	for rows.Next() {
		var parts string
		var data []byte
		r := dicomdir.FlatRecord{}
		if err := rows.Scan(&parts, &r.Next, &r.Child, &data); err != nil {
			return nil, err
		}
		if r.DataSet, err = s.codec.ParseDataset(data); err != nil {
			return nil, fmt.Errorf("decoding record %d of %s: %w", len(records), name, err)
		}
		if parts != "" {
			r.FileParts = strings.Split(parts, `\`)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dir, err := dicomdir.Rebuild(records, dicomdir.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("rebuilding %s: %w", name, err)
	}

	headerSet, err := s.codec.ParseDataset(header)
	if err != nil {
		return nil, fmt.Errorf("decoding header of %s: %w", name, err)
	}
	dir.SetHeader(headerSet)
	dir.SetInstanceUID(instanceUID)

	s.log().DebugContext(ctx, "Loaded directory from index",
		"name", name,
		"records", len(records))
	return dir, nil
}

// Names lists the stored directories in name order
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM directories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes the directory saved under name
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM directories WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", derrors.ErrDirectoryNotFound, name)
	}
	_, err = s.db.ExecContext(ctx, "DELETE FROM records WHERE directory = ?", name)
	return err
}

// CountByType counts the stored records of a directory per record type
func (s *Store) CountByType(ctx context.Context, name string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_type, COUNT(*) FROM records
		WHERE directory = ? GROUP BY record_type
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var recordType string
		var n int
		if err := rows.Scan(&recordType, &n); err != nil {
			return nil, err
		}
		counts[recordType] = n
	}
	return counts, rows.Err()
}
