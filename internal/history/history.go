// Package history persists every committed schema version in a local
// SQLite log. The log is an audit trail and a recovery source: a database
// reopened over an existing log resumes from the latest recorded version.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/snappy"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vellumdb/vellum/internal/errors"
	"github.com/vellumdb/vellum/internal/schema"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS schema_versions (
	version      INTEGER PRIMARY KEY,
	fingerprint  TEXT NOT NULL,
	schema_blob  BLOB NOT NULL,
	created_at   INTEGER NOT NULL
)`

// Record is one logged schema version. Schema is nil on listing calls that
// return metadata only.
type Record struct {
	Version     int
	Fingerprint string
	CreatedAt   time.Time
	Schema      *schema.Schema
}

// Log is a SQLite-backed schema version log. Writes are serialized through
// a single connection; the updater is the only writer.
type Log struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the version log at path.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.NewHistoryError(errors.CodeHistoryWriteFailed,
			fmt.Sprintf("open version log %s", path), err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, errors.NewHistoryError(errors.CodeHistoryWriteFailed,
			fmt.Sprintf("initialize version log %s", path), err)
	}
	return &Log{db: db, path: path}, nil
}

// Record appends a committed schema version to the log. The schema's JSON
// form is snappy-compressed; its fingerprint is stored alongside for
// integrity checks on restore.
func (l *Log) Record(ctx context.Context, s *schema.Schema) error {
	fp, err := s.Fingerprint()
	if err != nil {
		return errors.NewHistoryError(errors.CodeHistoryWriteFailed,
			fmt.Sprintf("fingerprint schema version %d", s.Version), err)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.NewHistoryError(errors.CodeHistoryWriteFailed,
			fmt.Sprintf("marshal schema version %d", s.Version), err)
	}
	blob := snappy.Encode(nil, raw)

	_, err = l.db.ExecContext(ctx,
		"INSERT INTO schema_versions (version, fingerprint, schema_blob, created_at) VALUES (?, ?, ?, ?)",
		s.Version, fp, blob, time.Now().Unix(),
	)
	if err != nil {
		return errors.NewHistoryError(errors.CodeHistoryWriteFailed,
			fmt.Sprintf("insert schema version %d", s.Version), err)
	}
	return nil
}

// Get returns the full record for one version.
func (l *Log) Get(ctx context.Context, version int) (*Record, error) {
	row := l.db.QueryRowContext(ctx,
		"SELECT version, fingerprint, schema_blob, created_at FROM schema_versions WHERE version = ?",
		version,
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewHistoryError(errors.CodeVersionNotFound,
			fmt.Sprintf("schema version %d not found", version), nil)
	}
	return rec, err
}

// Latest returns the highest recorded version, or a VERSION_NOT_FOUND
// error when the log is empty.
func (l *Log) Latest(ctx context.Context) (*Record, error) {
	row := l.db.QueryRowContext(ctx,
		"SELECT version, fingerprint, schema_blob, created_at FROM schema_versions ORDER BY version DESC LIMIT 1",
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewHistoryError(errors.CodeVersionNotFound,
			"version log is empty", nil)
	}
	return rec, err
}

// List returns metadata for every recorded version in ascending order. The
// schema blobs are not decoded.
func (l *Log) List(ctx context.Context) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT version, fingerprint, created_at FROM schema_versions ORDER BY version ASC",
	)
	if err != nil {
		return nil, errors.NewHistoryError(errors.CodeHistoryWriteFailed, "list schema versions", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var createdAt int64
		if err := rows.Scan(&rec.Version, &rec.Fingerprint, &createdAt); err != nil {
			return nil, errors.NewHistoryError(errors.CodeHistoryWriteFailed, "scan schema version", err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewHistoryError(errors.CodeHistoryWriteFailed, "list schema versions", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var blob []byte
	var createdAt int64
	if err := row.Scan(&rec.Version, &rec.Fingerprint, &blob, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, errors.NewHistoryError(errors.CodeHistoryWriteFailed, "scan schema version", err)
	}
	rec.CreatedAt = time.Unix(createdAt, 0)

	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, errors.NewHistoryError(errors.CodeHistoryWriteFailed,
			fmt.Sprintf("decompress schema version %d", rec.Version), err)
	}
	var s schema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.NewHistoryError(errors.CodeHistoryWriteFailed,
			fmt.Sprintf("decode schema version %d", rec.Version), err)
	}
	rec.Schema = &s

	// The stored fingerprint guards against a corrupted or tampered blob.
	fp, err := s.Fingerprint()
	if err != nil {
		return nil, errors.NewHistoryError(errors.CodeHistoryWriteFailed,
			fmt.Sprintf("refingerprint schema version %d", rec.Version), err)
	}
	if fp != rec.Fingerprint {
		return nil, errors.NewHistoryError(errors.CodeHistoryWriteFailed,
			fmt.Sprintf("schema version %d fingerprint mismatch", rec.Version), nil)
	}
	return &rec, nil
}
