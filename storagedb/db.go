// Package storagedb is the persistence layer: typed row access on a
// single embedded SQL store, transactions, and a process-wide write
// lock. It opens the database the same way a client/server driver
// would (database/sql, ping on open, connection pool tuning) but
// targets a single-file embedded store so the engine can close and
// reopen the same database file across runs.
package storagedb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/shuttlecourt/tournament-engine/changelog"
)

// Store wraps the single sqlite connection pool plus the write mutex
// that serializes mutating transactions against accidental re-entry;
// readers may proceed concurrently.
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
	changes *changelog.Log
	logger  *slog.Logger
}

// Open connects to (creating if absent) a single SQLite file at path and
// applies the fixed twelve-table schema. changeLogEnabled toggles
// change-log recording.
func Open(path string, changeLogEnabled bool, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storagedb: open %q: %w", path, err)
	}
	// SQLite is single-writer; the Store's writeMu is the real
	// serialization point, but capping the pool too avoids surprising
	// "database is locked" errors from concurrent readers during a write.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("storagedb: ping %q: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storagedb: apply schema: %w", err)
	}

	s := &Store{
		db:      db,
		changes: changelog.NewLog(changeLogEnabled),
		logger:  logger,
	}

	if err := s.enforceSchemaVersion(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) enforceSchemaVersion(ctx context.Context) error {
	var current string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config_kv WHERE key = 'DatabaseVersion'`).Scan(&current)
	switch {
	case err == sql.ErrNoRows:
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO config_kv (key, value) VALUES ('DatabaseVersion', ?)`, schemaVersion)
		if err != nil {
			return fmt.Errorf("storagedb: seed schema version: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("storagedb: read schema version: %w", err)
	case current != schemaVersion:
		return fmt.Errorf("storagedb: database schema version %q does not match engine version %q", current, schemaVersion)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying *sql.DB for read-only queries that do not
// need the write lock; concurrent readers are always allowed.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Changes returns the change log, present regardless of whether logging
// is enabled (it simply stays empty when disabled).
func (s *Store) Changes() *changelog.Log {
	return s.changes
}

// Tx is a mutating-transaction handle. It wraps *sql.Tx with helpers that
// also append to the change log when enabled, so the log and the data
// are always written by the same transaction.
type Tx struct {
	tx      *sql.Tx
	changes *changelog.Batch
}

// WithTx runs fn inside exactly one transaction; every mutating
// operation exposed by the engine goes through this. The write mutex is
// held for the whole call. fn's returned error rolls the transaction
// back; a nil error commits.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storagedb: begin transaction: %w", err)
	}

	batch := s.changes.BeginBatch()
	tx := &Tx{tx: sqlTx, changes: batch}

	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed after transaction error",
				slog.Any("error", err), slog.Any("rollback_error", rbErr))
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("storagedb: commit transaction: %w", err)
	}
	s.changes.CommitBatch(batch)
	return nil
}

// SQL exposes the raw *sql.Tx for callers (domain/engine packages) that
// need to issue arbitrary statements; row-count helpers live in rows.go.
func (t *Tx) SQL() *sql.Tx {
	return t.tx
}

// LogInsert/LogUpdate/LogDelete append one change-log entry to the
// transaction's batch. Callers invoke these immediately after the
// corresponding Exec succeeds.
func (t *Tx) LogInsert(table string, id int64) { t.changes.Append(table, id, changelog.ActionInsert) }
func (t *Tx) LogUpdate(table string, id int64) { t.changes.Append(table, id, changelog.ActionUpdate) }
func (t *Tx) LogDelete(table string, id int64) { t.changes.Append(table, id, changelog.ActionDelete) }

// NextSeq atomically increments and returns the named sequence counter,
// used for the seqNum columns the engine maintains on every row insert.
func (t *Tx) NextSeq(ctx context.Context, name string) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO sequence (name, value) VALUES (?, 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1`, name)
	if err != nil {
		return 0, fmt.Errorf("storagedb: advance sequence %q: %w", name, err)
	}
	_ = res
	var value int64
	if err := t.tx.QueryRowContext(ctx, `SELECT value FROM sequence WHERE name = ?`, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("storagedb: read sequence %q: %w", name, err)
	}
	return value, nil
}
