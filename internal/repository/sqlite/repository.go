package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/mamadbah2/ceqc/internal/domain/models"
)

var (
	// ErrStorage wraps every failure of the underlying database. The store
	// never retries; callers decide.
	ErrStorage = errors.New("storage failure")
	// ErrNotFound is returned when deleting an id that does not exist.
	ErrNotFound = errors.New("record not found")
)

// Repository defines the record store operations.
type Repository interface {
	InsertSlump(ctx context.Context, rec models.SlumpRecord) (models.SlumpRecord, error)
	InsertResist(ctx context.Context, recs []models.ResistRecord) ([]models.ResistRecord, error)
	InsertPernos(ctx context.Context, rec models.PernosRecord) (models.PernosRecord, error)
	Import(ctx context.Context, snap models.Snapshot) (models.Snapshot, error)
	Delete(ctx context.Context, coll models.Collection, id string) error
	Clear(ctx context.Context, coll models.Collection) error
	ClearAll(ctx context.Context) error
	ListSlump(ctx context.Context) ([]models.SlumpRecord, error)
	ListResist(ctx context.Context) ([]models.ResistRecord, error)
	ListPernos(ctx context.Context) ([]models.PernosRecord, error)
	Snapshot(ctx context.Context) (models.Snapshot, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS slump (
	id TEXT PRIMARY KEY,
	date TEXT NOT NULL,
	labor TEXT NOT NULL,
	created_at TEXT NOT NULL,
	payload BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_slump_date ON slump(date);
CREATE INDEX IF NOT EXISTS idx_slump_labor ON slump(labor);

CREATE TABLE IF NOT EXISTS resist (
	id TEXT PRIMARY KEY,
	date TEXT NOT NULL,
	labor TEXT NOT NULL,
	created_at TEXT NOT NULL,
	payload BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_resist_date ON resist(date);
CREATE INDEX IF NOT EXISTS idx_resist_labor ON resist(labor);

CREATE TABLE IF NOT EXISTS pernos (
	id TEXT PRIMARY KEY,
	date TEXT NOT NULL,
	labor TEXT NOT NULL,
	created_at TEXT NOT NULL,
	payload BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pernos_date ON pernos(date);
CREATE INDEX IF NOT EXISTS idx_pernos_labor ON pernos(labor);
`

// Store persists each collection as JSON payloads in its own SQLite table.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Open creates (if needed) and opens the record database at path.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		path = "ceqc.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer; one connection keeps writes ordered.
	db.SetMaxOpenConns(1)

	s := New(db, logger)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened database without touching its schema.
func New(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:     db,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Migrate creates the collection tables and their date/labor indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: create schema: %w", ErrStorage, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertSlump stores one slump record under a freshly generated id.
func (s *Store) InsertSlump(ctx context.Context, rec models.SlumpRecord) (models.SlumpRecord, error) {
	rec.Meta = s.identity()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return insertRow(ctx, tx, models.CollectionSlump, rec.Meta, rec)
	})
	if err != nil {
		return models.SlumpRecord{}, err
	}
	s.logger.Debug("slump record inserted", zap.String("id", rec.ID), zap.String("date", rec.Date))
	return rec, nil
}

// InsertResist stores a batch of resist records in one transaction: either
// every record is saved or none is.
func (s *Store) InsertResist(ctx context.Context, recs []models.ResistRecord) ([]models.ResistRecord, error) {
	out := make([]models.ResistRecord, len(recs))
	for i, rec := range recs {
		rec.Meta = s.identity()
		out[i] = rec
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range out {
			if err := insertRow(ctx, tx, models.CollectionResist, rec.Meta, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("resist records inserted", zap.Int("count", len(out)))
	return out, nil
}

// InsertPernos stores one bolt record under a freshly generated id.
func (s *Store) InsertPernos(ctx context.Context, rec models.PernosRecord) (models.PernosRecord, error) {
	rec.Meta = s.identity()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return insertRow(ctx, tx, models.CollectionPernos, rec.Meta, rec)
	})
	if err != nil {
		return models.PernosRecord{}, err
	}
	s.logger.Debug("pernos record inserted", zap.String("id", rec.ID), zap.String("date", rec.Date))
	return rec, nil
}

// Import merges a snapshot into the store. Every record gets a new id so
// existing data is never overwritten. The original creation time is kept
// when present.
func (s *Store) Import(ctx context.Context, snap models.Snapshot) (models.Snapshot, error) {
	out := models.Snapshot{
		Slump:  make([]models.SlumpRecord, len(snap.Slump)),
		Resist: make([]models.ResistRecord, len(snap.Resist)),
		Pernos: make([]models.PernosRecord, len(snap.Pernos)),
	}
	for i, r := range snap.Slump {
		r.Meta = s.rekey(r.Meta)
		out.Slump[i] = r
	}
	for i, r := range snap.Resist {
		r.Meta = s.rekey(r.Meta)
		out.Resist[i] = r
	}
	for i, r := range snap.Pernos {
		r.Meta = s.rekey(r.Meta)
		out.Pernos[i] = r
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, r := range out.Slump {
			if err := insertRow(ctx, tx, models.CollectionSlump, r.Meta, r); err != nil {
				return err
			}
		}
		for _, r := range out.Resist {
			if err := insertRow(ctx, tx, models.CollectionResist, r.Meta, r); err != nil {
				return err
			}
		}
		for _, r := range out.Pernos {
			if err := insertRow(ctx, tx, models.CollectionPernos, r.Meta, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Snapshot{}, err
	}
	s.logger.Info("snapshot imported",
		zap.Int("slump", len(out.Slump)),
		zap.Int("resist", len(out.Resist)),
		zap.Int("pernos", len(out.Pernos)))
	return out, nil
}

// Delete removes one record by id.
func (s *Store) Delete(ctx context.Context, coll models.Collection, id string) error {
	table, err := tableName(coll)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete %s/%s: %w", ErrStorage, coll, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete %s/%s: %w", ErrStorage, coll, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, coll, id)
	}
	return nil
}

// Clear removes every record of one collection.
func (s *Store) Clear(ctx context.Context, coll models.Collection) error {
	table, err := tableName(coll)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("%w: clear %s: %w", ErrStorage, coll, err)
	}
	s.logger.Info("collection cleared", zap.String("collection", string(coll)))
	return nil
}

// ClearAll empties the three collections in one transaction.
func (s *Store) ClearAll(ctx context.Context) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, coll := range models.Collections {
			table, err := tableName(coll)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("%w: clear %s: %w", ErrStorage, coll, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("all collections cleared")
	return nil
}

// ListSlump returns the whole slump collection in insertion order.
func (s *Store) ListSlump(ctx context.Context) ([]models.SlumpRecord, error) {
	return list[models.SlumpRecord](ctx, s.db, models.CollectionSlump)
}

// ListResist returns the whole resist collection in insertion order.
func (s *Store) ListResist(ctx context.Context) ([]models.ResistRecord, error) {
	return list[models.ResistRecord](ctx, s.db, models.CollectionResist)
}

// ListPernos returns the whole pernos collection in insertion order.
func (s *Store) ListPernos(ctx context.Context) ([]models.PernosRecord, error) {
	return list[models.PernosRecord](ctx, s.db, models.CollectionPernos)
}

// Snapshot reads the three collections inside one transaction so reports
// never mix states from before and after a concurrent write.
func (s *Store) Snapshot(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if snap.Slump, err = list[models.SlumpRecord](ctx, tx, models.CollectionSlump); err != nil {
			return err
		}
		if snap.Resist, err = list[models.ResistRecord](ctx, tx, models.CollectionResist); err != nil {
			return err
		}
		snap.Pernos, err = list[models.PernosRecord](ctx, tx, models.CollectionPernos)
		return err
	})
	if err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) identity() models.Meta {
	return models.Meta{ID: s.newID(), CreatedAt: s.now().UTC()}
}

func (s *Store) rekey(m models.Meta) models.Meta {
	fresh := s.identity()
	if !m.CreatedAt.IsZero() {
		fresh.CreatedAt = m.CreatedAt.UTC()
	}
	return fresh
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStorage, err)
	}
	defer func() {
		if retErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Error("rollback failed", zap.Error(rbErr))
			}
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrStorage, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func insertRow(ctx context.Context, db execer, coll models.Collection, meta models.Meta, rec models.Record) error {
	table, err := tableName(coll)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", coll, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, date, labor, created_at, payload) VALUES (?, ?, ?, ?, ?)`,
		meta.ID, rec.RecordDate(), rec.RecordLabor(), meta.CreatedAt.Format(time.RFC3339Nano), payload)
	if err != nil {
		return fmt.Errorf("%w: insert %s: %w", ErrStorage, coll, err)
	}
	return nil
}

func list[T any](ctx context.Context, db queryer, coll models.Collection) ([]T, error) {
	table, err := tableName(coll)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT payload FROM `+table+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("%w: select %s: %w", ErrStorage, coll, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]T, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %w", ErrStorage, coll, err)
		}
		var rec T
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %w", ErrStorage, coll, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %w", ErrStorage, coll, err)
	}
	return out, nil
}

func tableName(coll models.Collection) (string, error) {
	switch coll {
	case models.CollectionSlump, models.CollectionResist, models.CollectionPernos:
		return string(coll), nil
	default:
		return "", fmt.Errorf("unknown collection %q", coll)
	}
}
