// SQLite-backed ObjectStore, grounded on the teacher's
// SQLiteStore.Init (liliang-cn/sqvect, pkg/core/store_init.go): same
// WAL/busy-timeout DSN and connection-pool sizing, rebuilt over a
// two-column (objects, pivots) schema instead of the teacher's
// documents/embeddings/collections schema, since the core only needs
// an id-addressable vector blob and a pivot flag.
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/annidx/annidx"
	"github.com/annidx/annidx/internal/encoding"
	"github.com/annidx/annidx/internal/logging"
)

// SQLiteStore is a modernc.org/sqlite-backed ObjectStore.
type SQLiteStore struct {
	db  *sql.DB
	log logging.Logger
}

// OpenSQLiteStore opens (creating if necessary) a SQLite database at
// path and ensures its schema exists.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_cache_size=-2000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, annidx.WrapError("dataset.OpenSQLiteStore", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(2 * time.Hour)

	s := &SQLiteStore{db: db, log: logging.Nop()}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// SetLogger installs a structured logger for store diagnostics.
func (s *SQLiteStore) SetLogger(l logging.Logger) { s.log = l }

// Close releases the underlying database connection pool.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS objects (
		id INTEGER PRIMARY KEY,
		label TEXT,
		vector BLOB NOT NULL,
		is_pivot INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_objects_pivot ON objects(is_pivot);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return annidx.WrapError("dataset.SQLiteStore.createSchema", err)
	}
	return nil
}

// Put inserts or replaces an object.
func (s *SQLiteStore) Put(ctx context.Context, o *annidx.Object, isPivot bool) error {
	enc, err := encoding.EncodeVector(o.Vector)
	if err != nil {
		return annidx.WrapError("dataset.SQLiteStore.Put", err)
	}
	pivotFlag := 0
	if isPivot {
		pivotFlag = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO objects (id, label, vector, is_pivot) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET label=excluded.label, vector=excluded.vector, is_pivot=excluded.is_pivot`,
		o.ID, o.Label.String(), enc, pivotFlag,
	)
	if err != nil {
		return annidx.WrapError("dataset.SQLiteStore.Put", err)
	}
	return nil
}

func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM objects`).Scan(&n); err != nil {
		return 0, annidx.WrapError("dataset.SQLiteStore.Len", err)
	}
	return n, nil
}

func (s *SQLiteStore) Object(ctx context.Context, id uint32) (*annidx.Object, error) {
	var labelStr string
	var vecBytes []byte
	row := s.db.QueryRowContext(ctx, `SELECT label, vector FROM objects WHERE id = ?`, id)
	if err := row.Scan(&labelStr, &vecBytes); err != nil {
		if err == sql.ErrNoRows {
			return nil, annidx.WrapError("dataset.SQLiteStore.Object", annidx.ErrParameter)
		}
		return nil, annidx.WrapError("dataset.SQLiteStore.Object", err)
	}
	vec, err := encoding.DecodeVector(vecBytes)
	if err != nil {
		return nil, annidx.WrapError("dataset.SQLiteStore.Object", err)
	}
	return &annidx.Object{ID: id, Label: parseLabel(labelStr), Vector: vec}, nil
}

func (s *SQLiteStore) All(ctx context.Context) ([]*annidx.Object, error) {
	return s.query(ctx, `SELECT id, label, vector FROM objects ORDER BY id`)
}

func (s *SQLiteStore) Pivots(ctx context.Context) ([]*annidx.Object, error) {
	out, err := s.query(ctx, `SELECT id, label, vector FROM objects WHERE is_pivot = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return s.All(ctx)
	}
	return out, nil
}

func (s *SQLiteStore) query(ctx context.Context, sqlText string) ([]*annidx.Object, error) {
	rows, err := s.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, annidx.WrapError("dataset.SQLiteStore.query", err)
	}
	defer rows.Close()

	var out []*annidx.Object
	for rows.Next() {
		var id uint32
		var labelStr string
		var vecBytes []byte
		if err := rows.Scan(&id, &labelStr, &vecBytes); err != nil {
			return nil, annidx.WrapError("dataset.SQLiteStore.query", err)
		}
		vec, err := encoding.DecodeVector(vecBytes)
		if err != nil {
			return nil, annidx.WrapError("dataset.SQLiteStore.query", err)
		}
		out = append(out, &annidx.Object{ID: id, Label: parseLabel(labelStr), Vector: vec})
	}
	if err := rows.Err(); err != nil {
		return nil, annidx.WrapError("dataset.SQLiteStore.query", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func parseLabel(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}
	}
	return id
}

var _ ObjectStore = (*SQLiteStore)(nil)
