package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.KVStore = (*KVRepo)(nil)

// KVRepo is the SQLite implementation of the KVStore port interface. Each
// key maps to one row whose value is replaced wholesale on Save.
type KVRepo struct {
	db  *DB
	now func() time.Time
}

// NewKVRepo creates a new KVRepo backed by the given DB.
func NewKVRepo(db *DB) *KVRepo {
	return &KVRepo{db: db, now: time.Now}
}

// Load returns the stored value for key, or (nil, nil) if no row exists.
func (r *KVRepo) Load(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM kv_store WHERE key = ?`

	var value []byte
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Save inserts or replaces the value for key.
func (r *KVRepo) Save(ctx context.Context, key string, value []byte) error {
	const query = `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if value == nil {
		value = []byte{}
	}
	if _, err := r.db.Writer.ExecContext(ctx, query, key, value, formatTime(r.now())); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// Delete removes the row for key. No-op if the key does not exist.
func (r *KVRepo) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_store WHERE key = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
