package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
	"github.com/ericfisherdev/stockpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MovementStore = (*MovementRepo)(nil)

// MovementRepo is the SQLite implementation of the MovementStore port interface.
type MovementRepo struct {
	db *DB
}

// NewMovementRepo creates a new MovementRepo backed by the given DB.
func NewMovementRepo(db *DB) *MovementRepo {
	return &MovementRepo{db: db}
}

// Upsert inserts or updates movements keyed by ID.
func (r *MovementRepo) Upsert(ctx context.Context, movements []model.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT INTO stock_movements (id, product_id, product_name, delta, reason, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			product_id = excluded.product_id,
			product_name = excluded.product_name,
			delta = excluded.delta,
			reason = excluded.reason,
			occurred_at = excluded.occurred_at
	`
	for _, m := range movements {
		if _, err := tx.ExecContext(ctx, query,
			m.ID, m.ProductID, m.ProductName, m.Delta, m.Reason, formatTime(m.OccurredAt),
		); err != nil {
			return fmt.Errorf("upsert movement %q: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit movements: %w", err)
	}
	return nil
}

// ListSince returns movements that occurred at or after since, newest first.
func (r *MovementRepo) ListSince(ctx context.Context, since time.Time) ([]model.StockMovement, error) {
	const query = `
		SELECT id, product_id, product_name, delta, reason, occurred_at
		FROM stock_movements
		WHERE occurred_at >= ?
		ORDER BY occurred_at DESC, id
	`
	rows, err := r.db.Reader.QueryContext(ctx, query, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	result := []model.StockMovement{}
	for rows.Next() {
		var m model.StockMovement
		var occurredAt string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.Delta, &m.Reason, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.OccurredAt, err = parseTime(occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_at for movement %q: %w", m.ID, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movements: %w", err)
	}
	return result, nil
}

// DeleteBefore removes movements older than cutoff.
func (r *MovementRepo) DeleteBefore(ctx context.Context, cutoff time.Time) error {
	const query = `DELETE FROM stock_movements WHERE occurred_at < ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, formatTime(cutoff)); err != nil {
		return fmt.Errorf("delete movements before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return nil
}
