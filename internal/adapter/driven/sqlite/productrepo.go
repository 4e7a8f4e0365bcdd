package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
	"github.com/ericfisherdev/stockpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProductStore = (*ProductRepo)(nil)

// ProductRepo is the SQLite implementation of the ProductStore port interface.
type ProductRepo struct {
	db *DB
}

// NewProductRepo creates a new ProductRepo backed by the given DB.
func NewProductRepo(db *DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// ReplaceAll swaps the entire product snapshot inside one transaction, so
// readers see either the old or the new snapshot.
func (r *ProductRepo) ReplaceAll(ctx context.Context, products []model.Product) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	const insert = `
		INSERT OR REPLACE INTO products (id, name, sku, quantity, expiration_date, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, p := range products {
		var expiration any
		if p.ExpirationDate != nil {
			expiration = formatTime(*p.ExpirationDate)
		}
		if _, err := tx.ExecContext(ctx, insert,
			p.ID, p.Name, p.SKU, p.Quantity, expiration, p.Notes, formatTime(p.UpdatedAt),
		); err != nil {
			return fmt.Errorf("insert product %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit products: %w", err)
	}
	return nil
}

// ListAll returns every product ordered by name.
func (r *ProductRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	const query = `
		SELECT id, name, sku, quantity, expiration_date, notes, updated_at
		FROM products
		ORDER BY name, id
	`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	result := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return result, nil
}

// GetByID returns the product with the given ID, or (nil, nil) if absent.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	const query = `
		SELECT id, name, sku, quantity, expiration_date, notes, updated_at
		FROM products
		WHERE id = ?
	`
	p, err := scanProduct(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (model.Product, error) {
	var p model.Product
	var expiration sql.NullString
	var updatedAt string

	if err := s.Scan(&p.ID, &p.Name, &p.SKU, &p.Quantity, &expiration, &p.Notes, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("scan product: %w", err)
	}

	if expiration.Valid {
		t, err := parseTime(expiration.String)
		if err != nil {
			return p, fmt.Errorf("parse expiration_date for %q: %w", p.ID, err)
		}
		p.ExpirationDate = &t
	}

	t, err := parseTime(updatedAt)
	if err != nil {
		return p, fmt.Errorf("parse updated_at for %q: %w", p.ID, err)
	}
	p.UpdatedAt = t
	return p, nil
}
