package model

import "time"

// Product is an inventory item as reported by the remote inventory API.
// Quantity is kept in its raw form; classification parses it on demand.
type Product struct {
	ID             string
	Name           string
	SKU            string
	Quantity       string
	ExpirationDate *time.Time // nil when the product does not expire
	Notes          string     // markdown
	UpdatedAt      time.Time
}

// StockMovement is a single stock adjustment reported by the inventory API.
type StockMovement struct {
	ID          string
	ProductID   string
	ProductName string
	Delta       int
	Reason      string
	OccurredAt  time.Time
}
