package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

// InventoryClient defines the driven port for the remote inventory API.
type InventoryClient interface {
	// FetchProducts returns every product with its current quantity and
	// expiration date.
	FetchProducts(ctx context.Context) ([]model.Product, error)

	// FetchMovements returns stock adjustments that occurred at or after since.
	FetchMovements(ctx context.Context, since time.Time) ([]model.StockMovement, error)
}
