package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

// MovementStore defines the driven port for recently synced stock movements.
// Upsert is idempotent on movement ID.
type MovementStore interface {
	Upsert(ctx context.Context, movements []model.StockMovement) error
	ListSince(ctx context.Context, since time.Time) ([]model.StockMovement, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) error
}
