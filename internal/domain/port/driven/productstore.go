package driven

import (
	"context"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

// ProductStore defines the driven port for the local product snapshot.
// ReplaceAll swaps the full snapshot atomically.
type ProductStore interface {
	ReplaceAll(ctx context.Context, products []model.Product) error
	ListAll(ctx context.Context) ([]model.Product, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
}
