package driven

import (
	"context"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

// Notifier delivers one-shot user-facing notifications.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}
