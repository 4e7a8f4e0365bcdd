package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
	"github.com/ericfisherdev/stockpanel/internal/domain/port/driven"
)

// movementWindow is how far back stock movements are considered for alerts.
const movementWindow = 24 * time.Hour

// ComputeProductAlerts evaluates a product against the settings and returns
// the alerts it raises. Expiry and stock rules are gated by their toggles.
func ComputeProductAlerts(p model.Product, settings model.Settings, now time.Time) []model.Alert {
	var alerts []model.Alert

	if settings.ExpiryAlertsEnabled && p.ExpirationDate != nil {
		status := ComputeExpiryStatus(p.ExpirationDate, settings, now)
		details := model.AlertDetails{
			"sku":            p.SKU,
			"expirationDate": p.ExpirationDate.Format(time.DateOnly),
			"status":         string(status.Status),
		}
		if status.Days != nil {
			details["days"] = *status.Days
		}

		switch status.Status {
		case model.ExpiryExpired:
			alerts = append(alerts, model.Alert{
				ID:          model.AlertID(model.AlertKindExpired, p.ID),
				Kind:        model.AlertKindExpired,
				Type:        model.AlertTypeError,
				ProductID:   p.ID,
				ProductName: p.Name,
				Message:     fmt.Sprintf("Expired %s ago", pluralDays(*status.Days)),
				Details:     details,
			})
		case model.ExpiryCritical:
			alerts = append(alerts, model.Alert{
				ID:          model.AlertID(model.AlertKindExpiring, p.ID),
				Kind:        model.AlertKindExpiring,
				Type:        model.AlertTypeError,
				ProductID:   p.ID,
				ProductName: p.Name,
				Message:     expiresInMessage(*status.Days),
				Details:     details,
			})
		case model.ExpiryWarning:
			alerts = append(alerts, model.Alert{
				ID:          model.AlertID(model.AlertKindExpiring, p.ID),
				Kind:        model.AlertKindExpiring,
				Type:        model.AlertTypeWarning,
				ProductID:   p.ID,
				ProductName: p.Name,
				Message:     expiresInMessage(*status.Days),
				Details:     details,
			})
		}
	}

	if settings.LowStockAlertsEnabled {
		quantity := ParseQuantity(p.Quantity)
		details := model.AlertDetails{
			"sku":       p.SKU,
			"quantity":  quantity,
			"threshold": settings.LowStockThreshold,
		}

		switch ComputeStockLevel(quantity, settings) {
		case model.StockOutOfStock:
			alerts = append(alerts, model.Alert{
				ID:          model.AlertID(model.AlertKindOutOfStock, p.ID),
				Kind:        model.AlertKindOutOfStock,
				Type:        model.AlertTypeError,
				ProductID:   p.ID,
				ProductName: p.Name,
				Message:     "Out of stock",
				Details:     details,
			})
		case model.StockLow:
			alerts = append(alerts, model.Alert{
				ID:          model.AlertID(model.AlertKindLowStock, p.ID),
				Kind:        model.AlertKindLowStock,
				Type:        model.AlertTypeWarning,
				ProductID:   p.ID,
				ProductName: p.Name,
				Message:     fmt.Sprintf("Only %d left in stock", quantity),
				Details:     details,
			})
		case model.StockInStock:
		}
	}

	return alerts
}

// ComputeMovementAlert returns an informational alert for a stock movement
// whose magnitude reaches the low stock threshold.
func ComputeMovementAlert(m model.StockMovement, settings model.Settings) (model.Alert, bool) {
	if !settings.MovementAlertsEnabled || m.Delta == 0 {
		return model.Alert{}, false
	}

	magnitude := m.Delta
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude < settings.LowStockThreshold {
		return model.Alert{}, false
	}

	message := fmt.Sprintf("Stock adjusted by %+d", m.Delta)
	if m.Reason != "" {
		message += " (" + m.Reason + ")"
	}

	return model.Alert{
		ID:          model.AlertID(model.AlertKindMovement, m.ID),
		Kind:        model.AlertKindMovement,
		Type:        model.AlertTypeInfo,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Message:     message,
		Details: model.AlertDetails{
			"delta":      m.Delta,
			"reason":     m.Reason,
			"occurredAt": m.OccurredAt.UTC().Format(time.RFC3339),
		},
	}, true
}

func expiresInMessage(days int) string {
	if days == 0 {
		return "Expires today"
	}
	return "Expires in " + pluralDays(days)
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// AlertFeed builds the list of alerts worth showing: everything the current
// settings raise for the product snapshot, minus what the user dismissed.
type AlertFeed struct {
	productStore  driven.ProductStore
	movementStore driven.MovementStore
	settingsSvc   *SettingsService
	alertStore    *AlertStore
	now           func() time.Time
	logger        *slog.Logger
}

// NewAlertFeed creates a new AlertFeed.
func NewAlertFeed(
	ps driven.ProductStore,
	ms driven.MovementStore,
	settingsSvc *SettingsService,
	alertStore *AlertStore,
) *AlertFeed {
	return &AlertFeed{
		productStore:  ps,
		movementStore: ms,
		settingsSvc:   settingsSvc,
		alertStore:    alertStore,
		now:           time.Now,
		logger:        slog.Default(),
	}
}

// WithClock replaces the time source used for expiry and movement windows.
func (f *AlertFeed) WithClock(now func() time.Time) *AlertFeed {
	f.now = now
	return f
}

// ActiveAlerts returns non-dismissed alerts ordered by severity, then product
// name, then ID. A movement store failure is non-fatal: product alerts are
// still returned.
func (f *AlertFeed) ActiveAlerts(ctx context.Context) ([]model.Alert, error) {
	products, err := f.productStore.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	settings := f.settingsSvc.Settings()
	now := f.now()

	var candidates []model.Alert
	for _, p := range products {
		candidates = append(candidates, ComputeProductAlerts(p, settings, now)...)
	}

	if settings.MovementAlertsEnabled && f.movementStore != nil {
		movements, err := f.movementStore.ListSince(ctx, now.Add(-movementWindow))
		if err != nil {
			f.logger.Warn("failed to list stock movements, skipping movement alerts", "error", err)
		}
		for _, m := range movements {
			if a, ok := ComputeMovementAlert(m, settings); ok {
				candidates = append(candidates, a)
			}
		}
	}

	active := make([]model.Alert, 0, len(candidates))
	for _, a := range candidates {
		if f.alertStore.IsAlertDismissed(a.ID) {
			continue
		}
		active = append(active, a)
	}

	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if a.Type != b.Type {
			return a.Type.MoreSevere(b.Type)
		}
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		return a.ID < b.ID
	})

	return active, nil
}
