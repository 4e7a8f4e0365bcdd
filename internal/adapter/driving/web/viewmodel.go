package web

import (
	"encoding/json"
	"time"

	vm "github.com/ericfisherdev/stockpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

// badgeClassForType maps an alert type to its CSS badge class.
func badgeClassForType(t model.AlertType) string {
	switch t {
	case model.AlertTypeError:
		return "badge-error"
	case model.AlertTypeWarning:
		return "badge-warning"
	default:
		return "badge-info"
	}
}

// toAlertViewModel converts a domain Alert to an AlertViewModel. notes is the
// product's raw markdown; pass "" when unavailable.
func toAlertViewModel(a model.Alert, notes string) vm.AlertViewModel {
	details := a.Details
	if details == nil {
		details = model.AlertDetails{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	return vm.AlertViewModel{
		ID:          a.ID,
		Type:        string(a.Type),
		Kind:        string(a.Kind),
		ProductName: a.ProductName,
		Message:     a.Message,
		BadgeClass:  badgeClassForType(a.Type),
		DetailsJSON: string(detailsJSON),
		NotesHTML:   RenderMarkdown(notes),
	}
}

// toAlertViewModels converts alerts, looking up product notes by product ID.
func toAlertViewModels(alerts []model.Alert, notesByProduct map[string]string) []vm.AlertViewModel {
	out := make([]vm.AlertViewModel, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertViewModel(a, notesByProduct[a.ProductID]))
	}
	return out
}

func toSettingsViewModel(s model.Settings) vm.SettingsViewModel {
	return vm.SettingsViewModel{
		LowStockThreshold:     s.LowStockThreshold,
		ExpiryWarningDays:     s.ExpiryWarningDays,
		ExpiryAlertsEnabled:   s.ExpiryAlertsEnabled,
		LowStockAlertsEnabled: s.LowStockAlertsEnabled,
		MovementAlertsEnabled: s.MovementAlertsEnabled,
	}
}

func toToastViewModels(notifications []model.Notification) []vm.ToastViewModel {
	out := make([]vm.ToastViewModel, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, vm.ToastViewModel{
			Title:   n.Title,
			Message: n.Message,
			Type:    string(n.Type),
		})
	}
	return out
}

// toHistoryViewModels formats entries for display in loc.
func toHistoryViewModels(entries []model.AlertHistoryEntry, loc *time.Location) []vm.HistoryEntryViewModel {
	out := make([]vm.HistoryEntryViewModel, 0, len(entries))
	for _, e := range entries {
		out = append(out, vm.HistoryEntryViewModel{
			ID:          e.ID,
			Type:        string(e.Type),
			ProductName: e.ProductName,
			DismissedAt: e.DismissedAt.In(loc).Format("2006-01-02 15:04"),
		})
	}
	return out
}

func toStatsViewModel(s model.AlertStats) vm.StatsViewModel {
	return vm.StatsViewModel{
		Total:    s.Total,
		Errors:   s.ByType[model.AlertTypeError],
		Warnings: s.ByType[model.AlertTypeWarning],
		Info:     s.ByType[model.AlertTypeInfo],
	}
}
