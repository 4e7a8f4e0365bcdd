// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// DashboardViewModel holds everything the dashboard page renders.
type DashboardViewModel struct {
	CSRFToken   string
	Alerts      []AlertViewModel
	Settings    SettingsViewModel
	Toasts      []ToastViewModel
	Recent      []HistoryEntryViewModel
	Stats       StatsViewModel
	SyncEnabled bool
	LastSync    string // empty when no sync has run
	SyncError   string
}

// AlertViewModel holds presentation-ready data for one active alert card.
type AlertViewModel struct {
	ID          string
	Type        string // error, warning, info
	Kind        string
	ProductName string
	Message     string
	BadgeClass  string
	DetailsJSON string // posted back verbatim on dismiss
	NotesHTML   string // sanitized; empty when the product has no notes
}

// SettingsViewModel holds the values shown in the settings form.
type SettingsViewModel struct {
	LowStockThreshold     int
	ExpiryWarningDays     int
	ExpiryAlertsEnabled   bool
	LowStockAlertsEnabled bool
	MovementAlertsEnabled bool
}

// ToastViewModel holds a one-shot notification.
type ToastViewModel struct {
	Title   string
	Message string
	Type    string
}

// HistoryEntryViewModel holds one row of the recent dismissals table.
type HistoryEntryViewModel struct {
	ID          string
	Type        string
	ProductName string
	DismissedAt string
}

// StatsViewModel summarizes dismissal counts.
type StatsViewModel struct {
	Total    int
	Errors   int
	Warnings int
	Info     int
}
