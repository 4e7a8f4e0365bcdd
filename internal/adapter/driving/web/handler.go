// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/stockpanel/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/stockpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/stockpanel/internal/application"
	"github.com/ericfisherdev/stockpanel/internal/domain/model"
	"github.com/ericfisherdev/stockpanel/internal/domain/port/driven"
)

const pageTitle = "StockPanel"

// ToastSource yields pending notifications exactly once.
type ToastSource interface {
	Drain() []model.Notification
}

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	settingsSvc  *application.SettingsService
	alertStore   *application.AlertStore
	alertFeed    *application.AlertFeed
	productStore driven.ProductStore
	syncSvc      *application.SyncService
	toasts       ToastSource
	loc          *time.Location
	logger       *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. syncSvc and
// toasts may be nil.
func NewHandler(
	settingsSvc *application.SettingsService,
	alertStore *application.AlertStore,
	alertFeed *application.AlertFeed,
	productStore driven.ProductStore,
	syncSvc *application.SyncService,
	toasts ToastSource,
	loc *time.Location,
	logger *slog.Logger,
) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		settingsSvc:  settingsSvc,
		alertStore:   alertStore,
		alertFeed:    alertFeed,
		productStore: productStore,
		syncSvc:      syncSvc,
		toasts:       toasts,
		loc:          loc,
		logger:       logger,
	}
}

// Dashboard renders the main dashboard page with the full HTML layout.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	alerts, err := h.alertFeed.ActiveAlerts(ctx)
	if err != nil {
		h.logger.Error("failed to compute active alerts", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	stats := h.alertStore.GetAlertStats()
	data := vm.DashboardViewModel{
		CSRFToken: csrfToken(w, r),
		Alerts:    toAlertViewModels(alerts, h.productNotes(ctx, alerts)),
		Settings:  toSettingsViewModel(h.settingsSvc.Settings()),
		Recent:    toHistoryViewModels(stats.Recent, h.loc),
		Stats:     toStatsViewModel(stats),
	}
	if h.toasts != nil {
		data.Toasts = toToastViewModels(h.toasts.Drain())
	}
	if h.syncSvc != nil && h.syncSvc.Enabled() {
		data.SyncEnabled = true
		last, syncErr := h.syncSvc.LastSync()
		if !last.IsZero() {
			data.LastSync = last.In(h.loc).Format("2006-01-02 15:04")
		}
		if syncErr != nil {
			data.SyncError = syncErr.Error()
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	layout := templates.Layout(pageTitle, pages.Dashboard(data))
	if err := layout.Render(ctx, w); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// productNotes collects notes for the products referenced by alerts. Lookup
// failures drop the notes but not the alert.
func (h *Handler) productNotes(ctx context.Context, alerts []model.Alert) map[string]string {
	notes := make(map[string]string)
	for _, a := range alerts {
		if a.ProductID == "" {
			continue
		}
		if _, seen := notes[a.ProductID]; seen {
			continue
		}
		p, err := h.productStore.GetByID(ctx, a.ProductID)
		if err != nil {
			h.logger.Warn("failed to load product notes", "product_id", a.ProductID, "error", err)
			notes[a.ProductID] = ""
			continue
		}
		if p == nil {
			notes[a.ProductID] = ""
			continue
		}
		notes[a.ProductID] = p.Notes
	}
	return notes
}

// DismissAlert handles the dismiss form on an alert card.
func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	if !h.checkForm(w, r) {
		return
	}

	var details model.AlertDetails
	if raw := strings.TrimSpace(r.PostFormValue("details")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &details); err != nil {
			http.Error(w, "details must be a JSON object", http.StatusBadRequest)
			return
		}
	}

	err := h.alertStore.DismissAlert(
		r.Context(),
		r.PostFormValue("id"),
		model.AlertType(r.PostFormValue("type")),
		r.PostFormValue("productName"),
		details,
	)
	if errors.Is(err, application.ErrInvalidAlert) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("failed to dismiss alert", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	redirectHome(w, r)
}

// ClearAlerts wipes dismissals and history. The form must carry confirm=yes.
func (h *Handler) ClearAlerts(w http.ResponseWriter, r *http.Request) {
	if !h.checkForm(w, r) {
		return
	}
	if r.PostFormValue("confirm") != "yes" {
		http.Error(w, "confirmation required", http.StatusBadRequest)
		return
	}

	h.alertStore.ClearDismissedAlerts(r.Context())
	redirectHome(w, r)
}

// UpdateSettings saves the settings form. Blank or invalid thresholds fall
// back to their defaults. Unchecked checkboxes are absent from the form and
// mean false.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if !h.checkForm(w, r) {
		return
	}

	lowStock := application.ParseThreshold(
		r.PostFormValue(string(model.SettingLowStockThreshold)), model.DefaultLowStockThreshold)
	expiryDays := application.ParseThreshold(
		r.PostFormValue(string(model.SettingExpiryWarningDays)), model.DefaultExpiryWarningDays)
	expiryAlerts := r.PostFormValue(string(model.SettingExpiryAlerts)) == "true"
	lowStockAlerts := r.PostFormValue(string(model.SettingLowStockAlerts)) == "true"
	movementAlerts := r.PostFormValue(string(model.SettingMovementAlerts)) == "true"

	h.settingsSvc.UpdateSettings(r.Context(), model.SettingsPatch{
		LowStockThreshold:     &lowStock,
		ExpiryWarningDays:     &expiryDays,
		ExpiryAlertsEnabled:   &expiryAlerts,
		LowStockAlertsEnabled: &lowStockAlerts,
		MovementAlertsEnabled: &movementAlerts,
	})
	redirectHome(w, r)
}

// checkForm parses the form body and validates the CSRF token, writing the
// error response itself when it returns false.
func (h *Handler) checkForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	if !validateCSRF(r) {
		h.logger.Warn("rejected form without valid csrf token", "path", r.URL.Path)
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return false
	}
	return true
}

const maxFormBytes = 64 << 10

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
