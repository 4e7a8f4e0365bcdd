package httphandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/application"
	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

const maxRequestBody = 1 << 20

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	settingsSvc *application.SettingsService
	alertStore  *application.AlertStore
	alertFeed   *application.AlertFeed
	syncSvc     *application.SyncService
	loc         *time.Location
	now         func() time.Time
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. loc is the
// zone used to interpret date-only history filters.
func NewHandler(
	settingsSvc *application.SettingsService,
	alertStore *application.AlertStore,
	alertFeed *application.AlertFeed,
	syncSvc *application.SyncService,
	loc *time.Location,
	logger *slog.Logger,
) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		settingsSvc: settingsSvc,
		alertStore:  alertStore,
		alertFeed:   alertFeed,
		syncSvc:     syncSvc,
		loc:         loc,
		now:         time.Now,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return ApplyMiddleware(mux, logger)
}

// RegisterRoutes registers the REST API routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("GET /api/v1/settings", h.GetSettings)
	mux.HandleFunc("PATCH /api/v1/settings", h.PatchSettings)
	mux.HandleFunc("PUT /api/v1/settings/{key}", h.PutSetting)
	mux.HandleFunc("POST /api/v1/evaluate", h.Evaluate)

	mux.HandleFunc("GET /api/v1/alerts", h.ListAlerts)
	mux.HandleFunc("POST /api/v1/alerts/dismissals", h.DismissAlert)
	mux.HandleFunc("DELETE /api/v1/alerts/dismissals", h.ClearDismissals)
	mux.HandleFunc("GET /api/v1/alerts/dismissed", h.ListDismissed)
	mux.HandleFunc("GET /api/v1/alerts/dismissed/{id}", h.GetDismissed)
	mux.HandleFunc("GET /api/v1/alerts/history", h.History)
	mux.HandleFunc("GET /api/v1/alerts/history/export", h.ExportHistory)
	mux.HandleFunc("GET /api/v1/alerts/stats", h.Stats)

	mux.HandleFunc("POST /api/v1/inventory/refresh", h.RefreshInventory)
}

// Health returns a health check response including the last sync outcome.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Time:   h.now().UTC().Format(time.RFC3339),
	}
	if h.syncSvc != nil {
		resp.SyncEnabled = h.syncSvc.Enabled()
		last, err := h.syncSvc.LastSync()
		if !last.IsZero() {
			resp.LastSync = last.UTC().Format(time.RFC3339)
		}
		if err != nil {
			resp.LastSyncError = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSettings returns the current settings.
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	h.writeSettings(w)
}

// PatchSettings applies a partial settings update. Unknown fields are rejected.
func (h *Handler) PatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch model.SettingsPatch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.settingsSvc.UpdateSettings(r.Context(), patch)
	h.writeSettings(w)
}

// PutSetting updates a single setting from a user-entered value.
func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := model.SettingKey(r.PathValue("key"))

	var req UpdateSettingRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.settingsSvc.UpdateSetting(r.Context(), key, rawScalar(req.Value))
	switch {
	case errors.Is(err, application.ErrUnknownSettingKey):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown setting %q", key))
		return
	case errors.Is(err, application.ErrInvalidSettingValue):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid value for %q: expected true or false", key))
		return
	case err != nil:
		h.logger.Error("failed to update setting", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeSettings(w)
}

func (h *Handler) writeSettings(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, SettingsResponse{
		Settings: h.settingsSvc.Settings(),
		Loaded:   h.settingsSvc.IsLoaded(),
	})
}

// Evaluate classifies an ad-hoc quantity and expiration date against the
// current settings.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var expiration *time.Time
	if strings.TrimSpace(req.ExpirationDate) != "" {
		t, err := parseTimeParam(req.ExpirationDate, time.UTC, false)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid expirationDate: expected RFC 3339 or YYYY-MM-DD")
			return
		}
		expiration = &t
	}

	quantity := application.ParseQuantity(rawScalar(req.Quantity))

	writeJSON(w, http.StatusOK, EvaluateResponse{
		Quantity:       quantity,
		StockLevel:     application.ComputeStockLevel(quantity, h.settingsSvc.Settings()),
		IsStockLow:     h.settingsSvc.IsStockLow(quantity),
		IsStockOut:     h.settingsSvc.IsStockOut(quantity),
		ExpiryStatus:   h.settingsSvc.ExpiryStatus(expiration),
		IsExpiringSoon: h.settingsSvc.IsProductExpiringSoon(expiration),
		IsExpired:      h.settingsSvc.IsProductExpired(expiration),
	})
}

// ListAlerts returns the active, non-dismissed alerts.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alertFeed.ActiveAlerts(r.Context())
	if err != nil {
		h.logger.Error("failed to compute active alerts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		resp = append(resp, toAlertResponse(a))
	}

	writeJSON(w, http.StatusOK, resp)
}

// DismissAlert records a dismissal.
func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	var req DismissAlertRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.alertStore.DismissAlert(r.Context(), req.ID, model.AlertType(req.Type), req.ProductName, req.Details)
	if errors.Is(err, application.ErrInvalidAlert) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to dismiss alert", "id", req.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, DismissedStatusResponse{ID: req.ID, Dismissed: true})
}

// ClearDismissals wipes the dismissed set and history. The caller must pass
// confirm=true.
func (h *Handler) ClearDismissals(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "clearing dismissed alerts is irreversible: pass confirm=true")
		return
	}

	h.alertStore.ClearDismissedAlerts(r.Context())
	h.logger.Info("dismissed alerts cleared")

	w.WriteHeader(http.StatusNoContent)
}

// ListDismissed returns the dismissed alert identifiers.
func (h *Handler) ListDismissed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, DismissedListResponse{IDs: h.alertStore.DismissedAlerts()})
}

// GetDismissed reports whether a single alert is dismissed.
func (h *Handler) GetDismissed(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	writeJSON(w, http.StatusOK, DismissedStatusResponse{ID: id, Dismissed: h.alertStore.IsAlertDismissed(id)})
}

// History returns dismissal history filtered by type and date range, most
// recent first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHistoryFilter(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toHistoryResponse(h.alertStore.GetAlertHistory(filter)))
}

// ExportHistory streams the filtered history as a CSV attachment.
func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHistoryFilter(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := h.alertStore.GetAlertHistory(filter)

	var buf bytes.Buffer
	if err := application.WriteHistoryCSV(&buf, entries); err != nil {
		h.logger.Error("failed to export alert history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	filename := fmt.Sprintf("alert-history-%s.csv", h.now().In(h.loc).Format(time.DateOnly))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Stats returns dismissal statistics.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toStatsResponse(h.alertStore.GetAlertStats()))
}

// RefreshInventory runs an inventory sync and waits for it to finish.
func (h *Handler) RefreshInventory(w http.ResponseWriter, r *http.Request) {
	if h.syncSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "inventory sync is not configured")
		return
	}

	err := h.syncSvc.Refresh(r.Context())
	if errors.Is(err, application.ErrSyncDisabled) {
		writeError(w, http.StatusServiceUnavailable, "inventory sync is not configured")
		return
	}
	if err != nil {
		h.logger.Error("manual inventory refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, "inventory refresh failed")
		return
	}

	last, _ := h.syncSvc.LastSync()
	writeJSON(w, http.StatusOK, RefreshResponse{
		Status:   "synced",
		LastSync: last.UTC().Format(time.RFC3339),
	})
}

// decodeBody decodes a size-limited JSON request body into v, rejecting
// unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// rawScalar renders a JSON string, number or boolean as the text a user would
// have typed. null and absent values yield "".
func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// parseHistoryFilter reads type, start and end query parameters. Either bound
// may be omitted. A date-only end covers the whole day.
func parseHistoryFilter(r *http.Request, loc *time.Location) (model.HistoryFilter, error) {
	q := r.URL.Query()
	var filter model.HistoryFilter

	if v := q.Get("type"); v != "" {
		t := model.AlertType(v)
		if !t.Valid() {
			return filter, fmt.Errorf("invalid type %q: expected error, warning or info", v)
		}
		filter.Type = t
	}

	startRaw, endRaw := q.Get("start"), q.Get("end")
	if startRaw == "" && endRaw == "" {
		return filter, nil
	}

	rng := model.DateRange{
		Start: time.Time{},
		End:   time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC),
	}
	if startRaw != "" {
		t, err := parseTimeParam(startRaw, loc, false)
		if err != nil {
			return filter, errors.New("invalid start: expected RFC 3339 or YYYY-MM-DD")
		}
		rng.Start = t
	}
	if endRaw != "" {
		t, err := parseTimeParam(endRaw, loc, true)
		if err != nil {
			return filter, errors.New("invalid end: expected RFC 3339 or YYYY-MM-DD")
		}
		rng.End = t
	}
	if rng.End.Before(rng.Start) {
		return filter, errors.New("end is before start")
	}

	filter.Range = &rng
	return filter, nil
}

// parseTimeParam parses an RFC 3339 timestamp or a date in loc. With
// endOfDay set, a date resolves to the last instant of that day.
func parseTimeParam(s string, loc *time.Location, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return d, nil
}
