package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status        string `json:"status"`
	Time          string `json:"time"`
	SyncEnabled   bool   `json:"sync_enabled"`
	LastSync      string `json:"last_sync,omitempty"`
	LastSyncError string `json:"last_sync_error,omitempty"`
}

// SettingsResponse wraps the current settings with the load flag so clients
// can tell persisted values from startup defaults.
type SettingsResponse struct {
	Settings model.Settings `json:"settings"`
	Loaded   bool           `json:"loaded"`
}

// UpdateSettingRequest is the JSON body for the single-key settings endpoint.
// Value may be a JSON string, number or boolean.
type UpdateSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// EvaluateRequest is the JSON body for the evaluate endpoint. Quantity may be
// a JSON string or number; ExpirationDate is RFC 3339 or YYYY-MM-DD.
type EvaluateRequest struct {
	Quantity       json.RawMessage `json:"quantity"`
	ExpirationDate string          `json:"expirationDate"`
}

// EvaluateResponse reports every classification for one product.
type EvaluateResponse struct {
	Quantity       int                `json:"quantity"`
	StockLevel     model.StockLevel   `json:"stockLevel"`
	IsStockLow     bool               `json:"isStockLow"`
	IsStockOut     bool               `json:"isStockOut"`
	ExpiryStatus   model.ExpiryStatus `json:"expiryStatus"`
	IsExpiringSoon bool               `json:"isExpiringSoon"`
	IsExpired      bool               `json:"isExpired"`
}

// AlertResponse is the JSON representation of an active alert.
type AlertResponse struct {
	ID          string             `json:"id"`
	Kind        string             `json:"kind"`
	Type        string             `json:"type"`
	ProductID   string             `json:"productId"`
	ProductName string             `json:"productName"`
	Message     string             `json:"message"`
	Details     model.AlertDetails `json:"details"`
}

// DismissAlertRequest is the JSON body for the dismiss endpoint.
type DismissAlertRequest struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	ProductName string             `json:"productName"`
	Details     model.AlertDetails `json:"details"`
}

// DismissedListResponse lists dismissed alert identifiers in dismissal order.
type DismissedListResponse struct {
	IDs []string `json:"ids"`
}

// DismissedStatusResponse reports whether a single alert is dismissed.
type DismissedStatusResponse struct {
	ID        string `json:"id"`
	Dismissed bool   `json:"dismissed"`
}

// HistoryEntryResponse is the JSON representation of a dismissal record.
type HistoryEntryResponse struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	ProductName string             `json:"productName"`
	DismissedAt string             `json:"dismissedAt"`
	Details     model.AlertDetails `json:"details"`
}

// StatsResponse is the JSON representation of dismissal statistics.
type StatsResponse struct {
	Total  int                    `json:"total"`
	ByType map[string]int         `json:"byType"`
	ByDay  map[string]int         `json:"byDay"`
	Recent []HistoryEntryResponse `json:"recent"`
}

// RefreshResponse reports the outcome of a manual inventory sync.
type RefreshResponse struct {
	Status   string `json:"status"`
	LastSync string `json:"last_sync"`
}

// toAlertResponse converts a domain Alert to its JSON response representation.
func toAlertResponse(a model.Alert) AlertResponse {
	details := a.Details
	if details == nil {
		details = model.AlertDetails{}
	}
	return AlertResponse{
		ID:          a.ID,
		Kind:        string(a.Kind),
		Type:        string(a.Type),
		ProductID:   a.ProductID,
		ProductName: a.ProductName,
		Message:     a.Message,
		Details:     details,
	}
}

// toHistoryEntryResponse converts a domain AlertHistoryEntry to its JSON representation.
func toHistoryEntryResponse(e model.AlertHistoryEntry) HistoryEntryResponse {
	details := e.Details
	if details == nil {
		details = model.AlertDetails{}
	}
	return HistoryEntryResponse{
		ID:          e.ID,
		Type:        string(e.Type),
		ProductName: e.ProductName,
		DismissedAt: e.DismissedAt.UTC().Format(time.RFC3339),
		Details:     details,
	}
}

func toHistoryResponse(entries []model.AlertHistoryEntry) []HistoryEntryResponse {
	resp := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toHistoryEntryResponse(e))
	}
	return resp
}

// toStatsResponse converts domain AlertStats to its JSON representation.
func toStatsResponse(s model.AlertStats) StatsResponse {
	byType := make(map[string]int, len(s.ByType))
	for t, n := range s.ByType {
		byType[string(t)] = n
	}
	byDay := s.ByDay
	if byDay == nil {
		byDay = map[string]int{}
	}
	return StatsResponse{
		Total:  s.Total,
		ByType: byType,
		ByDay:  byDay,
		Recent: toHistoryResponse(s.Recent),
	}
}
