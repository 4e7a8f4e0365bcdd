package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
	"github.com/ericfisherdev/stockpanel/internal/domain/port/driven"
)

// DismissedAlertsKVKey is the key/value record holding the JSON array of
// dismissed alert identifiers. History is not persisted.
const DismissedAlertsKVKey = "dismissed-alerts"

// ErrInvalidAlert is returned by DismissAlert when its arguments fail validation.
var ErrInvalidAlert = errors.New("invalid alert")

// AlertStore tracks which alerts the user has dismissed and keeps an
// append-only history of dismissals for the lifetime of the process.
// Dismissal is idempotent on the set but every call appends a history entry.
type AlertStore struct {
	mu        sync.RWMutex
	dismissed map[string]struct{}
	order     []string // dismissal order of the set, used for persistence
	history   []model.AlertHistoryEntry

	kv     driven.KVStore
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

// NewAlertStore creates an empty AlertStore. Call Load to restore the
// persisted dismissed set.
func NewAlertStore(kv driven.KVStore) *AlertStore {
	return &AlertStore{
		dismissed: make(map[string]struct{}),
		kv:        kv,
		now:       time.Now,
		loc:       time.Local,
		logger:    slog.Default(),
	}
}

// WithClock replaces the time source used for DismissedAt.
func (s *AlertStore) WithClock(now func() time.Time) *AlertStore {
	s.now = now
	return s
}

// WithLocation sets the time zone used to group history by calendar day.
func (s *AlertStore) WithLocation(loc *time.Location) *AlertStore {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// Load restores the dismissed set from storage. Read or parse failures are
// logged and leave the store empty.
func (s *AlertStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dismissed = make(map[string]struct{})
	s.order = nil

	raw, err := s.kv.Load(ctx, DismissedAlertsKVKey)
	if err != nil {
		s.logger.Warn("failed to load dismissed alerts, starting empty", "error", err)
		return
	}
	if raw == nil {
		return
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		s.logger.Warn("malformed dismissed alerts record, starting empty", "error", err)
		return
	}

	for _, id := range ids {
		if _, ok := s.dismissed[id]; ok {
			continue
		}
		s.dismissed[id] = struct{}{}
		s.order = append(s.order, id)
	}
	s.logger.Debug("dismissed alerts loaded", "count", len(s.order))
}

// DismissAlert marks alertID as dismissed and records the dismissal in the
// history. Only argument validation can fail; persistence failures are logged
// and the in-memory state remains authoritative.
func (s *AlertStore) DismissAlert(
	ctx context.Context,
	alertID string,
	alertType model.AlertType,
	productName string,
	details model.AlertDetails,
) error {
	if strings.TrimSpace(alertID) == "" {
		return fmt.Errorf("%w: empty alert id", ErrInvalidAlert)
	}
	if !alertType.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAlert, alertType)
	}
	if err := details.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAlert, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dismissed[alertID]; !ok {
		s.dismissed[alertID] = struct{}{}
		s.order = append(s.order, alertID)
	}

	s.history = append(s.history, model.AlertHistoryEntry{
		ID:          alertID,
		Type:        alertType,
		ProductName: productName,
		DismissedAt: s.now(),
		Details:     details.Clone(),
	})

	s.persist(ctx)
	return nil
}

// IsAlertDismissed reports whether alertID is in the dismissed set.
func (s *AlertStore) IsAlertDismissed(alertID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dismissed[alertID]
	return ok
}

// DismissedAlerts returns the dismissed identifiers in dismissal order.
func (s *AlertStore) DismissedAlerts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// AlertHistory returns the full history in insertion order.
func (s *AlertStore) AlertHistory() []model.AlertHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyCopy()
}

// ClearDismissedAlerts empties the dismissed set and the history and removes
// the persisted record. It is irreversible; driving adapters must obtain
// explicit confirmation before calling it.
func (s *AlertStore) ClearDismissedAlerts(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dismissed = make(map[string]struct{})
	s.order = nil
	s.history = nil

	if err := s.kv.Delete(ctx, DismissedAlertsKVKey); err != nil {
		s.logger.Error("failed to remove dismissed alerts record", "error", err)
	}
}

// GetAlertHistory returns history entries matching filter, most recently
// dismissed first. The stored sequence is not modified.
func (s *AlertStore) GetAlertHistory(filter model.HistoryFilter) []model.AlertHistoryEntry {
	s.mu.RLock()
	entries := s.historyCopy()
	s.mu.RUnlock()

	result := make([]model.AlertHistoryEntry, 0, len(entries))
	for _, e := range entries {
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.Range != nil && !filter.Range.Contains(e.DismissedAt) {
			continue
		}
		result = append(result, e)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DismissedAt.After(result[j].DismissedAt)
	})
	return result
}

// GetAlertStats summarizes the history. Recent holds the first
// model.RecentHistoryLimit entries in insertion order, which differs from the
// descending order of GetAlertHistory.
func (s *AlertStore) GetAlertStats() model.AlertStats {
	s.mu.RLock()
	entries := s.historyCopy()
	s.mu.RUnlock()

	stats := model.AlertStats{
		Total:  len(entries),
		ByType: make(map[model.AlertType]int),
		ByDay:  make(map[string]int),
	}
	for _, e := range entries {
		stats.ByType[e.Type]++
		stats.ByDay[e.DismissedAt.In(s.loc).Format(time.DateOnly)]++
	}

	n := min(len(entries), model.RecentHistoryLimit)
	stats.Recent = entries[:n:n]
	return stats
}

// historyCopy copies the history slice. Caller holds s.mu.
func (s *AlertStore) historyCopy() []model.AlertHistoryEntry {
	out := make([]model.AlertHistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// persist writes the dismissed set. Caller holds s.mu.
func (s *AlertStore) persist(ctx context.Context) {
	ids := s.order
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		s.logger.Error("failed to encode dismissed alerts", "error", err)
		return
	}
	if err := s.kv.Save(ctx, DismissedAlertsKVKey, data); err != nil {
		s.logger.Error("failed to save dismissed alerts", "error", err, "count", len(ids))
	}
}
