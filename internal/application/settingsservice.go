package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
	"github.com/ericfisherdev/stockpanel/internal/domain/port/driven"
)

// SettingsKVKey is the key/value record holding the full Settings object.
const SettingsKVKey = "settings"

var (
	// ErrUnknownSettingKey is returned by UpdateSetting for keys outside model.SettingKeys.
	ErrUnknownSettingKey = errors.New("unknown setting key")
	// ErrInvalidSettingValue is returned when a boolean setting cannot be parsed.
	ErrInvalidSettingValue = errors.New("invalid setting value")
)

// SettingsService owns the process-wide Settings. All reads and writes go
// through it; every mutation after the initial load is persisted in full and
// changes to watched keys produce a one-shot notification.
type SettingsService struct {
	mu       sync.RWMutex
	settings model.Settings
	loaded   bool

	kv       driven.KVStore
	notifier driven.Notifier
	now      func() time.Time
	logger   *slog.Logger
}

// NewSettingsService creates a SettingsService holding the defaults. Call Load
// before serving requests. notifier may be nil to disable change notifications.
func NewSettingsService(kv driven.KVStore, notifier driven.Notifier) *SettingsService {
	return &SettingsService{
		settings: model.DefaultSettings(),
		kv:       kv,
		notifier: notifier,
		now:      time.Now,
		logger:   slog.Default(),
	}
}

// WithClock replaces the time source used by the bound predicates.
func (s *SettingsService) WithClock(now func() time.Time) *SettingsService {
	s.now = now
	return s
}

// Load merges the persisted settings over the defaults. Storage values win
// per key; missing keys keep their defaults. A read failure or malformed
// record is logged and the defaults are used for the whole object.
func (s *SettingsService) Load(ctx context.Context) {
	settings := model.DefaultSettings()

	raw, err := s.kv.Load(ctx, SettingsKVKey)
	switch {
	case err != nil:
		s.logger.Warn("failed to load settings, using defaults", "error", err)
	case raw != nil:
		stored := model.DefaultSettings()
		if err := json.Unmarshal(raw, &stored); err != nil {
			s.logger.Warn("malformed stored settings, using defaults", "error", err)
		} else {
			settings = stored.Normalize()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.loaded = true
}

// IsLoaded reports whether the initial load has completed.
func (s *SettingsService) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Settings returns a copy of the current settings.
func (s *SettingsService) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSetting changes a single setting from a user-entered value. Numeric
// thresholds that are empty, non-numeric or negative fall back to their
// defaults. Boolean toggles accept the forms understood by strconv.ParseBool.
func (s *SettingsService) UpdateSetting(ctx context.Context, key model.SettingKey, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	switch key {
	case model.SettingLowStockThreshold:
		next.LowStockThreshold = ParseThreshold(value, model.DefaultLowStockThreshold)
	case model.SettingExpiryWarningDays:
		next.ExpiryWarningDays = ParseThreshold(value, model.DefaultExpiryWarningDays)
	case model.SettingExpiryAlerts, model.SettingLowStockAlerts, model.SettingMovementAlerts:
		enabled, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidSettingValue, key, value)
		}
		switch key {
		case model.SettingExpiryAlerts:
			next.ExpiryAlertsEnabled = enabled
		case model.SettingLowStockAlerts:
			next.LowStockAlertsEnabled = enabled
		default:
			next.MovementAlertsEnabled = enabled
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSettingKey, key)
	}

	s.apply(ctx, next)
	return nil
}

// UpdateSettings applies a partial update. Nil fields are left unchanged;
// negative thresholds fall back to their defaults.
func (s *SettingsService) UpdateSettings(ctx context.Context, patch model.SettingsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	if patch.LowStockThreshold != nil {
		next.LowStockThreshold = *patch.LowStockThreshold
	}
	if patch.ExpiryWarningDays != nil {
		next.ExpiryWarningDays = *patch.ExpiryWarningDays
	}
	if patch.ExpiryAlertsEnabled != nil {
		next.ExpiryAlertsEnabled = *patch.ExpiryAlertsEnabled
	}
	if patch.LowStockAlertsEnabled != nil {
		next.LowStockAlertsEnabled = *patch.LowStockAlertsEnabled
	}
	if patch.MovementAlertsEnabled != nil {
		next.MovementAlertsEnabled = *patch.MovementAlertsEnabled
	}

	s.apply(ctx, next.Normalize())
}

// apply installs next as the current settings. Before the initial load
// completes, changes are neither announced nor persisted. Caller holds s.mu.
func (s *SettingsService) apply(ctx context.Context, next model.Settings) {
	prev := s.settings
	s.settings = next

	if !s.loaded {
		return
	}

	s.announceChanges(ctx, prev, next)

	data, err := json.Marshal(next)
	if err != nil {
		s.logger.Error("failed to encode settings", "error", err)
		return
	}
	if err := s.kv.Save(ctx, SettingsKVKey, data); err != nil {
		s.logger.Error("failed to save settings", "error", err)
	}
}

// announceChanges emits a notification for each watched key whose value changed.
func (s *SettingsService) announceChanges(ctx context.Context, prev, next model.Settings) {
	if s.notifier == nil {
		return
	}

	if prev.ExpiryWarningDays != next.ExpiryWarningDays {
		s.notify(ctx, "Expiry warning updated",
			fmt.Sprintf("Products will now be flagged %d days before expiration.", next.ExpiryWarningDays))
	}
	if prev.LowStockThreshold != next.LowStockThreshold {
		s.notify(ctx, "Low stock threshold updated",
			fmt.Sprintf("Products with %d units or fewer will be flagged as low stock.", next.LowStockThreshold))
	}
	if prev.ExpiryAlertsEnabled != next.ExpiryAlertsEnabled {
		state := "disabled"
		if next.ExpiryAlertsEnabled {
			state = "enabled"
		}
		s.notify(ctx, "Expiry alerts "+state, "Expiry alerts have been "+state+".")
	}
}

func (s *SettingsService) notify(ctx context.Context, title, message string) {
	s.notifier.Notify(ctx, model.Notification{
		ID:        uuid.NewString(),
		Type:      model.AlertTypeInfo,
		Title:     title,
		Message:   message,
		CreatedAt: s.now(),
	})
}

// ParseThreshold parses a user-entered threshold, falling back to def for
// empty, non-numeric or negative input.
func ParseThreshold(value string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// IsProductExpiringSoon applies IsExpiringSoon with the current settings.
func (s *SettingsService) IsProductExpiringSoon(expiration *time.Time) bool {
	return IsExpiringSoon(expiration, s.Settings(), s.now())
}

// IsProductExpired applies IsExpired at the current time.
func (s *SettingsService) IsProductExpired(expiration *time.Time) bool {
	return IsExpired(expiration, s.now())
}

// IsStockLow applies IsStockLow with the current settings.
func (s *SettingsService) IsStockLow(quantity int) bool {
	return IsStockLow(quantity, s.Settings())
}

// IsStockOut applies IsStockOut.
func (s *SettingsService) IsStockOut(quantity int) bool {
	return IsStockOut(quantity)
}

// ExpiryStatus applies ComputeExpiryStatus with the current settings.
func (s *SettingsService) ExpiryStatus(expiration *time.Time) model.ExpiryStatus {
	return ComputeExpiryStatus(expiration, s.Settings(), s.now())
}
