package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/stockpanel/internal/application"
	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

func newLoadedSettingsService(t *testing.T) (*application.SettingsService, *mockKVStore, *mockNotifier) {
	t.Helper()
	kv := newMockKVStore()
	notifier := &mockNotifier{}
	svc := application.NewSettingsService(kv, notifier).WithClock(fixedClock())
	svc.Load(context.Background())
	return svc, kv, notifier
}

func storedSettings(t *testing.T, kv *mockKVStore) model.Settings {
	t.Helper()
	raw, ok := kv.get(application.SettingsKVKey)
	require.True(t, ok, "settings should be persisted")
	var s model.Settings
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestSettingsService_DefaultsBeforeLoad(t *testing.T) {
	svc := application.NewSettingsService(newMockKVStore(), nil)

	assert.False(t, svc.IsLoaded())
	assert.Equal(t, model.DefaultSettings(), svc.Settings())
}

func TestSettingsService_Load(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   model.Settings
	}{
		{
			name:   "nothing stored",
			stored: "",
			want:   model.DefaultSettings(),
		},
		{
			name:   "partial record merges over defaults",
			stored: `{"lowStockThreshold": 3}`,
			want: func() model.Settings {
				s := model.DefaultSettings()
				s.LowStockThreshold = 3
				return s
			}(),
		},
		{
			name:   "stored toggles win",
			stored: `{"expiryAlerts": false, "movementAlerts": false, "expiryWarningDays": 14}`,
			want: func() model.Settings {
				s := model.DefaultSettings()
				s.ExpiryAlertsEnabled = false
				s.MovementAlertsEnabled = false
				s.ExpiryWarningDays = 14
				return s
			}(),
		},
		{
			name:   "negative threshold falls back to default",
			stored: `{"lowStockThreshold": -4, "expiryWarningDays": 5}`,
			want: func() model.Settings {
				s := model.DefaultSettings()
				s.ExpiryWarningDays = 5
				return s
			}(),
		},
		{
			name:   "malformed record uses defaults",
			stored: `{not json`,
			want:   model.DefaultSettings(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMockKVStore()
			if tt.stored != "" {
				kv.data[application.SettingsKVKey] = []byte(tt.stored)
			}
			svc := application.NewSettingsService(kv, nil)
			svc.Load(context.Background())

			assert.True(t, svc.IsLoaded())
			assert.Equal(t, tt.want, svc.Settings())
		})
	}
}

func TestSettingsService_LoadFailureUsesDefaults(t *testing.T) {
	kv := newMockKVStore()
	kv.loadErr = errors.New("disk on fire")

	svc := application.NewSettingsService(kv, nil)
	svc.Load(context.Background())

	assert.True(t, svc.IsLoaded())
	assert.Equal(t, model.DefaultSettings(), svc.Settings())
}

func TestSettingsService_UpdateSetting(t *testing.T) {
	tests := []struct {
		name  string
		key   model.SettingKey
		value string
		check func(t *testing.T, s model.Settings)
	}{
		{"numeric threshold", model.SettingLowStockThreshold, "5", func(t *testing.T, s model.Settings) {
			assert.Equal(t, 5, s.LowStockThreshold)
		}},
		{"zero is kept", model.SettingExpiryWarningDays, "0", func(t *testing.T, s model.Settings) {
			assert.Equal(t, 0, s.ExpiryWarningDays)
		}},
		{"empty falls back to default", model.SettingLowStockThreshold, "", func(t *testing.T, s model.Settings) {
			assert.Equal(t, model.DefaultLowStockThreshold, s.LowStockThreshold)
		}},
		{"non-numeric falls back to default", model.SettingExpiryWarningDays, "soon", func(t *testing.T, s model.Settings) {
			assert.Equal(t, model.DefaultExpiryWarningDays, s.ExpiryWarningDays)
		}},
		{"negative falls back to default", model.SettingLowStockThreshold, "-1", func(t *testing.T, s model.Settings) {
			assert.Equal(t, model.DefaultLowStockThreshold, s.LowStockThreshold)
		}},
		{"toggle off", model.SettingLowStockAlerts, "false", func(t *testing.T, s model.Settings) {
			assert.False(t, s.LowStockAlertsEnabled)
		}},
		{"movement toggle off", model.SettingMovementAlerts, "0", func(t *testing.T, s model.Settings) {
			assert.False(t, s.MovementAlertsEnabled)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, kv, _ := newLoadedSettingsService(t)

			require.NoError(t, svc.UpdateSetting(context.Background(), tt.key, tt.value))
			tt.check(t, svc.Settings())
			assert.Equal(t, svc.Settings(), storedSettings(t, kv), "full settings object is persisted")
		})
	}
}

func TestSettingsService_UpdateSetting_Errors(t *testing.T) {
	svc, kv, _ := newLoadedSettingsService(t)
	ctx := context.Background()

	err := svc.UpdateSetting(ctx, "colorScheme", "dark")
	assert.ErrorIs(t, err, application.ErrUnknownSettingKey)

	err = svc.UpdateSetting(ctx, model.SettingExpiryAlerts, "maybe")
	assert.ErrorIs(t, err, application.ErrInvalidSettingValue)

	assert.Equal(t, model.DefaultSettings(), svc.Settings())
	assert.Zero(t, kv.saves)
}

func TestSettingsService_UpdateSettings_Patch(t *testing.T) {
	svc, kv, _ := newLoadedSettingsService(t)

	threshold := 4
	disabled := false
	svc.UpdateSettings(context.Background(), model.SettingsPatch{
		LowStockThreshold:   &threshold,
		ExpiryAlertsEnabled: &disabled,
	})

	got := svc.Settings()
	assert.Equal(t, 4, got.LowStockThreshold)
	assert.False(t, got.ExpiryAlertsEnabled)
	assert.Equal(t, model.DefaultExpiryWarningDays, got.ExpiryWarningDays)
	assert.True(t, got.LowStockAlertsEnabled)
	assert.Equal(t, got, storedSettings(t, kv))
}

func TestSettingsService_UpdateSettings_NegativeNormalized(t *testing.T) {
	svc, _, _ := newLoadedSettingsService(t)

	negative := -7
	svc.UpdateSettings(context.Background(), model.SettingsPatch{ExpiryWarningDays: &negative})

	assert.Equal(t, model.DefaultExpiryWarningDays, svc.Settings().ExpiryWarningDays)
}

func TestSettingsService_Notifications(t *testing.T) {
	svc, _, notifier := newLoadedSettingsService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpdateSetting(ctx, model.SettingExpiryWarningDays, "14"))
	require.NoError(t, svc.UpdateSetting(ctx, model.SettingLowStockThreshold, "3"))
	require.NoError(t, svc.UpdateSetting(ctx, model.SettingExpiryAlerts, "false"))
	require.NoError(t, svc.UpdateSetting(ctx, model.SettingExpiryAlerts, "true"))
	require.NoError(t, svc.UpdateSetting(ctx, model.SettingLowStockAlerts, "false"))

	assert.Equal(t, []string{
		"Expiry warning updated",
		"Low stock threshold updated",
		"Expiry alerts disabled",
		"Expiry alerts enabled",
	}, notifier.titles())

	for _, n := range notifier.sent {
		assert.NotEmpty(t, n.ID)
		assert.Equal(t, model.AlertTypeInfo, n.Type)
		assert.Equal(t, fixedNow, n.CreatedAt)
	}
}

func TestSettingsService_NoNotificationWhenUnchanged(t *testing.T) {
	svc, _, notifier := newLoadedSettingsService(t)

	require.NoError(t, svc.UpdateSetting(context.Background(), model.SettingLowStockThreshold, "10"))

	assert.Empty(t, notifier.titles())
}

func TestSettingsService_NoSideEffectsBeforeLoad(t *testing.T) {
	kv := newMockKVStore()
	notifier := &mockNotifier{}
	svc := application.NewSettingsService(kv, notifier)

	require.NoError(t, svc.UpdateSetting(context.Background(), model.SettingLowStockThreshold, "2"))

	assert.Equal(t, 2, svc.Settings().LowStockThreshold)
	assert.Empty(t, notifier.titles())
	assert.Zero(t, kv.saves)
}

func TestSettingsService_SaveFailureKeepsInMemoryValue(t *testing.T) {
	svc, kv, _ := newLoadedSettingsService(t)
	kv.saveErr = errors.New("read-only filesystem")

	require.NoError(t, svc.UpdateSetting(context.Background(), model.SettingLowStockThreshold, "6"))

	assert.Equal(t, 6, svc.Settings().LowStockThreshold)
	assert.Equal(t, 1, kv.saves)
}

func TestSettingsService_BoundPredicates(t *testing.T) {
	svc, _, _ := newLoadedSettingsService(t)

	assert.True(t, svc.IsProductExpiringSoon(daysFromNow(5)))
	assert.False(t, svc.IsProductExpiringSoon(daysFromNow(-5)))
	assert.True(t, svc.IsProductExpired(daysFromNow(-5)))
	assert.True(t, svc.IsStockLow(10))
	assert.False(t, svc.IsStockLow(0))
	assert.True(t, svc.IsStockOut(0))
	assert.Equal(t, model.ExpiryWarning, svc.ExpiryStatus(daysFromNow(20)).Status)

	require.NoError(t, svc.UpdateSetting(context.Background(), model.SettingLowStockThreshold, "3"))
	assert.False(t, svc.IsStockLow(10), "predicates read the latest settings")
}
