package model

// Settings holds the user-configurable thresholds and alert toggles consumed
// by stock and expiry classification.
type Settings struct {
	LowStockThreshold     int  `json:"lowStockThreshold"`
	ExpiryWarningDays     int  `json:"expiryWarningDays"`
	ExpiryAlertsEnabled   bool `json:"expiryAlerts"`
	LowStockAlertsEnabled bool `json:"lowStockAlerts"`
	MovementAlertsEnabled bool `json:"movementAlerts"`
}

// Fixed fallbacks applied when a threshold is empty, invalid or negative.
const (
	DefaultLowStockThreshold = 10
	DefaultExpiryWarningDays = 30
)

// DefaultSettings returns the compiled-in defaults used when nothing has been
// persisted yet.
func DefaultSettings() Settings {
	return Settings{
		LowStockThreshold:     DefaultLowStockThreshold,
		ExpiryWarningDays:     DefaultExpiryWarningDays,
		ExpiryAlertsEnabled:   true,
		LowStockAlertsEnabled: true,
		MovementAlertsEnabled: true,
	}
}

// Normalize resets negative thresholds to their defaults.
func (s Settings) Normalize() Settings {
	if s.LowStockThreshold < 0 {
		s.LowStockThreshold = DefaultLowStockThreshold
	}
	if s.ExpiryWarningDays < 0 {
		s.ExpiryWarningDays = DefaultExpiryWarningDays
	}
	return s
}

// SettingsPatch is a partial settings update. Nil pointer fields mean
// "leave unchanged".
type SettingsPatch struct {
	LowStockThreshold     *int  `json:"lowStockThreshold,omitempty"`
	ExpiryWarningDays     *int  `json:"expiryWarningDays,omitempty"`
	ExpiryAlertsEnabled   *bool `json:"expiryAlerts,omitempty"`
	LowStockAlertsEnabled *bool `json:"lowStockAlerts,omitempty"`
	MovementAlertsEnabled *bool `json:"movementAlerts,omitempty"`
}

// SettingKey names a single field of Settings as exposed to forms and the API.
type SettingKey string

const (
	SettingLowStockThreshold SettingKey = "lowStockThreshold"
	SettingExpiryWarningDays SettingKey = "expiryWarningDays"
	SettingExpiryAlerts      SettingKey = "expiryAlerts"
	SettingLowStockAlerts    SettingKey = "lowStockAlerts"
	SettingMovementAlerts    SettingKey = "movementAlerts"
)

// SettingKeys lists every known key in display order.
func SettingKeys() []SettingKey {
	return []SettingKey{
		SettingLowStockThreshold,
		SettingExpiryWarningDays,
		SettingExpiryAlerts,
		SettingLowStockAlerts,
		SettingMovementAlerts,
	}
}

// IsNumeric reports whether the key holds an integer threshold.
func (k SettingKey) IsNumeric() bool {
	return k == SettingLowStockThreshold || k == SettingExpiryWarningDays
}
