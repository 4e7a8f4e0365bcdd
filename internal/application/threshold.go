package application

import (
	"math"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

// criticalExpiryDays is the fixed window in which a product is critical
// regardless of the configured warning period.
const criticalExpiryDays = 7

const day = 24 * time.Hour

// DaysUntilExpiry returns the number of days from now until expiration,
// rounded up. Negative values mean the product has already expired.
func DaysUntilExpiry(expiration, now time.Time) int {
	return int(math.Ceil(float64(expiration.Sub(now)) / float64(day)))
}

// IsExpiringSoon reports whether a product expires within the configured
// warning period. Already-expired products are excluded, as are all products
// when expiry alerts are disabled.
func IsExpiringSoon(expiration *time.Time, settings model.Settings, now time.Time) bool {
	if expiration == nil || !settings.ExpiryAlertsEnabled {
		return false
	}
	days := DaysUntilExpiry(*expiration, now)
	return days > 0 && days <= settings.ExpiryWarningDays
}

// IsExpired reports whether the expiration date lies in the past. It ignores
// the expiry alert toggle.
func IsExpired(expiration *time.Time, now time.Time) bool {
	if expiration == nil {
		return false
	}
	return expiration.Before(now)
}

// ComputeExpiryStatus classifies an expiration date. Priority: expired,
// critical (fixed 7-day floor), warning (configured period), good.
func ComputeExpiryStatus(expiration *time.Time, settings model.Settings, now time.Time) model.ExpiryStatus {
	if expiration == nil {
		return model.ExpiryStatus{Status: model.ExpiryNone, Color: model.ColorGray}
	}

	days := DaysUntilExpiry(*expiration, now)

	switch {
	case days < 0:
		elapsed := -days
		return model.ExpiryStatus{Status: model.ExpiryExpired, Color: model.ColorRed, Days: &elapsed}
	case days <= criticalExpiryDays:
		return model.ExpiryStatus{Status: model.ExpiryCritical, Color: model.ColorRed, Days: &days}
	case days <= settings.ExpiryWarningDays:
		return model.ExpiryStatus{Status: model.ExpiryWarning, Color: model.ColorYellow, Days: &days}
	default:
		return model.ExpiryStatus{Status: model.ExpiryGood, Color: model.ColorGreen, Days: &days}
	}
}

// IsStockLow reports whether 0 < quantity <= threshold.
func IsStockLow(quantity int, settings model.Settings) bool {
	return quantity > 0 && quantity <= settings.LowStockThreshold
}

// IsStockOut reports whether quantity is exactly zero. Negative quantities
// are neither out nor low.
func IsStockOut(quantity int) bool {
	return quantity == 0
}

// ComputeStockLevel classifies a quantity into a stock level.
func ComputeStockLevel(quantity int, settings model.Settings) model.StockLevel {
	switch {
	case IsStockOut(quantity):
		return model.StockOutOfStock
	case IsStockLow(quantity, settings):
		return model.StockLow
	default:
		return model.StockInStock
	}
}

// ParseQuantity reads the leading integer of a raw quantity value, so "12",
// " 12 units" and "12.5" all yield 12. Empty or non-numeric input yields 0.
// Magnitudes beyond math.MaxInt32 saturate at ±math.MaxInt32.
func ParseQuantity(raw string) int {
	i := 0
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\t' || raw[i] == '\n') {
		i++
	}

	negative := false
	if i < len(raw) && (raw[i] == '-' || raw[i] == '+') {
		negative = raw[i] == '-'
		i++
	}

	n, digits := 0, 0
	for ; i < len(raw) && raw[i] >= '0' && raw[i] <= '9'; i++ {
		d := int(raw[i] - '0')
		digits++
		if n > (math.MaxInt32-d)/10 {
			n = math.MaxInt32
			break
		}
		n = n*10 + d
	}
	if digits == 0 {
		return 0
	}
	if negative {
		return -n
	}
	return n
}
