package application

import (
	"time"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

// ActivityTier classifies how busy the inventory is, based on how recently
// stock last moved. Busier inventories are synced more often.
type ActivityTier int

const (
	// TierHot indicates a stock movement within the last hour.
	TierHot ActivityTier = iota
	// TierActive indicates a stock movement within the last day.
	TierActive
	// TierQuiet indicates no movement for a day or more.
	TierQuiet
)

// Minimum sync intervals per tier. The configured interval caps all of them.
const (
	intervalHot    = 1 * time.Minute
	intervalActive = 2 * time.Minute
)

// String returns a human-readable name for the activity tier.
func (t ActivityTier) String() string {
	switch t {
	case TierHot:
		return "hot"
	case TierActive:
		return "active"
	case TierQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// classifyActivity determines the tier from the time elapsed since the last
// movement. A zero-value time is treated as TierQuiet.
func classifyActivity(lastMovement, now time.Time) ActivityTier {
	if lastMovement.IsZero() {
		return TierQuiet
	}

	elapsed := now.Sub(lastMovement)

	switch {
	case elapsed < 1*time.Hour:
		return TierHot
	case elapsed < 24*time.Hour:
		return TierActive
	default:
		return TierQuiet
	}
}

// tierInterval returns the sync interval for a tier, never longer than base.
func tierInterval(tier ActivityTier, base time.Duration) time.Duration {
	switch tier {
	case TierHot:
		return min(intervalHot, base)
	case TierActive:
		return min(intervalActive, base)
	default:
		return base
	}
}

// latestMovement finds the most recent OccurredAt across movements.
// Returns the zero time if the slice is empty.
func latestMovement(movements []model.StockMovement) time.Time {
	var newest time.Time
	for _, m := range movements {
		if m.OccurredAt.After(newest) {
			newest = m.OccurredAt
		}
	}
	return newest
}
