package model

import (
	"errors"
	"fmt"
	"time"
)

// AlertType is the severity of an alert as shown to and dismissed by the user.
type AlertType string

const (
	AlertTypeError   AlertType = "error"
	AlertTypeWarning AlertType = "warning"
	AlertTypeInfo    AlertType = "info"
)

// Valid reports whether t is one of the known alert types.
func (t AlertType) Valid() bool {
	switch t {
	case AlertTypeError, AlertTypeWarning, AlertTypeInfo:
		return true
	default:
		return false
	}
}

// rank orders types by severity, most severe first.
func (t AlertType) rank() int {
	switch t {
	case AlertTypeError:
		return 0
	case AlertTypeWarning:
		return 1
	default:
		return 2
	}
}

// MoreSevere reports whether t sorts before other.
func (t AlertType) MoreSevere(other AlertType) bool {
	return t.rank() < other.rank()
}

// AlertKind identifies which rule produced an alert.
type AlertKind string

const (
	AlertKindExpired    AlertKind = "expired"
	AlertKindExpiring   AlertKind = "expiring"
	AlertKindOutOfStock AlertKind = "out-of-stock"
	AlertKindLowStock   AlertKind = "low-stock"
	AlertKindMovement   AlertKind = "movement"
)

// AlertID builds the dismissible identifier for an alert of the given kind
// on the given subject (a product or movement ID).
func AlertID(kind AlertKind, subjectID string) string {
	return string(kind) + "-" + subjectID
}

// ErrInvalidDetails is returned when an alert details payload contains a
// value outside the supported primitive types.
var ErrInvalidDetails = errors.New("invalid alert details")

// AlertDetails is the free-form payload attached to an alert. Values are
// restricted to strings, booleans, integers, floats and nil.
type AlertDetails map[string]any

// Validate checks every value against the supported primitive types.
func (d AlertDetails) Validate() error {
	for k, v := range d {
		switch v.(type) {
		case nil, string, bool, int, int32, int64, float32, float64:
		default:
			return fmt.Errorf("%w: key %q has unsupported type %T", ErrInvalidDetails, k, v)
		}
	}
	return nil
}

// Clone returns a shallow copy; values are primitives so the copy is independent.
func (d AlertDetails) Clone() AlertDetails {
	if d == nil {
		return AlertDetails{}
	}
	out := make(AlertDetails, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Alert is a candidate alert produced from inventory data. It is never persisted.
type Alert struct {
	ID          string
	Kind        AlertKind
	Type        AlertType
	ProductID   string
	ProductName string
	Message     string
	Details     AlertDetails
}

// AlertHistoryEntry records a single dismissal. Entries are immutable and
// kept in call order.
type AlertHistoryEntry struct {
	ID          string       `json:"id"`
	Type        AlertType    `json:"type"`
	ProductName string       `json:"productName"`
	DismissedAt time.Time    `json:"dismissedAt"`
	Details     AlertDetails `json:"details"`
}

// DateRange is an inclusive time window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the inclusive range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// HistoryFilter narrows a history query. A zero Type and nil Range match everything.
type HistoryFilter struct {
	Type  AlertType
	Range *DateRange
}

// RecentHistoryLimit caps AlertStats.Recent.
const RecentHistoryLimit = 10

// AlertStats is derived from the dismissal history on every request.
type AlertStats struct {
	Total  int                 `json:"total"`
	ByType map[AlertType]int   `json:"byType"`
	ByDay  map[string]int      `json:"byDay"`
	Recent []AlertHistoryEntry `json:"recent"`
}
