package model

// ExpiryState classifies a product by days remaining until expiration.
type ExpiryState string

const (
	ExpiryNone     ExpiryState = "no-expiry"
	ExpiryGood     ExpiryState = "good"
	ExpiryWarning  ExpiryState = "warning"
	ExpiryCritical ExpiryState = "critical"
	ExpiryExpired  ExpiryState = "expired"
)

// StatusColor is the display color attached to an expiry classification.
type StatusColor string

const (
	ColorGray   StatusColor = "gray"
	ColorGreen  StatusColor = "green"
	ColorYellow StatusColor = "yellow"
	ColorRed    StatusColor = "red"
)

// ExpiryStatus is a transient classification computed at query time. It is
// never persisted. Days is nil for products without an expiration date; for
// expired products it holds the number of days since expiry.
type ExpiryStatus struct {
	Status ExpiryState `json:"status"`
	Color  StatusColor `json:"color"`
	Days   *int        `json:"days"`
}

// StockLevel classifies a product by quantity on hand.
type StockLevel string

const (
	StockInStock    StockLevel = "in-stock"
	StockLow        StockLevel = "low-stock"
	StockOutOfStock StockLevel = "out-of-stock"
)
