package model

import "time"

// Notification is a one-shot, user-facing message (a toast). It is shown once
// and then discarded.
type Notification struct {
	ID        string
	Type      AlertType
	Title     string
	Message   string
	CreatedAt time.Time
}
