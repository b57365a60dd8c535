package domain

import "time"

// HistoryActionCreated tags the entry written when a ticket is opened.
const HistoryActionCreated = "created"

// HistoryActionChanged returns the action tag for a field mutation, e.g. "status_changed".
func HistoryActionChanged(field string) string {
	return field + "_changed"
}

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID        string
	TicketID  string
	Action    string
	OldValue  string
	NewValue  string
	ChangedBy string
	CreatedAt time.Time
}
