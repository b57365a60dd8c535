package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "open"
	TicketStatusInProgress      TicketStatus = "in_progress"
	TicketStatusResolved        TicketStatus = "resolved"
	TicketStatusClosed          TicketStatus = "closed"
	TicketStatusApprovalPending TicketStatus = "approval_pending"
	TicketStatusApproved        TicketStatus = "approved"
	TicketStatusPending         TicketStatus = "pending"
)

// TicketStatuses lists every status in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusApprovalPending,
	TicketStatusApproved,
	TicketStatusPending,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	for _, status := range TicketStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// TicketPriority enumerates ticket urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// TicketPriorities lists every priority.
var TicketPriorities = []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	for _, priority := range TicketPriorities {
		if p == priority {
			return true
		}
	}
	return false
}

// IssueType classifies what a ticket is about.
type IssueType string

const (
	IssueTypeHardware         IssueType = "hardware"
	IssueTypeSoftware         IssueType = "software"
	IssueTypeAccessPermission IssueType = "access_permission"
	IssueTypeOther            IssueType = "other"
)

// IssueTypes lists every issue type.
var IssueTypes = []IssueType{IssueTypeHardware, IssueTypeSoftware, IssueTypeAccessPermission, IssueTypeOther}

// Valid reports whether t is a known issue type.
func (t IssueType) Valid() bool {
	for _, issueType := range IssueTypes {
		if t == issueType {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	Subject     string
	Description string
	Priority    TicketPriority
	IssueType   IssueType
	Status      TicketStatus
	CreatedBy   string
	AssignedTo  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCreator reports whether userID opened the ticket.
func (t *Ticket) IsCreator(userID string) bool {
	return t.CreatedBy == userID
}

// IsAssignee reports whether userID currently works the ticket.
func (t *Ticket) IsAssignee(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}
