package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/TahjibNil75/trackIT/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketAssigned EventType = "ticket_assigned"
	EventTicketDeleted  EventType = "ticket_deleted"
	EventCommentAdded   EventType = "comment_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, ticketID, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject    string                `json:"subject"`
	Priority   domain.TicketPriority `json:"priority"`
	IssueType  domain.IssueType      `json:"types_of_issue"`
	AssignedTo *string               `json:"assigned_to,omitempty"`
}

// FieldChange mirrors one history entry.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Changes []FieldChange `json:"changes"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	PreviousAssignee *string `json:"previous_assignee,omitempty"`
	AssignedTo       string  `json:"assigned_to"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Subject     string `json:"subject"`
	Attachments int    `json:"attachments"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string                   `json:"comment_id"`
	Visibility  domain.CommentVisibility `json:"visibility"`
	BodyPreview string                   `json:"body_preview"`
}
