package domain

// Ticket field names as they appear in update payloads and history action tags.
const (
	FieldSubject     = "subject"
	FieldDescription = "description"
	FieldIssueType   = "types_of_issue"
	FieldPriority    = "priority"
	FieldStatus      = "status"
	FieldAssignedTo  = "assigned_to"
)

// TicketUpdate is a partial update; nil fields are left untouched.
type TicketUpdate struct {
	Subject     *string
	Description *string
	IssueType   *IssueType
	Priority    *TicketPriority
	Status      *TicketStatus
	AssignedTo  *string
}

// Has reports whether the named field was supplied.
func (u TicketUpdate) Has(field string) bool {
	switch field {
	case FieldSubject:
		return u.Subject != nil
	case FieldDescription:
		return u.Description != nil
	case FieldIssueType:
		return u.IssueType != nil
	case FieldPriority:
		return u.Priority != nil
	case FieldStatus:
		return u.Status != nil
	case FieldAssignedTo:
		return u.AssignedTo != nil
	default:
		return false
	}
}

// Fields returns the supplied field names in a stable order.
func (u TicketUpdate) Fields() []string {
	fields := make([]string, 0, 6)
	for _, field := range []string{FieldSubject, FieldDescription, FieldIssueType, FieldPriority, FieldStatus, FieldAssignedTo} {
		if u.Has(field) {
			fields = append(fields, field)
		}
	}
	return fields
}

// IsEmpty reports whether no field was supplied.
func (u TicketUpdate) IsEmpty() bool {
	return len(u.Fields()) == 0
}
