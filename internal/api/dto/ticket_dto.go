package dto

import (
	"time"

	"github.com/TahjibNil75/trackIT/internal/domain"
)

// CreateTicketRequest payload. Multipart requests carry the same keys as form fields.
type CreateTicketRequest struct {
	Subject     string                `json:"subject" form:"subject"`
	Description string                `json:"description" form:"description"`
	Priority    domain.TicketPriority `json:"priority" form:"priority"`
	IssueType   domain.IssueType      `json:"types_of_issue" form:"types_of_issue"`
	AssignedTo  *string               `json:"assigned_to" form:"assigned_to"`
}

// UpdateTicketRequest is a partial update; omitted keys are left untouched.
type UpdateTicketRequest struct {
	Subject     *string                `json:"subject"`
	Description *string                `json:"description"`
	IssueType   *domain.IssueType      `json:"types_of_issue"`
	Priority    *domain.TicketPriority `json:"priority"`
	Status      *domain.TicketStatus   `json:"status"`
	AssignedTo  *string                `json:"assigned_to"`
}

// ToUpdate converts the payload into a domain update.
func (r UpdateTicketRequest) ToUpdate() domain.TicketUpdate {
	return domain.TicketUpdate{
		Subject:     r.Subject,
		Description: r.Description,
		IssueType:   r.IssueType,
		Priority:    r.Priority,
		Status:      r.Status,
		AssignedTo:  r.AssignedTo,
	}
}

// StatusUpdateRequest payload.
type StatusUpdateRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// PriorityUpdateRequest payload.
type PriorityUpdateRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssignedTo string `json:"assigned_to"`
}

// TicketResponse is the ticket representation used in lists.
type TicketResponse struct {
	ID          string                `json:"ticket_id"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	IssueType   domain.IssueType      `json:"types_of_issue"`
	Status      domain.TicketStatus   `json:"status"`
	CreatedBy   string                `json:"created_by"`
	AssignedTo  *string               `json:"assigned_to"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketDetailResponse adds the thread and files.
type TicketDetailResponse struct {
	TicketResponse
	Comments    []CommentResponse    `json:"comments"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         string    `json:"attachment_id"`
	TicketID   string    `json:"ticket_id"`
	FileName   string    `json:"file_name"`
	FileURL    string    `json:"file_url"`
	FileType   string    `json:"file_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// HistoryEntryResponse is one audit entry.
type HistoryEntryResponse struct {
	ID        string    `json:"history_id"`
	TicketID  string    `json:"ticket_id"`
	Action    string    `json:"action"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	ChangedBy string    `json:"changed_by"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryPageResponse wraps a page of audit entries.
type HistoryPageResponse struct {
	Items      []HistoryEntryResponse `json:"items"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}
