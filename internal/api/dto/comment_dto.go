package dto

import (
	"time"

	"github.com/TahjibNil75/trackIT/internal/domain"
)

// CreateCommentRequest payload. Visibility defaults to public.
type CreateCommentRequest struct {
	Content    string                   `json:"content"`
	Visibility domain.CommentVisibility `json:"visibility"`
}

// UpdateCommentRequest payload.
type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse represents a thread comment.
type CommentResponse struct {
	ID         string                   `json:"comment_id"`
	TicketID   string                   `json:"ticket_id"`
	UserID     string                   `json:"user_id"`
	Content    string                   `json:"content"`
	Visibility domain.CommentVisibility `json:"visibility"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}
