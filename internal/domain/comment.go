package domain

import "time"

// CommentVisibility controls who can read a comment.
type CommentVisibility string

const (
	CommentVisibilityPublic   CommentVisibility = "public"
	CommentVisibilityInternal CommentVisibility = "internal"
)

// Valid reports whether v is a known visibility.
func (v CommentVisibility) Valid() bool {
	return v == CommentVisibilityPublic || v == CommentVisibilityInternal
}

// Comment is a message posted on a ticket thread.
type Comment struct {
	ID         string
	TicketID   string
	UserID     string
	Content    string
	Visibility CommentVisibility
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
