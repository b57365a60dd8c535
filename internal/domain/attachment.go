package domain

import "time"

// Attachment stores metadata for a file uploaded against a ticket.
type Attachment struct {
	ID         string
	TicketID   string
	FileName   string
	FileURL    string
	FileType   string
	StorageKey string
	SizeBytes  int64
	UploadedAt time.Time
}
