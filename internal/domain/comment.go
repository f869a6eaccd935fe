package domain

import "time"

// Comment is an append-only message on a complaint thread.
type Comment struct {
	ID          string       `json:"id"`
	ComplaintID string       `json:"complaintId"`
	UserID      string       `json:"userId"`
	Message     string       `json:"message"`
	CreatedAt   time.Time    `json:"createdAt"`
	Author      *UserSummary `json:"user,omitempty"`
}

// Attachment stores metadata for a file kept by the external storage service.
type Attachment struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaintId"`
	FileName    string    `json:"fileName"`
	MimeType    string    `json:"mimeType,omitempty"`
	SizeBytes   int64     `json:"sizeBytes"`
	StorageKey  string    `json:"storageKey"`
	CreatedAt   time.Time `json:"createdAt"`
}
