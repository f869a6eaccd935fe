package dto

import (
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId"`
	Priority    string `json:"priority"`
}

// Input converts the request to the service input.
func (r CreateComplaintRequest) Input() service.CreateComplaintInput {
	return service.CreateComplaintInput{
		Title:       r.Title,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		Priority:    domain.ComplaintPriority(strings.ToUpper(strings.TrimSpace(r.Priority))),
	}
}

// UpdateComplaintRequest is a partial update. Omitted fields stay unchanged;
// an empty assignedToId clears the assignment.
type UpdateComplaintRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	CategoryID   *string `json:"categoryId"`
	Status       *string `json:"status"`
	Priority     *string `json:"priority"`
	AssignedToID *string `json:"assignedToId"`
}

// Patch converts the request to a domain patch.
func (r UpdateComplaintRequest) Patch() domain.ComplaintPatch {
	patch := domain.ComplaintPatch{
		Title:        r.Title,
		Description:  r.Description,
		CategoryID:   r.CategoryID,
		AssignedToID: r.AssignedToID,
	}
	if r.Status != nil {
		status := domain.ComplaintStatus(strings.ToUpper(strings.TrimSpace(*r.Status)))
		patch.Status = &status
	}
	if r.Priority != nil {
		priority := domain.ComplaintPriority(strings.ToUpper(strings.TrimSpace(*r.Priority)))
		patch.Priority = &priority
	}
	return patch
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Message string `json:"message"`
}

// CreateAttachmentRequest describes a file already placed in storage.
type CreateAttachmentRequest struct {
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	SizeBytes  int64  `json:"sizeBytes"`
	StorageKey string `json:"storageKey"`
}

// Input converts the request to the service input.
func (r CreateAttachmentRequest) Input() service.AttachmentInput {
	return service.AttachmentInput{
		FileName:   r.FileName,
		MimeType:   r.MimeType,
		SizeBytes:  r.SizeBytes,
		StorageKey: r.StorageKey,
	}
}
