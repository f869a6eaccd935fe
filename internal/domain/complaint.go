package domain

import (
	"math"
	"time"
)

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusOpen       ComplaintStatus = "OPEN"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusResolved   ComplaintStatus = "RESOLVED"
	StatusRejected   ComplaintStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Closes reports whether entering s stamps the resolution time.
func (s ComplaintStatus) Closes() bool {
	return s == StatusResolved || s == StatusRejected
}

// ComplaintPriority enumerates urgency levels.
type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "LOW"
	PriorityMedium ComplaintPriority = "MEDIUM"
	PriorityHigh   ComplaintPriority = "HIGH"
	PriorityUrgent ComplaintPriority = "URGENT"
)

// Valid reports whether p is a known priority.
func (p ComplaintPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Complaint is the aggregate root for comments and attachments.
type Complaint struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	CategoryID   string            `json:"categoryId"`
	ReporterID   string            `json:"userId"`
	AssignedToID *string           `json:"assignedToId,omitempty"`
	Status       ComplaintStatus   `json:"status"`
	Priority     ComplaintPriority `json:"priority"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	ResolvedAt   *time.Time        `json:"resolvedAt,omitempty"`

	Category    *Category    `json:"category,omitempty"`
	Reporter    *UserSummary `json:"user,omitempty"`
	AssignedTo  *UserSummary `json:"assignedTo,omitempty"`
	Comments    []Comment    `json:"comments,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// ComplaintPatch carries a partial update; nil fields are left untouched.
type ComplaintPatch struct {
	Title        *string
	Description  *string
	CategoryID   *string
	Status       *ComplaintStatus
	Priority     *ComplaintPriority
	AssignedToID *string
}

// Patch field names, as they appear in request bodies.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldCategoryID   = "categoryId"
	FieldStatus       = "status"
	FieldPriority     = "priority"
	FieldAssignedToID = "assignedToId"
)

// Fields lists the names of the fields present in the patch.
func (p ComplaintPatch) Fields() []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, FieldTitle)
	}
	if p.Description != nil {
		fields = append(fields, FieldDescription)
	}
	if p.CategoryID != nil {
		fields = append(fields, FieldCategoryID)
	}
	if p.Status != nil {
		fields = append(fields, FieldStatus)
	}
	if p.Priority != nil {
		fields = append(fields, FieldPriority)
	}
	if p.AssignedToID != nil {
		fields = append(fields, FieldAssignedToID)
	}
	return fields
}

// IsEmpty reports whether the patch changes nothing.
func (p ComplaintPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// ComplaintFilter narrows complaint listings. Nil pointers match everything.
type ComplaintFilter struct {
	Status       *ComplaintStatus
	Priority     *ComplaintPriority
	CategoryID   *string
	ReporterID   *string
	AssignedToID *string
	Search       string
	Page         int
	Limit        int
}

// Offset returns the number of rows skipped for the filter's page. It
// saturates at math.MaxInt instead of wrapping.
func (f ComplaintFilter) Offset() int {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}
