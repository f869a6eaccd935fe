package dto

import "github.com/spec-kit/complaint-service/internal/service"

// AssignRequest payload for POST /api/admin/assign.
type AssignRequest struct {
	ComplaintID string `json:"complaintId"`
	StaffID     string `json:"staffId"`
}

// SeedResponse acknowledges a seed run.
type SeedResponse struct {
	Message string              `json:"message"`
	Result  *service.SeedResult `json:"result"`
}
