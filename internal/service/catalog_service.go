package service

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// CatalogService exposes the department and category reference data.
type CatalogService struct {
	departments repository.DepartmentRepository
}

// NewCatalogService constructs the service.
func NewCatalogService(departments repository.DepartmentRepository) *CatalogService {
	return &CatalogService{departments: departments}
}

// ListDepartments returns every department with its categories.
func (s *CatalogService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	depts, err := s.departments.ListWithCategories(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if depts == nil {
		depts = []domain.Department{}
	}
	return depts, nil
}
