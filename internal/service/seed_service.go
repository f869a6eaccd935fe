package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// SeedResult summarizes a seed run.
type SeedResult struct {
	Departments  int `json:"departments"`
	Categories   int `json:"categories"`
	UsersCreated int `json:"usersCreated"`
}

type seedDepartment struct {
	name       string
	categories []string
}

type seedUser struct {
	name       string
	email      string
	password   string
	role       domain.Role
	department string
}

var seedDepartments = []seedDepartment{
	{name: "IT Support", categories: []string{"Hardware", "Software"}},
	{name: "HR", categories: []string{"Payroll", "Benefits"}},
}

var seedUsers = []seedUser{
	{name: "Admin User", email: "admin@example.com", password: "password123", role: domain.RoleAdmin},
	{name: "Staff Member", email: "staff@example.com", password: "password123", role: domain.RoleStaff, department: "IT Support"},
	{name: "Demo User", email: "demo@gmail.com", password: "12341234", role: domain.RoleUser},
}

// SeedService loads demo reference data and accounts.
type SeedService struct {
	departments repository.DepartmentRepository
	users       repository.UserRepository
	bcryptCost  int
	logger      *zap.Logger
}

// NewSeedService constructs the service.
func NewSeedService(departments repository.DepartmentRepository, users repository.UserRepository, bcryptCost int, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{departments: departments, users: users, bcryptCost: bcryptCost, logger: logger}
}

// CategoryID returns the stable id given to a seeded category.
func CategoryID(name string) string {
	return "cat-" + name
}

// Seed upserts the demo data. Running it again changes nothing; accounts
// that already exist are left untouched.
func (s *SeedService) Seed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}
	deptIDs := map[string]string{}

	for _, sd := range seedDepartments {
		dept := &domain.Department{Name: sd.name}
		if err := s.departments.Upsert(ctx, dept); err != nil {
			return nil, apperrors.MapError(err)
		}
		deptIDs[sd.name] = dept.ID
		result.Departments++

		for _, name := range sd.categories {
			cat := &domain.Category{ID: CategoryID(name), DepartmentID: dept.ID, Name: name}
			if err := s.departments.UpsertCategory(ctx, cat); err != nil {
				return nil, apperrors.MapError(err)
			}
			result.Categories++
		}
	}

	for _, su := range seedUsers {
		if _, err := s.users.GetByEmail(ctx, su.email); err == nil {
			continue
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}

		hash, err := auth.HashPassword(su.password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user := &domain.User{Name: su.name, Email: su.email, PasswordHash: hash, Role: su.role}
		if id, ok := deptIDs[su.department]; ok {
			user.DepartmentID = &id
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return nil, apperrors.MapError(err)
		}
		result.UsersCreated++
	}

	s.logger.Info("demo data seeded",
		zap.Int("departments", result.Departments),
		zap.Int("categories", result.Categories),
		zap.Int("users_created", result.UsersCreated))
	return result, nil
}
