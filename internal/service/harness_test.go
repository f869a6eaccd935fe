package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository/memory"
)

type harness struct {
	store      *memory.Store
	sink       *recordingSink
	auth       *AuthService
	complaints *ComplaintService
	admin      *AdminService
	catalog    *CatalogService
	seed       *SeedService

	adminP, staffP, userP *auth.Principal
	otherP                *auth.Principal
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore(memory.WithClock(memory.SteppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)))
	sink := &recordingSink{}
	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, sink, nil, nil).RegisterHandlers()

	cfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost}
	complaints := NewComplaintService(ComplaintDependencies{
		ComplaintRepo:  store.Complaints(),
		UserRepo:       store.Users(),
		DepartmentRepo: store.Departments(),
		CommentRepo:    store.Comments(),
		AttachmentRepo: store.Attachments(),
		Dispatcher:     dispatcher,
	})
	h := &harness{
		store: store,
		sink:  sink,
		auth: NewAuthService(cfg, AuthDependencies{
			UserRepo:       store.Users(),
			DepartmentRepo: store.Departments(),
			TokenManager:   auth.NewTokenManager(cfg.JWTSecret, time.Hour),
		}),
		complaints: complaints,
		admin: NewAdminService(AdminDependencies{
			ComplaintRepo:    store.Complaints(),
			UserRepo:         store.Users(),
			ComplaintService: complaints,
		}),
		catalog: NewCatalogService(store.Departments()),
		seed:    NewSeedService(store.Departments(), store.Users(), bcrypt.MinCost, nil),
	}

	_, err := h.seed.Seed(ctx)
	require.NoError(t, err)

	h.adminP = h.principal(t, "admin@example.com")
	h.staffP = h.principal(t, "staff@example.com")
	h.userP = h.principal(t, "demo@gmail.com")

	other, err := h.auth.Register(ctx, RegisterInput{Name: "Other", Email: "other@example.com", Password: "password123"})
	require.NoError(t, err)
	h.otherP = auth.PrincipalFromUser(other)
	return h
}

func (h *harness) principal(t *testing.T, email string) *auth.Principal {
	t.Helper()
	u, err := h.store.Users().GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return auth.PrincipalFromUser(u)
}

func (h *harness) file(t *testing.T, p *auth.Principal, title, description string) *domain.Complaint {
	t.Helper()
	c, err := h.complaints.Create(context.Background(), p, CreateComplaintInput{
		Title:       title,
		Description: description,
		CategoryID:  CategoryID("Hardware"),
		Priority:    domain.PriorityHigh,
	})
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T { return &v }
