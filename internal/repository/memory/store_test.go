package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

func TestStoreComplaintLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore(WithClock(SteppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)))

	dept := &domain.Department{Name: "IT Support"}
	require.NoError(t, s.Departments().Upsert(ctx, dept))
	again := &domain.Department{Name: "IT Support"}
	require.NoError(t, s.Departments().Upsert(ctx, again))
	require.Equal(t, dept.ID, again.ID)
	require.NoError(t, s.Departments().UpsertCategory(ctx, &domain.Category{ID: "cat-Hardware", DepartmentID: dept.ID, Name: "Hardware"}))

	reporter := &domain.User{Name: "Reporter", Email: "Reporter@Example.com", Role: domain.RoleUser}
	require.NoError(t, s.Users().Create(ctx, reporter))
	require.Equal(t, "reporter@example.com", reporter.Email)
	require.ErrorIs(t, s.Users().Create(ctx, &domain.User{Email: "reporter@example.com"}), repository.ErrDuplicate)
	_, err := s.Users().GetByID(ctx, "missing")
	require.ErrorIs(t, err, pgx.ErrNoRows)

	first := &domain.Complaint{Title: "Printer", Description: "jammed", CategoryID: "cat-Hardware", ReporterID: reporter.ID, Status: domain.StatusOpen, Priority: domain.PriorityLow}
	second := &domain.Complaint{Title: "Laptop", Description: "slow", CategoryID: "cat-Hardware", ReporterID: reporter.ID, Status: domain.StatusOpen, Priority: domain.PriorityHigh}
	require.NoError(t, s.Complaints().Create(ctx, first))
	require.NoError(t, s.Complaints().Create(ctx, second))

	items, total, err := s.Complaints().List(ctx, domain.ComplaintFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, second.ID, items[0].ID)
	require.Equal(t, "Reporter", items[0].Reporter.Name)

	resolved := domain.StatusResolved
	updated, err := s.Complaints().Update(ctx, first.ID, domain.ComplaintPatch{Status: &resolved})
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)

	require.NoError(t, s.Comments().Create(ctx, &domain.Comment{ComplaintID: first.ID, UserID: reporter.ID, Message: "any news?"}))
	got, err := s.Complaints().GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	require.Equal(t, reporter.ID, got.Comments[0].Author.ID)

	require.NoError(t, s.Complaints().Assign(ctx, first.ID, reporter.ID))
	got, err = s.Complaints().GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInProgress, got.Status)
	require.Nil(t, got.ResolvedAt)
	require.ErrorIs(t, s.Complaints().Assign(ctx, "missing", reporter.ID), pgx.ErrNoRows)

	missing, err := s.Complaints().GetByID(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, missing)

	counts, err := s.Complaints().CountByStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCounts{Total: 2, Open: 1, InProgress: 1}, counts)
	byDept, err := s.Complaints().CountByDepartment(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.DepartmentCount{{Name: "IT Support", Count: 2}}, byDept)
}

func TestStoreUpdateReturnsItsOwnWrite(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Departments().UpsertCategory(ctx, &domain.Category{ID: "cat-Hardware", Name: "Hardware"}))
	c := &domain.Complaint{Title: "start", Description: "d", CategoryID: "cat-Hardware", ReporterID: "u1", Status: domain.StatusOpen}
	require.NoError(t, s.Complaints().Create(ctx, c))

	const writers = 32
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			title := fmt.Sprintf("title-%d", i)
			for j := 0; j < 50; j++ {
				got, err := s.Complaints().Update(ctx, c.ID, domain.ComplaintPatch{Title: &title})
				if err != nil {
					errs <- err
					return
				}
				if got.Title != title {
					errs <- fmt.Errorf("wrote %q, read back %q", title, got.Title)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
