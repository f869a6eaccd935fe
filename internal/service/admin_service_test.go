package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func TestAssignComplaint(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.file(t, h.userP, "mine", "d")

	_, err := h.complaints.Update(ctx, h.adminP, c.ID, domain.ComplaintPatch{Status: ptr(domain.StatusResolved)})
	require.NoError(t, err)
	h.sink.Reset()

	got, err := h.admin.AssignComplaint(ctx, h.adminP, c.ID, h.staffP.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInProgress, got.Status)
	require.Equal(t, h.staffP.ID, *got.AssignedToID)
	require.Nil(t, got.ResolvedAt)
	require.Equal(t, []events.EventType{events.EventComplaintUpdated, events.EventStatusChange}, h.sink.Types())

	again, err := h.admin.AssignComplaint(ctx, h.adminP, c.ID, h.adminP.ID)
	require.NoError(t, err)
	require.Equal(t, h.adminP.ID, *again.AssignedToID)

	cases := []struct {
		name              string
		complaint, target string
		code              string
	}{
		{"missing ids", "", h.staffP.ID, apperrors.CodeValidation},
		{"unknown complaint", "missing", h.staffP.ID, apperrors.CodeNotFound},
		{"unknown staff", c.ID, "missing", apperrors.CodeNotFound},
		{"target is a plain user", c.ID, h.otherP.ID, apperrors.CodeValidation},
	}
	for _, tc := range cases {
		_, err := h.admin.AssignComplaint(ctx, h.adminP, tc.complaint, tc.target)
		require.True(t, apperrors.HasCode(err, tc.code), "%s: %v", tc.name, err)
	}

	_, err = h.admin.AssignComplaint(ctx, h.staffP, c.ID, h.staffP.ID)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestAnalytics(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a := h.file(t, h.userP, "one", "d")
	b := h.file(t, h.userP, "two", "d")
	h.file(t, h.userP, "three", "d")
	_, err := h.complaints.Create(ctx, h.userP, CreateComplaintInput{Title: "pay", Description: "d", CategoryID: CategoryID("Payroll")})
	require.NoError(t, err)

	_, err = h.complaints.Update(ctx, h.staffP, a.ID, domain.ComplaintPatch{Status: ptr(domain.StatusResolved)})
	require.NoError(t, err)
	_, err = h.complaints.Update(ctx, h.staffP, b.ID, domain.ComplaintPatch{Status: ptr(domain.StatusRejected)})
	require.NoError(t, err)

	got, err := h.admin.GetAnalytics(ctx, h.adminP)
	require.NoError(t, err)
	counts := got.Counts
	require.Equal(t, 4, counts.Total)
	require.Equal(t, counts.Total, counts.Open+counts.InProgress+counts.Resolved+counts.Rejected)
	require.Equal(t, domain.StatusCounts{Total: 4, Open: 2, Resolved: 1, Rejected: 1}, counts)
	require.Equal(t, []domain.DepartmentCount{{Name: "HR", Count: 1}, {Name: "IT Support", Count: 3}}, got.DeptStats)

	_, err = h.admin.GetAnalytics(ctx, h.staffP)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	_, err = h.admin.GetAnalytics(ctx, h.userP)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestListStaff(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	staff, err := h.admin.ListStaff(ctx, h.adminP)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	require.Equal(t, "staff@example.com", staff[0].Email)

	_, err = h.admin.ListStaff(ctx, h.staffP)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}
