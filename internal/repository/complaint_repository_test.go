package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	require.Equal(t, `100\%`, escapeLike("100%"))
	require.Equal(t, `a\_b`, escapeLike("a_b"))
	require.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
	require.Equal(t, "printer", escapeLike("printer"))
}

func TestBuildComplaintWhere(t *testing.T) {
	t.Parallel()

	status := domain.StatusOpen
	reporter := "u1"
	where, args := buildComplaintWhere(domain.ComplaintFilter{
		Status:     &status,
		ReporterID: &reporter,
		Search:     "  wifi ",
	})
	require.Equal(t,
		`1=1 AND c.status=$1 AND c.user_id=$2 AND (c.title ILIKE $3 ESCAPE '\' OR c.description ILIKE $3 ESCAPE '\')`,
		where)
	require.Equal(t, []any{domain.StatusOpen, "u1", "%wifi%"}, args)

	where, args = buildComplaintWhere(domain.ComplaintFilter{Search: "   "})
	require.Equal(t, "1=1", where)
	require.Empty(t, args)
}

func TestComplaintFilterOffset(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, domain.ComplaintFilter{Page: 1, Limit: 10}.Offset())
	require.Equal(t, 20, domain.ComplaintFilter{Page: 3, Limit: 10}.Offset())
	require.Equal(t, 0, domain.ComplaintFilter{Page: 0, Limit: 10}.Offset())
	require.Equal(t, math.MaxInt, domain.ComplaintFilter{Page: 1 << 62, Limit: 4}.Offset())
	require.Equal(t, math.MaxInt, domain.ComplaintFilter{Page: math.MaxInt, Limit: 100}.Offset())
}
