package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsRecorders(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRequest("/api/complaints", http.MethodGet, 200, 10*time.Millisecond)
	m.RecordError("NOT_FOUND")
	m.ComplaintCreated("HIGH")
	m.StatusChanged("OPEN", "RESOLVED")
	m.EventPublished("new-complaint")
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.DeliveryDropped()

	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/complaints", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("NOT_FOUND")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.complaints.WithLabelValues("HIGH")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.statusChanges.WithLabelValues("OPEN", "RESOLVED")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.sessions))
	require.Equal(t, 1.0, testutil.ToFloat64(m.deliveriesDropped))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordRequest("/", http.MethodGet, 200, time.Millisecond)
		m.RecordError("X")
		m.SessionOpened()
		m.DeliveryDropped()
	})
}

func TestRequestLoggerUsesRoutePattern(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/api/complaints/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/complaints/abc", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/complaints/:id", "204")))
}
