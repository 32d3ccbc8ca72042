package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.ObserveRequest("GET", "/api/v1/buses", 200, 15*time.Millisecond)
	c.ObserveRequest("GET", "/api/v1/buses", 200, 20*time.Millisecond)
	c.ObserveRequest("GET", "", 404, time.Millisecond)
	c.LocationStored()
	c.LocationRejected("latitude_out_of_range")
	c.TripTransition("start", "ok")
	c.TripTransition("pause", "rejected")
	c.RetentionPruned("driver_locations", 40)
	c.RetentionPruned("activity_logs", 0)
	c.NATSSetConnected(true)

	out := scrape(t, c)
	assert.Contains(t, out, `bus_tracking_http_requests_total{method="GET",route="/api/v1/buses",status="200"} 2`)
	assert.Contains(t, out, `bus_tracking_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, out, "bus_tracking_locations_stored_total 1")
	assert.Contains(t, out, `bus_tracking_locations_rejected_total{reason="latitude_out_of_range"} 1`)
	assert.Contains(t, out, `bus_tracking_trip_transitions_total{action="pause",result="rejected"} 1`)
	assert.Contains(t, out, `bus_tracking_retention_deleted_rows_total{table="driver_locations"} 40`)
	assert.NotContains(t, out, `table="activity_logs"`)
	assert.Contains(t, out, "bus_tracking_nats_connected 1")
	assert.Contains(t, out, "go_goroutines")
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveRequest("GET", "/health", 200, time.Millisecond)
		c.LocationStored()
		c.LocationRejected("missing_field")
		c.TripTransition("end", "ok")
		c.RetentionPruned("activity_logs", 3)
		c.NATSPublishedInc()
		c.NATSPublishErrInc()
		c.PublishObserve(time.Millisecond)
		c.NATSSetConnected(false)
	})
}
