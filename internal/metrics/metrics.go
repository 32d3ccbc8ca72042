package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the process's Prometheus registry. A nil *Collector is a
// valid no-op, so services can be built without metrics in tests.
type Collector struct {
	reg *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec   // method, route, status
	HTTPDuration    *prometheus.HistogramVec // method, route
	LocationsStored prometheus.Counter
	LocationsReject *prometheus.CounterVec // reason
	TripTransitions *prometheus.CounterVec // action, result

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram

	RetentionDeleted *prometheus.CounterVec // table
}

// NewCollector builds and registers all metrics
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bus_tracking_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bus_tracking_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LocationsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bus_tracking_locations_stored_total",
			Help: "GPS samples accepted and stored.",
		}),
		LocationsReject: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bus_tracking_locations_rejected_total",
			Help: "GPS samples rejected before storage.",
		}, []string{"reason"}),
		TripTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bus_tracking_trip_transitions_total",
			Help: "Trip lifecycle transitions by action and result.",
		}, []string{"action", "result"}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bus_tracking_nats_published_total",
			Help: "Location messages published to NATS.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bus_tracking_nats_publish_errors_total",
			Help: "Failed NATS publishes.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bus_tracking_nats_connected",
			Help: "1 if the NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bus_tracking_nats_publish_duration_seconds",
			Help:    "Duration to marshal and publish a location message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		RetentionDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bus_tracking_retention_deleted_rows_total",
			Help: "Rows removed by retention jobs.",
		}, []string{"table"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests, c.HTTPDuration,
		c.LocationsStored, c.LocationsReject, c.TripTransitions,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
		c.RetentionDeleted,
	)

	return c
}

// Handler exposes the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// LocationStored counts an accepted GPS sample
func (c *Collector) LocationStored() {
	if c == nil {
		return
	}
	c.LocationsStored.Inc()
}

// LocationRejected counts a GPS sample refused by validation
func (c *Collector) LocationRejected(reason string) {
	if c == nil {
		return
	}
	c.LocationsReject.WithLabelValues(reason).Inc()
}

// TripTransition counts a lifecycle request; result is ok, rejected or error
func (c *Collector) TripTransition(action, result string) {
	if c == nil {
		return
	}
	c.TripTransitions.WithLabelValues(action, result).Inc()
}

// RetentionPruned counts rows removed from table
func (c *Collector) RetentionPruned(table string, rows int64) {
	if c == nil || rows <= 0 {
		return
	}
	c.RetentionDeleted.WithLabelValues(table).Add(float64(rows))
}

// NATSPublishedInc, NATSPublishErrInc, PublishObserve and NATSSetConnected
// satisfy publisher.Metrics.
func (c *Collector) NATSPublishedInc() {
	if c == nil {
		return
	}
	c.NATSPublished.Inc()
}

func (c *Collector) NATSPublishErrInc() {
	if c == nil {
		return
	}
	c.NATSPublishErrs.Inc()
}

func (c *Collector) PublishObserve(d time.Duration) {
	if c == nil {
		return
	}
	c.PublishDuration.Observe(d.Seconds())
}

func (c *Collector) NATSSetConnected(connected bool) {
	if c == nil {
		return
	}
	if connected {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}
