package publisher

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-tracking-backend/internal/config"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// Metrics receives publisher health signals
type Metrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

// NATSPublisher fans out accepted GPS samples to live subscribers
type NATSPublisher struct {
	nc      *nats.Conn
	prefix  string
	metrics Metrics
}

// LocationMessage is the payload published on <prefix>.<bus_id>
type LocationMessage struct {
	LocationID     int64     `json:"location_id"`
	BusID          int64     `json:"bus_id"`
	DriverID       int64     `json:"driver_id"`
	Latitude       float64   `json:"lat"`
	Longitude      float64   `json:"lon"`
	SpeedKmh       float64   `json:"speed"`
	AccuracyMeters float64   `json:"accuracy"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewNATSPublisher connects to cfg.URL. The connection reconnects on its
// own; handlers keep the connected gauge in sync.
func NewNATSPublisher(cfg config.NATSConfig, m Metrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logrus.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			logrus.WithField("url", conn.ConnectedUrl()).Info("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logrus.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	if m != nil {
		m.NATSSetConnected(true)
	}

	return &NATSPublisher{nc: nc, prefix: cfg.SubjectPrefix, metrics: m}, nil
}

// PublishLocation publishes one stored sample
func (p *NATSPublisher) PublishLocation(loc *models.DriverLocation) error {
	data, err := json.Marshal(NewLocationMessage(loc))
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}

	start := time.Now()
	err = p.nc.Publish(LocationSubject(p.prefix, loc.BusID), data)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	if err != nil {
		return fmt.Errorf("failed to publish location for bus %d: %w", loc.BusID, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

// NewLocationMessage converts a stored sample into its wire form
func NewLocationMessage(loc *models.DriverLocation) LocationMessage {
	ts := loc.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return LocationMessage{
		LocationID:     loc.ID,
		BusID:          loc.BusID,
		DriverID:       loc.DriverID,
		Latitude:       loc.Latitude,
		Longitude:      loc.Longitude,
		SpeedKmh:       loc.SpeedKmh,
		AccuracyMeters: loc.AccuracyMeters,
		Timestamp:      ts.UTC(),
	}
}

// LocationSubject returns the subject for a bus, e.g. bus.locations.42
func LocationSubject(prefix string, busID int64) string {
	parts := []string{}
	for _, token := range strings.Split(prefix, ".") {
		if token = strings.TrimSpace(token); token != "" {
			parts = append(parts, subjectToken(token))
		}
	}
	parts = append(parts, strconv.FormatInt(busID, 10))
	return strings.Join(parts, ".")
}

func subjectToken(s string) string {
	// tokens cannot contain whitespace or wildcards
	repl := strings.NewReplacer(" ", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(strings.TrimSpace(s))
	if s == "" {
		s = "_"
	}
	return s
}
