package models

import "time"

// DriverLocation is one immutable GPS sample reported by a driver
type DriverLocation struct {
	ID             int64     `json:"location_id" db:"location_id"`
	BusID          int64     `json:"bus_id" db:"bus_id"`
	DriverID       int64     `json:"driver_id" db:"driver_id"`
	Latitude       float64   `json:"latitude" db:"latitude"`
	Longitude      float64   `json:"longitude" db:"longitude"`
	SpeedKmh       float64   `json:"speed_kmh" db:"speed_kmh"`
	AccuracyMeters float64   `json:"accuracy_meters" db:"accuracy_meters"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// LocationUpdateRequest is the driver app's periodic GPS report.
// Pointers distinguish an absent coordinate from a legitimate 0.
type LocationUpdateRequest struct {
	BusID          *int64   `json:"bus_id"`
	DriverID       *int64   `json:"driver_id"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	SpeedKmh       *float64 `json:"speed_kmh"`
	AccuracyMeters *float64 `json:"accuracy_meters"`
}
