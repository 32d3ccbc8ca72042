package models

import (
	"time"
)

// DefaultBusCapacity is used when a bus is created without a capacity
const DefaultBusCapacity = 50

// Bus represents a vehicle in the fleet
type Bus struct {
	ID                int64     `json:"bus_id" db:"bus_id"`
	BusNumber         string    `json:"bus_number" db:"bus_number"`
	RegistrationPlate string    `json:"registration_plate" db:"registration_plate"`
	RouteID           *int64    `json:"route_id" db:"route_id"`
	DriverID          *int64    `json:"driver_id" db:"driver_id"`
	Capacity          int       `json:"capacity" db:"capacity"`
	Model             *string   `json:"model" db:"model"`
	Color             *string   `json:"color" db:"color"`
	Status            TripState `json:"status" db:"status"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// BusDetail is a bus joined with its route, driver, live status and latest fix
type BusDetail struct {
	Bus

	RouteNumber *string `json:"route_number" db:"route_number"`
	RouteName   *string `json:"route_name" db:"route_name"`
	DriverName  *string `json:"driver_name" db:"driver_name"`

	CurrentLatitude   *float64   `json:"current_latitude" db:"current_latitude"`
	CurrentLongitude  *float64   `json:"current_longitude" db:"current_longitude"`
	CurrentPassengers int        `json:"current_passengers" db:"current_passengers"`
	IsRunning         bool       `json:"is_running" db:"is_running"`
	LastUpdate        *time.Time `json:"last_update" db:"last_update"`

	LastSpeedKmh   *float64   `json:"speed_kmh" db:"speed_kmh"`
	LastReportedAt *time.Time `json:"last_location_at" db:"last_location_at"`
}

// BusStatus is the per-bus live position and occupancy cache
type BusStatus struct {
	BusID             int64      `json:"bus_id" db:"bus_id"`
	CurrentLatitude   *float64   `json:"current_latitude" db:"current_latitude"`
	CurrentLongitude  *float64   `json:"current_longitude" db:"current_longitude"`
	CurrentPassengers int        `json:"current_passengers" db:"current_passengers"`
	IsRunning         bool       `json:"is_running" db:"is_running"`
	LastUpdate        *time.Time `json:"last_update" db:"last_update"`

	// Joined from buses.status
	TripState TripState `json:"status" db:"status"`
}

// DriverAssignment describes the bus a driver is assigned to
type DriverAssignment struct {
	BusID             int64     `json:"bus_id" db:"bus_id"`
	BusNumber         string    `json:"bus_number" db:"bus_number"`
	RegistrationPlate string    `json:"registration_plate" db:"registration_plate"`
	Capacity          int       `json:"capacity" db:"capacity"`
	Status            TripState `json:"status" db:"status"`

	RouteID       *int64   `json:"route_id" db:"route_id"`
	RouteNumber   *string  `json:"route_number" db:"route_number"`
	RouteName     *string  `json:"route_name" db:"route_name"`
	StartLocation *string  `json:"start_location" db:"start_location"`
	EndLocation   *string  `json:"end_location" db:"end_location"`
	DistanceKm    *float64 `json:"distance_km" db:"distance_km"`

	CurrentLatitude   *float64   `json:"current_latitude" db:"current_latitude"`
	CurrentLongitude  *float64   `json:"current_longitude" db:"current_longitude"`
	CurrentPassengers int        `json:"current_passengers" db:"current_passengers"`
	IsRunning         bool       `json:"is_running" db:"is_running"`
	LastUpdate        *time.Time `json:"last_update" db:"last_update"`

	TotalStops int `json:"total_stops" db:"total_stops"`
}

// CreateBusRequest represents the request to create a new bus
type CreateBusRequest struct {
	BusNumber         string  `json:"bus_number" binding:"required"`
	RegistrationPlate string  `json:"registration_plate" binding:"required"`
	RouteID           int64   `json:"route_id" binding:"required,gt=0"`
	Capacity          *int    `json:"capacity" binding:"omitempty,gt=0"`
	Model             *string `json:"model"`
	Color             *string `json:"color"`
}

// UpdatePassengersRequest sets the live passenger count of a bus
type UpdatePassengersRequest struct {
	BusID             int64 `json:"bus_id" binding:"required,gt=0"`
	CurrentPassengers *int  `json:"current_passengers" binding:"required,gte=0"`
}

// AssignBusRequest assigns a driver to a bus
type AssignBusRequest struct {
	DriverID int64 `json:"driver_id" binding:"required,gt=0"`
	BusID    int64 `json:"bus_id" binding:"required,gt=0"`
}

// TripRequest is the payload of every trip lifecycle action
type TripRequest struct {
	BusID    int64  `json:"bus_id" binding:"required,gt=0"`
	DriverID *int64 `json:"driver_id" binding:"omitempty,gt=0"`
}

// EntityCounts is the total/active/inactive breakdown used by stats actions
type EntityCounts struct {
	Total    int `json:"total" db:"total"`
	Active   int `json:"active" db:"active"`
	Inactive int `json:"inactive" db:"inactive"`
}
