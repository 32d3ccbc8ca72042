package models

import "time"

// Route represents a bus route
type Route struct {
	ID                   int64     `json:"route_id" db:"route_id"`
	RouteNumber          string    `json:"route_number" db:"route_number"`
	RouteName            string    `json:"route_name" db:"route_name"`
	StartLocation        *string   `json:"start_location" db:"start_location"`
	EndLocation          *string   `json:"end_location" db:"end_location"`
	DistanceKm           *float64  `json:"distance_km" db:"distance_km"`
	EstimatedTimeMinutes *int      `json:"estimated_time_minutes" db:"estimated_time_minutes"`
	IsActive             bool      `json:"is_active" db:"is_active"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	StopCount            int       `json:"stop_count" db:"stop_count"`
}

// Stop is an ordered stop along a route
type Stop struct {
	ID         int64    `json:"stop_id" db:"stop_id"`
	RouteID    int64    `json:"route_id" db:"route_id"`
	StopNumber int      `json:"stop_number" db:"stop_number"`
	StopName   string   `json:"stop_name" db:"stop_name"`
	Latitude   *float64 `json:"latitude" db:"latitude"`
	Longitude  *float64 `json:"longitude" db:"longitude"`
}

// CreateRouteRequest represents the request to create a route
type CreateRouteRequest struct {
	RouteNumber          string   `json:"route_number" binding:"required"`
	RouteName            string   `json:"route_name" binding:"required"`
	StartLocation        *string  `json:"start_location"`
	EndLocation          *string  `json:"end_location"`
	DistanceKm           *float64 `json:"distance_km" binding:"omitempty,gte=0"`
	EstimatedTimeMinutes *int     `json:"estimated_time_minutes" binding:"omitempty,gte=0"`
}

// AddStopRequest appends a stop to a route
type AddStopRequest struct {
	RouteID    int64    `json:"route_id" binding:"required,gt=0"`
	StopNumber int      `json:"stop_number" binding:"required,gt=0"`
	StopName   string   `json:"stop_name" binding:"required"`
	Latitude   *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
}
