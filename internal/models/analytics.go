package models

// FleetOverview is the dashboard snapshot for the whole fleet
type FleetOverview struct {
	TotalBuses      int     `json:"total_buses" db:"total_buses"`
	ActiveBuses     int     `json:"active_buses" db:"active_buses"`
	InactiveBuses   int     `json:"inactive_buses" db:"inactive_buses"`
	TripsToday      int     `json:"trips_today" db:"trips_today"`
	TotalDistanceKm float64 `json:"total_distance_km" db:"total_distance_km"`
	TotalPassengers int     `json:"total_passengers" db:"total_passengers"`
}

// DailyStat aggregates GPS activity for one calendar day
type DailyStat struct {
	Date          string  `json:"date" db:"date"`
	BusesActive   int     `json:"buses_active" db:"buses_active"`
	DriversActive int     `json:"drivers_active" db:"drivers_active"`
	MaxSpeed      float64 `json:"max_speed" db:"max_speed"`
	AvgSpeed      float64 `json:"avg_speed" db:"avg_speed"`
}

// RoutePerformance aggregates GPS activity per route
type RoutePerformance struct {
	RouteID     int64   `json:"route_id" db:"route_id"`
	RouteNumber string  `json:"route_number" db:"route_number"`
	RouteName   string  `json:"route_name" db:"route_name"`
	Buses       int     `json:"buses" db:"buses"`
	GPSPoints   int     `json:"gps_points" db:"gps_points"`
	AvgSpeed    float64 `json:"avg_speed" db:"avg_speed"`
	MaxSpeed    float64 `json:"max_speed" db:"max_speed"`
}
