package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GET /api/v1/analytics?action=overview
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	overview, err := h.analyticsService.Overview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Analytics overview retrieved", gin.H{
		"total_buses":       overview.TotalBuses,
		"active_buses":      overview.ActiveBuses,
		"inactive_buses":    overview.InactiveBuses,
		"trips_today":       overview.TripsToday,
		"total_distance_km": math.Round(overview.TotalDistanceKm*100) / 100,
		"total_passengers":  overview.TotalPassengers,
	})
}

// GET /api/v1/analytics?action=daily_stats
func (h *AnalyticsHandler) DailyStats(c *gin.Context) {
	stats, err := h.analyticsService.DailyStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Daily stats retrieved", gin.H{"stats": stats})
}

// GET /api/v1/analytics?action=route_performance
func (h *AnalyticsHandler) RoutePerformance(c *gin.Context) {
	perf, err := h.analyticsService.RoutePerformance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Route performance retrieved", gin.H{"routes": perf})
}
