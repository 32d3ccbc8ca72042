package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
)

type DriverHandler struct {
	driverService *services.DriverService
}

func NewDriverHandler(driverService *services.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// GET /api/v1/drivers?action=assigned_bus&user_id=
func (h *DriverHandler) AssignedBus(c *gin.Context) {
	driverID, ok := requiredID(c, "user_id")
	if !ok {
		return
	}

	assignment, err := h.driverService.AssignedBus(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Bus assignment retrieved", gin.H{"bus": assignment})
}

// GET /api/v1/drivers?action=route_stops&bus_id=
func (h *DriverHandler) RouteStops(c *gin.Context) {
	busID, ok := requiredID(c, "bus_id")
	if !ok {
		return
	}

	stops, err := h.driverService.RouteStops(c.Request.Context(), busID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Route stops retrieved", gin.H{"stops": stops})
}

// GET /api/v1/drivers?action=current_status&bus_id=
func (h *DriverHandler) CurrentStatus(c *gin.Context) {
	busID, ok := requiredID(c, "bus_id")
	if !ok {
		return
	}

	status, err := h.driverService.CurrentStatus(c.Request.Context(), busID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Bus status retrieved", gin.H{"status": status})
}

// POST /api/v1/drivers?action=assign_bus
func (h *DriverHandler) AssignBus(c *gin.Context) {
	var req models.AssignBusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.driverService.AssignBus(c.Request.Context(), &req, actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Bus assigned to driver successfully", nil)
}
