package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
)

type BusHandler struct {
	busService *services.BusService
}

func NewBusHandler(busService *services.BusService) *BusHandler {
	return &BusHandler{busService: busService}
}

// GET /api/v1/buses?action=list
func (h *BusHandler) List(c *gin.Context) {
	buses, err := h.busService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Buses retrieved", gin.H{"buses": buses})
}

// GET /api/v1/buses?action=get&id=
func (h *BusHandler) Get(c *gin.Context) {
	busID, ok := requiredID(c, "id")
	if !ok {
		return
	}

	bus, err := h.busService.Get(c.Request.Context(), busID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Bus retrieved", gin.H{"bus": bus})
}

// GET /api/v1/buses?action=stats
func (h *BusHandler) Stats(c *gin.Context) {
	counts, err := h.busService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Stats retrieved", countsBody(counts))
}

// POST /api/v1/buses?action=create
func (h *BusHandler) Create(c *gin.Context) {
	var req models.CreateBusRequest
	if !bindJSON(c, &req) {
		return
	}

	busID, err := h.busService.Create(c.Request.Context(), &req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Bus created successfully", gin.H{"bus_id": busID})
}

// POST /api/v1/buses?action=update_passengers
func (h *BusHandler) UpdatePassengers(c *gin.Context) {
	var req models.UpdatePassengersRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.busService.UpdatePassengers(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Passenger count updated", nil)
}

// DELETE /api/v1/buses?action=delete&id=
func (h *BusHandler) Delete(c *gin.Context) {
	busID, ok := requiredID(c, "id")
	if !ok {
		return
	}

	if err := h.busService.Delete(c.Request.Context(), busID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Bus deleted successfully", nil)
}
