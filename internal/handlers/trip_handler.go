package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
)

type TripHandler struct {
	tripService *services.TripService
}

func NewTripHandler(tripService *services.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// Transition returns the handler for POST /api/v1/trips?action=<action>
func (h *TripHandler) Transition(action models.TripAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TripRequest
		if !bindJSON(c, &req) {
			return
		}

		transition, err := h.tripService.Transition(c.Request.Context(), action, &req, actorID(c))
		if err != nil {
			respondError(c, err)
			return
		}

		respond(c, http.StatusOK, "Trip "+action.PastTense()+" successfully", gin.H{
			"bus_id":          transition.BusID,
			"status":          transition.To,
			"previous_status": transition.From,
			"is_running":      transition.IsRunning,
		})
	}
}
