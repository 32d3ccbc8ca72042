package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
)

type RouteHandler struct {
	routeService *services.RouteService
}

func NewRouteHandler(routeService *services.RouteService) *RouteHandler {
	return &RouteHandler{routeService: routeService}
}

// GET /api/v1/routes?action=list
func (h *RouteHandler) List(c *gin.Context) {
	routes, err := h.routeService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Routes retrieved", gin.H{"routes": routes})
}

// GET /api/v1/routes?action=get&id=
func (h *RouteHandler) Get(c *gin.Context) {
	routeID, ok := requiredID(c, "id")
	if !ok {
		return
	}

	route, err := h.routeService.Get(c.Request.Context(), routeID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Route retrieved", gin.H{"route": route})
}

// GET /api/v1/routes?action=stats
func (h *RouteHandler) Stats(c *gin.Context) {
	counts, err := h.routeService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Stats retrieved", countsBody(counts))
}

// GET /api/v1/routes?action=stops&id=
func (h *RouteHandler) Stops(c *gin.Context) {
	routeID, ok := requiredID(c, "id")
	if !ok {
		return
	}

	stops, err := h.routeService.Stops(c.Request.Context(), routeID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Stops retrieved", gin.H{"stops": stops})
}

// POST /api/v1/routes?action=create
func (h *RouteHandler) Create(c *gin.Context) {
	var req models.CreateRouteRequest
	if !bindJSON(c, &req) {
		return
	}

	routeID, err := h.routeService.Create(c.Request.Context(), &req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Route created successfully", gin.H{"route_id": routeID})
}

// POST /api/v1/routes?action=add_stop
func (h *RouteHandler) AddStop(c *gin.Context) {
	var req models.AddStopRequest
	if !bindJSON(c, &req) {
		return
	}

	stopID, err := h.routeService.AddStop(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Stop added successfully", gin.H{"stop_id": stopID})
}

// DELETE /api/v1/routes?action=delete&id=
func (h *RouteHandler) Delete(c *gin.Context) {
	routeID, ok := requiredID(c, "id")
	if !ok {
		return
	}

	if err := h.routeService.Delete(c.Request.Context(), routeID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Route deleted successfully", nil)
}
