package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

type LocationHandler struct {
	locationService *services.LocationService
}

func NewLocationHandler(locationService *services.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// POST /api/v1/locations?action=update
func (h *LocationHandler) Update(c *gin.Context) {
	var req models.LocationUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	loc, err := h.locationService.Update(c.Request.Context(), &req, caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Location updated successfully", gin.H{"location_id": loc.ID})
}

// GET /api/v1/locations?action=current&bus_id=
func (h *LocationHandler) Current(c *gin.Context) {
	busID, ok := requiredID(c, "bus_id")
	if !ok {
		return
	}

	loc, err := h.locationService.Current(c.Request.Context(), busID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Location retrieved", gin.H{"location": loc})
}

// GET /api/v1/locations?action=history&bus_id=[&limit=][&format=geojson]
func (h *LocationHandler) History(c *gin.Context) {
	busID, ok := requiredID(c, "bus_id")
	if !ok {
		return
	}

	locations, limit, err := h.locationService.History(c.Request.Context(), busID, queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if strings.EqualFold(c.Query("format"), "geojson") {
		respond(c, http.StatusOK, "History retrieved", gin.H{
			"feature": historyFeature(busID, locations),
			"limit":   limit,
		})
		return
	}

	respond(c, http.StatusOK, "History retrieved", gin.H{
		"locations": locations,
		"count":     len(locations),
		"limit":     limit,
	})
}

// historyFeature turns newest-first samples into a chronological LineString.
// Fewer than two samples have no line, so the geometry is null.
func historyFeature(busID int64, locations []models.DriverLocation) *geojson.Feature {
	feature := &geojson.Feature{
		Properties: map[string]interface{}{
			"bus_id": busID,
			"points": len(locations),
		},
	}
	if len(locations) == 0 {
		return feature
	}

	coords := make([]geom.Coord, 0, len(locations))
	for i := len(locations) - 1; i >= 0; i-- {
		coords = append(coords, geom.Coord{locations[i].Longitude, locations[i].Latitude})
	}

	feature.Properties["from"] = locations[len(locations)-1].CreatedAt
	feature.Properties["to"] = locations[0].CreatedAt
	if len(coords) >= 2 {
		feature.Geometry = geom.NewLineString(geom.XY).MustSetCoords(coords)
	}
	return feature
}
