package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
)

type LogHandler struct {
	activityService *services.ActivityService
}

func NewLogHandler(activityService *services.ActivityService) *LogHandler {
	return &LogHandler{activityService: activityService}
}

// GET /api/v1/logs?action=recent[&limit=]
func (h *LogHandler) Recent(c *gin.Context) {
	logs, err := h.activityService.Recent(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Logs retrieved", gin.H{"logs": logs})
}

// GET /api/v1/logs?action=user&user_id=[&limit=]
func (h *LogHandler) ByUser(c *gin.Context) {
	userID, ok := requiredID(c, "user_id")
	if !ok {
		return
	}

	logs, err := h.activityService.ByUser(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Logs retrieved", gin.H{"logs": logs})
}

// GET /api/v1/logs?action=entity&entity_type=&entity_id=[&limit=]
func (h *LogHandler) ByEntity(c *gin.Context) {
	entityID, ok := requiredID(c, "entity_id")
	if !ok {
		return
	}

	logs, err := h.activityService.ByEntity(c.Request.Context(), c.Query("entity_type"), entityID, queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Logs retrieved", gin.H{"logs": logs})
}
