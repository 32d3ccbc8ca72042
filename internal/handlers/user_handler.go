package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
)

// UserHandler serves the admin user management actions
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/v1/users?action=list[&type=]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Users retrieved", gin.H{"users": users})
}

// GET /api/v1/users?action=get&id=
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := requiredID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User retrieved", gin.H{"user": user})
}

// GET /api/v1/users?action=stats[&type=]
func (h *UserHandler) Stats(c *gin.Context) {
	counts, err := h.userService.Stats(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Stats retrieved", countsBody(counts))
}

// POST /api/v1/users?action=create
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "User created successfully", gin.H{"user_id": user.ID})
}

// DELETE /api/v1/users?action=delete&id=
func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := requiredID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), userID, actorID(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User deleted successfully", nil)
}
