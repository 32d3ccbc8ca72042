package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-tracking-backend/internal/middleware"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
)

// respond writes the success envelope. Extra fields are flattened next to
// success and message.
func respond(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation, services.KindUnknownAction:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict, services.KindEmailTaken, services.KindPhoneTaken,
		services.KindLicenseTaken, services.KindInvalidTransition:
		return http.StatusConflict
	case services.KindInvalidCredentials, services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindInactiveAccount, services.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope. Internal causes are logged and
// never sent to the client.
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status := statusFor(kind)

	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"path":       c.Request.URL.Path,
			"action":     c.Query("action"),
		}).WithError(err).Error("Request failed")
	}

	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"message":    services.PublicMessage(err),
		"error_code": string(kind),
	})
}

// bindJSON decodes the body and reports a validation error on failure
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, services.Validation("Invalid request body: %s", err.Error()))
		return false
	}
	return true
}

// requiredID reads a positive integer query parameter
func requiredID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, services.Validation("%s is required", name))
		return 0, false
	}
	return id, true
}

// queryLimit reads ?limit=. Missing or non-numeric values read as 0 so the
// service applies its default.
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}

// actorID is the authenticated caller, if any
func actorID(c *gin.Context) *int64 {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		return nil
	}
	id := userCtx.UserID
	return &id
}

// caller is the authenticated user as the services see it
func caller(c *gin.Context) services.Caller {
	userCtx, _ := middleware.GetUserContext(c)
	return services.Caller{UserID: userCtx.UserID, UserType: userCtx.UserType}
}

// Action is one ?action= handler with the roles allowed to call it.
// No roles means any authenticated user, or anyone on public resources.
type Action struct {
	Roles   []models.UserType
	Handler gin.HandlerFunc
}

func allow(handler gin.HandlerFunc, roles ...models.UserType) Action {
	return Action{Roles: roles, Handler: handler}
}

// Dispatch routes a request to the handler named by ?action=
func Dispatch(actions map[string]Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("action")
		action, ok := actions[name]
		if !ok {
			if name == "" {
				respondError(c, services.NewError(services.KindUnknownAction, "action parameter is required"))
				return
			}
			respondError(c, services.NewError(services.KindUnknownAction, "Invalid action: "+name))
			return
		}

		if len(action.Roles) > 0 {
			userCtx, ok := middleware.GetUserContext(c)
			if !ok {
				respondError(c, services.NewError(services.KindUnauthorized, "Authentication required"))
				return
			}
			if !userCtx.HasRole(action.Roles...) {
				respondError(c, services.NewError(services.KindForbidden, "You don't have permission to perform this action"))
				return
			}
		}

		action.Handler(c)
	}
}

func countsBody(counts *models.EntityCounts) gin.H {
	return gin.H{
		"total":    counts.Total,
		"active":   counts.Active,
		"inactive": counts.Inactive,
	}
}
