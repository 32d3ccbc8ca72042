package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/smarttransit/bus-tracking-backend/pkg/jwt"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// UserContext represents the authenticated user's information
type UserContext struct {
	UserID   int64           `json:"user_id"`
	Email    string          `json:"email"`
	UserType models.UserType `json:"user_type"`
}

// HasRole reports whether the user is one of roles
func (u UserContext) HasRole(roles ...models.UserType) bool {
	for _, role := range roles {
		if u.UserType == role {
			return true
		}
	}
	return false
}

// abort writes the failure envelope. errorCode is the machine-readable kind,
// code the finer-grained reason.
func abort(c *gin.Context, status int, errorCode, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"message":    message,
		"error_code": errorCode,
		"code":       code,
	})
}

func authFailed(c *gin.Context, reason string, err error) {
	entry := logrus.WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"ip":     c.ClientIP(),
		"reason": reason,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("Authentication failed")
}

// AuthMiddleware creates a middleware that validates JWT access tokens
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authFailed(c, "missing header", nil)
			abort(c, http.StatusUnauthorized, "unauthorized", "MISSING_AUTH_HEADER", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			authFailed(c, "invalid format", nil)
			abort(c, http.StatusUnauthorized, "unauthorized", "INVALID_AUTH_FORMAT",
				"Invalid authorization header format. Expected: Bearer <token>")
			return
		}

		tokenString := strings.TrimSpace(parts[1])

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if jwtService.IsTokenExpired(tokenString) {
				authFailed(c, "expired", err)
				abort(c, http.StatusUnauthorized, "unauthorized", "TOKEN_EXPIRED",
					"Access token has expired. Please refresh your token.")
				return
			}
			authFailed(c, "invalid token", err)
			abort(c, http.StatusUnauthorized, "unauthorized", "INVALID_TOKEN", "Invalid access token")
			return
		}

		userType, err := models.ParseUserType(claims.UserType)
		if err != nil {
			authFailed(c, "unknown user type", err)
			abort(c, http.StatusUnauthorized, "unauthorized", "INVALID_TOKEN", "Invalid access token")
			return
		}

		c.Set(UserContextKey, UserContext{
			UserID:   claims.UserID,
			Email:    claims.Email,
			UserType: userType,
		})
		// read by the request logger
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}

// RequireRole creates a middleware that checks if user has one of roles
func RequireRole(roles ...models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			abort(c, http.StatusUnauthorized, "unauthorized", "MISSING_USER_CONTEXT",
				"User context not found. Auth middleware may not be applied.")
			return
		}

		if !userCtx.HasRole(roles...) {
			abort(c, http.StatusForbidden, "forbidden", "INSUFFICIENT_PERMISSIONS",
				"You don't have permission to access this resource")
			return
		}

		c.Next()
	}
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	if !ok {
		return UserContext{}, false
	}

	return userCtx, true
}
