package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/bus-tracking-backend/internal/middleware"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
)

// Handlers groups every resource handler served under /api/v1
type Handlers struct {
	Auth      *AuthHandler
	Buses     *BusHandler
	Routes    *RouteHandler
	Users     *UserHandler
	Drivers   *DriverHandler
	Locations *LocationHandler
	Trips     *TripHandler
	Logs      *LogHandler
	Analytics *AnalyticsHandler
}

const (
	admin  = models.UserTypeAdmin
	driver = models.UserTypeDriver
)

// RegisterRoutes mounts the public endpoints, then the authenticated
// resources behind authMiddleware. Each resource dispatches on ?action=.
func (h *Handlers) RegisterRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc, db Pinger, metrics http.Handler) {
	router.GET("/health", Health(db))
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/api/v1")

	v1.POST("/auth", Dispatch(map[string]Action{
		"login":    allow(h.Auth.Login),
		"register": allow(h.Auth.Register),
		"refresh":  allow(h.Auth.Refresh),
		"logout":   allow(h.Auth.Logout),
	}))

	protected := v1.Group("")
	protected.Use(authMiddleware)

	protected.GET("/buses", Dispatch(map[string]Action{
		"list":  allow(h.Buses.List),
		"get":   allow(h.Buses.Get),
		"stats": allow(h.Buses.Stats),
	}))
	protected.POST("/buses", Dispatch(map[string]Action{
		"create":            allow(h.Buses.Create, admin),
		"update_passengers": allow(h.Buses.UpdatePassengers, driver, admin),
	}))
	protected.DELETE("/buses", Dispatch(map[string]Action{
		"delete": allow(h.Buses.Delete, admin),
	}))

	protected.GET("/routes", Dispatch(map[string]Action{
		"list":  allow(h.Routes.List),
		"get":   allow(h.Routes.Get),
		"stats": allow(h.Routes.Stats),
		"stops": allow(h.Routes.Stops),
	}))
	protected.POST("/routes", Dispatch(map[string]Action{
		"create":   allow(h.Routes.Create, admin),
		"add_stop": allow(h.Routes.AddStop, admin),
	}))
	protected.DELETE("/routes", Dispatch(map[string]Action{
		"delete": allow(h.Routes.Delete, admin),
	}))

	users := protected.Group("/users", middleware.RequireRole(admin))
	users.GET("", Dispatch(map[string]Action{
		"list":  allow(h.Users.List),
		"get":   allow(h.Users.Get),
		"stats": allow(h.Users.Stats),
	}))
	users.POST("", Dispatch(map[string]Action{
		"create": allow(h.Users.Create),
	}))
	users.DELETE("", Dispatch(map[string]Action{
		"delete": allow(h.Users.Delete),
	}))

	protected.GET("/drivers", Dispatch(map[string]Action{
		"assigned_bus":   allow(h.Drivers.AssignedBus),
		"route_stops":    allow(h.Drivers.RouteStops),
		"current_status": allow(h.Drivers.CurrentStatus),
	}))
	protected.POST("/drivers", Dispatch(map[string]Action{
		"assign_bus": allow(h.Drivers.AssignBus, admin),
	}))

	protected.GET("/locations", Dispatch(map[string]Action{
		"current": allow(h.Locations.Current),
		"history": allow(h.Locations.History),
	}))
	protected.POST("/locations", Dispatch(map[string]Action{
		"update": allow(h.Locations.Update, driver, admin),
	}))

	protected.POST("/trips", Dispatch(map[string]Action{
		"start":  allow(h.Trips.Transition(models.TripActionStart), driver, admin),
		"end":    allow(h.Trips.Transition(models.TripActionEnd), driver, admin),
		"pause":  allow(h.Trips.Transition(models.TripActionPause), driver, admin),
		"resume": allow(h.Trips.Transition(models.TripActionResume), driver, admin),
	}))

	protected.GET("/logs", middleware.RequireRole(admin), Dispatch(map[string]Action{
		"recent": allow(h.Logs.Recent),
		"user":   allow(h.Logs.ByUser),
		"entity": allow(h.Logs.ByEntity),
	}))

	protected.GET("/analytics", Dispatch(map[string]Action{
		"overview":          allow(h.Analytics.Overview),
		"daily_stats":       allow(h.Analytics.DailyStats),
		"route_performance": allow(h.Analytics.RoutePerformance),
	}))
}
