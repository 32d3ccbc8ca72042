package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/smarttransit/bus-tracking-backend/internal/config"
	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/services"
)

// prune runs the retention job once, outside the server's schedule.
func main() {
	var (
		dbURLFlag    string
		locationDays int
		activityDays int
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.IntVar(&locationDays, "location-days", -1, "delete GPS samples older than this many days (overrides LOCATION_RETENTION_DAYS)")
	flag.IntVar(&activityDays, "activity-days", -1, "delete activity logs older than this many days (overrides ACTIVITY_LOG_RETENTION_DAYS)")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	tracking := config.TrackingConfig{
		LocationRetentionDays: envDays("LOCATION_RETENTION_DAYS", locationDays),
		ActivityRetentionDays: envDays("ACTIVITY_LOG_RETENTION_DAYS", activityDays),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db, err := database.NewConnection(ctx, config.DatabaseConfig{
		URL:                dbURL,
		Driver:             "postgres",
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	cronService := services.NewCronService(tracking,
		database.NewLocationRepository(db),
		database.NewActivityLogRepository(db),
		database.NewRefreshTokenRepository(db),
		nil,
	)

	result, err := cronService.RunRetentionNow(ctx)
	if err != nil {
		log.Fatalf("retention failed: %v", err)
	}

	fmt.Printf("driver_locations: %d rows deleted\n", result.Locations)
	fmt.Printf("activity_logs:    %d rows deleted\n", result.ActivityLogs)
	fmt.Printf("refresh_tokens:   %d rows deleted\n", result.RefreshTokens)
}

// envDays prefers the flag, then the environment, then 0 (disabled)
func envDays(key string, flagValue int) int {
	if flagValue >= 0 {
		return flagValue
	}
	var days int
	if _, err := fmt.Sscanf(os.Getenv(key), "%d", &days); err != nil || days < 0 {
		return 0
	}
	return days
}
