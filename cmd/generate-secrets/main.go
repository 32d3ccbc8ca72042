package main

import (
	"fmt"
	"log"

	"github.com/smarttransit/bus-tracking-backend/internal/utils"
)

func main() {
	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("# Add these to your .env file. Never commit them.")
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)
}
