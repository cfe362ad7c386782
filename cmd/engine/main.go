package main

import (
	"log"
	"os"

	"github.com/rawblock/forensics-engine/internal/api"
	"github.com/rawblock/forensics-engine/internal/db"
)

func main() {
	log.Println("Starting Forensics Engine (AML batch analysis service)...")

	// ─── Environment Variables ───────────────────────────────────────────
	// Credentials and endpoints come from the environment. DATABASE_URL is
	// optional: the service runs in DB-less mode (no audit history) if
	// absent.
	// ──────────────────────────────────────────────────────────────────────

	var dbConn *db.PostgresStore
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		conn, err := db.Connect(dbURL)
		if err != nil {
			log.Printf("Warning: Failed to connect to PostgreSQL, continuing without persisting batch history. Error: %v", err)
		} else {
			dbConn = conn
			defer dbConn.Close()
			if err := dbConn.InitSchema(); err != nil {
				log.Printf("Warning: DB schema init failed: %v", err)
			}
		}
	} else {
		log.Println("DATABASE_URL not set — running without batch audit history")
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	r := api.SetupRouter(dbConn, wsHub)

	port := getEnvOrDefault("PORT", "5339")

	log.Printf("Forensics engine running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnvOrDefault returns the env var value or a safe default for
// non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
