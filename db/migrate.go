package db

import (
	"log"
)

// createTables creates the required tables if they are missing.
func createTables() {
	createDecisionsTableSQL := `
	CREATE TABLE IF NOT EXISTS schedule_decisions (
		id TEXT PRIMARY KEY,
		review_message_id TEXT,
		submitter_id TEXT NOT NULL,
		reviewer_id TEXT,
		status TEXT NOT NULL,
		event_count INTEGER NOT NULL DEFAULT 0,
		decided_at INTEGER NOT NULL
	);`

	_, err := DB.Exec(createDecisionsTableSQL)
	if err != nil {
		log.Fatalf("Failed to create schedule_decisions table: %v", err)
	}

	log.Println("Database tables initialized successfully.")
}
