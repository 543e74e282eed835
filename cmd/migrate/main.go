package main

import (
	"context"
	"log"

	"rag-chatbot-be/internal/config"
	"rag-chatbot-be/internal/model"
	"rag-chatbot-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database.Connection, database.DefaultOptions())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Printf("Running AutoMigrate for %d tables...", len(model.All()))
	if err := database.Migrate(ctx, db, model.All()...); err != nil {
		log.Fatalf("Error: migration failed: %v", err)
	}

	log.Println("Migration completed successfully.")
}
