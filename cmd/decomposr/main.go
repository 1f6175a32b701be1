package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/prakritea/decomposr/internal/auth"
	"github.com/prakritea/decomposr/internal/handlers"
	"github.com/prakritea/decomposr/internal/notify"
	"github.com/prakritea/decomposr/internal/planner"
	"github.com/prakritea/decomposr/internal/router"
	"github.com/prakritea/decomposr/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := store.Open(dsn)

	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	model := os.Getenv("LLM_MODEL")

	if model == "" {
		model = "gpt-4o-mini"
	}

	llm, err := planner.NewOpenAIGenerator(model)

	if err != nil {
		log.Fatalf("Failed to initialize AI client: %v", err)
	}

	hub := handlers.NewHub()
	dispatcher := notify.New(db, hub)
	plannerSvc := planner.NewService(db, llm, dispatcher)

	r := router.NewRouter(db, plannerSvc, hub, dispatcher)

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
