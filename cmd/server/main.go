package main

import (
	"context"
	"log"

	"github.com/arifworks/creatix/backend/internal/router"
	"github.com/arifworks/creatix/backend/pkg/ai"
	"github.com/arifworks/creatix/backend/pkg/config"
	"github.com/arifworks/creatix/backend/pkg/firebase"
	"github.com/arifworks/creatix/backend/pkg/media"
	"github.com/arifworks/creatix/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB() // Ensure the database connection is closed when main exits

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Initialize the Gemini client and per-model generators
	geminiClient, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	textGenerator := ai.NewGeminiTextGenerator(geminiClient, cfg.GeminiTextModel)
	imageGenerator := ai.NewGeminiImageGenerator(geminiClient, cfg.GeminiImageModel)

	// Initialize the media uploader
	uploader, err := media.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Fatalf("Failed to initialize Cloudinary: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e, cfg.AllowedOrigin)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, firebaseApp.AuthClient, textGenerator, imageGenerator, uploader)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
