package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/arifworks/creatix/backend/internal/handlers"
	"github.com/arifworks/creatix/backend/internal/middleware"
	"github.com/arifworks/creatix/backend/internal/models"
	"github.com/arifworks/creatix/backend/internal/repositories"
	"github.com/arifworks/creatix/backend/pkg/ai"
	"github.com/arifworks/creatix/backend/pkg/firebase"
	"github.com/arifworks/creatix/backend/pkg/media"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, allowedOrigin string) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins: []string{allowedOrigin},
	}))
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(
	e *echo.Echo,
	pgdb *gorm.DB,
	firebaseAuthClient *auth.Client,
	textGenerator ai.TextGenerator,
	imageGenerator ai.ImageGenerator,
	uploader media.Uploader,
) {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.Creation{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"message": "Server is running"})
	})

	// --- Initialize repositories and identity provider stores ---
	creationRepo := repositories.NewPostgresCreationRepository(pgdb)
	claimsStore := firebase.NewClaimsStore(firebaseAuthClient)

	// --- Protected routes (require a Firebase ID token + identity gate) ---
	api := e.Group("/api")
	api.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient))
	api.Use(middleware.IdentityGate(claimsStore, claimsStore))
	log.Println("Authentication middleware applied to /api group.")

	// Generation routes
	aiHandler := handlers.NewAIHandler(creationRepo, textGenerator, imageGenerator, uploader, claimsStore)
	aiHandler.RegisterAIRoutes(api.Group("/ai"))
	log.Println("AI routes configured.")

	// Creation listing and like routes
	creationHandler := handlers.NewCreationHandler(creationRepo)
	creationHandler.RegisterCreationRoutes(api.Group("/user"))
	log.Println("User creation routes configured.")

	log.Println("All routes configured.")
}
