package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/arifworks/creatix/backend/internal/middleware"
	"github.com/arifworks/creatix/backend/internal/models"
	"github.com/arifworks/creatix/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CreationHandler handles listing and like toggling for persisted creations
type CreationHandler struct {
	creationRepository repositories.CreationRepository
}

// NewCreationHandler creates a new CreationHandler
func NewCreationHandler(creationRepo repositories.CreationRepository) *CreationHandler {
	return &CreationHandler{creationRepository: creationRepo}
}

// RegisterCreationRoutes registers creation-related routes
func (h *CreationHandler) RegisterCreationRoutes(g *echo.Group) {
	g.GET("/get-user-creations", h.GetUserCreations)
	g.GET("/get-published-creations", h.GetPublishedCreations)
	g.PUT("/toggle-liked-creations", h.ToggleLikedCreations)
}

// GetUserCreations returns the caller's creations, newest first
func (h *CreationHandler) GetUserCreations(c echo.Context) error {
	userID := middleware.UserID(c)

	creations, err := h.creationRepository.GetCreationsByUserID(userID)
	if err != nil {
		log.Printf("listing creations for %s failed: %v", userID, err)
		return respondError(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "content": creations})
}

// GetPublishedCreations returns all published creations, newest first
func (h *CreationHandler) GetPublishedCreations(c echo.Context) error {
	creations, err := h.creationRepository.GetPublishedCreations()
	if err != nil {
		log.Printf("listing published creations failed: %v", err)
		return respondError(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "content": creations})
}

// ToggleLikedCreations adds the caller to the creation's likes, or removes
// them when already present.
func (h *CreationHandler) ToggleLikedCreations(c echo.Context) error {
	var req models.ToggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID := middleware.UserID(c)

	creation, err := h.creationRepository.GetCreationByID(req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, http.StatusNotFound, "Creation not found")
		}
		return respondError(c, http.StatusInternalServerError, err.Error())
	}

	liked := false
	for _, id := range creation.Likes {
		if id == userID {
			liked = true
			break
		}
	}

	message := "You have liked this creation"
	if liked {
		message = "You have disliked this creation"
		err = h.creationRepository.RemoveLike(creation.ID, userID)
	} else {
		err = h.creationRepository.AddLike(creation.ID, userID)
	}
	if err != nil {
		log.Printf("toggling like on creation %d failed: %v", creation.ID, err)
		return respondError(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": message})
}
