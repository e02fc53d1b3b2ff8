package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/arifworks/creatix/backend/internal/docparse"
	"github.com/arifworks/creatix/backend/internal/middleware"
	"github.com/arifworks/creatix/backend/internal/models"
	"github.com/arifworks/creatix/backend/internal/repositories"
	"github.com/arifworks/creatix/backend/internal/usage"
	"github.com/arifworks/creatix/backend/pkg/ai"
	"github.com/arifworks/creatix/backend/pkg/firebase"
	"github.com/arifworks/creatix/backend/pkg/media"
	"github.com/labstack/echo/v4"
)

const maxResumeSize = 5 * 1024 * 1024

// AIHandler handles the generation endpoints
type AIHandler struct {
	creationRepository repositories.CreationRepository
	textGenerator      ai.TextGenerator
	imageGenerator     ai.ImageGenerator
	uploader           media.Uploader
	usageStore         firebase.UsageStore
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(
	creationRepo repositories.CreationRepository,
	textGen ai.TextGenerator,
	imageGen ai.ImageGenerator,
	uploader media.Uploader,
	usageStore firebase.UsageStore,
) *AIHandler {
	return &AIHandler{
		creationRepository: creationRepo,
		textGenerator:      textGen,
		imageGenerator:     imageGen,
		uploader:           uploader,
		usageStore:         usageStore,
	}
}

// RegisterAIRoutes registers the generation routes
func (h *AIHandler) RegisterAIRoutes(g *echo.Group) {
	g.POST("/write-article", h.WriteArticle)
	g.POST("/generate-blog-titles", h.GenerateBlogTitles)
	g.POST("/generate-image", h.GenerateImage)
	g.POST("/remove-image-background", h.RemoveImageBackground)
	g.POST("/remove-object-from-image", h.RemoveObjectFromImage)
	g.POST("/review-resume", h.ReviewResume)
}

// generationResult is what one provider call produced, ready to persist
type generationResult struct {
	Prompt  string
	Content string
	Type    string
	Publish bool
}

// runGeneration is the shared pipeline behind every generation endpoint:
// policy gate, provider call, creation row insert, conditional usage
// increment, response envelope. Handlers supply only request parsing and the
// provider call.
func (h *AIHandler) runGeneration(c echo.Context, op usage.Operation, generate func(ctx context.Context) (*generationResult, error)) error {
	plan := middleware.PlanFromContext(c)
	freeUsage := middleware.FreeUsageFromContext(c)

	if ok, msg := usage.Allow(plan, freeUsage, op); !ok {
		return respondError(c, http.StatusForbidden, msg)
	}

	ctx := c.Request().Context()
	result, err := generate(ctx)
	if err != nil {
		log.Printf("generation %s failed: %v", op, err)
		return respondError(c, http.StatusInternalServerError, err.Error())
	}

	creation := &models.Creation{
		UserID:  middleware.UserID(c),
		Prompt:  result.Prompt,
		Content: result.Content,
		Type:    result.Type,
		Publish: result.Publish,
	}
	if err := h.creationRepository.CreateCreation(creation); err != nil {
		log.Printf("persisting %s creation failed: %v", op, err)
		return respondError(c, http.StatusInternalServerError, err.Error())
	}

	if usage.ShouldIncrement(plan, op) {
		if err := h.usageStore.SetFreeUsage(ctx, creation.UserID, freeUsage+1); err != nil {
			log.Printf("usage increment failed for %s: %v", creation.UserID, err)
			return respondError(c, http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "content": result.Content})
}

// WriteArticle generates an article from a prompt and a target length
func (h *AIHandler) WriteArticle(c echo.Context) error {
	var req models.GenerateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	command := fmt.Sprintf("generate an detailed article based on this: %s", req.Prompt)

	return h.runGeneration(c, usage.OpArticle, func(ctx context.Context) (*generationResult, error) {
		text, err := h.textGenerator.GenerateText(ctx, command, ai.TextOptions{
			Temperature:     0.7,
			MaxOutputTokens: req.Length,
		})
		if err != nil {
			return nil, err
		}
		return &generationResult{Prompt: command, Content: text, Type: models.CreationTypeArticle}, nil
	})
}

// GenerateBlogTitles generates blog title suggestions from a prompt
func (h *AIHandler) GenerateBlogTitles(c echo.Context) error {
	var req models.GenerateBlogTitlesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	return h.runGeneration(c, usage.OpBlogTitles, func(ctx context.Context) (*generationResult, error) {
		text, err := h.textGenerator.GenerateText(ctx, req.Prompt, ai.TextOptions{
			Temperature:     0.7,
			MaxOutputTokens: 100,
		})
		if err != nil {
			return nil, err
		}
		return &generationResult{Prompt: req.Prompt, Content: text, Type: models.CreationTypeBlogTitle}, nil
	})
}

// GenerateImage generates an image, hosts it on the media provider and
// optionally publishes it to the community feed.
func (h *AIHandler) GenerateImage(c echo.Context) error {
	var req models.GenerateImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	return h.runGeneration(c, usage.OpImage, func(ctx context.Context) (*generationResult, error) {
		img, err := h.imageGenerator.GenerateImage(ctx, req.Prompt)
		if err != nil {
			return nil, err
		}
		secureURL, _, err := h.uploader.Upload(ctx, img.DataURI())
		if err != nil {
			return nil, err
		}
		return &generationResult{
			Prompt:  req.Prompt,
			Content: secureURL,
			Type:    models.CreationTypeImage,
			Publish: req.Publish,
		}, nil
	})
}

// RemoveImageBackground uploads the posted image with the provider-side
// background removal transformation applied.
func (h *AIHandler) RemoveImageBackground(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}

	return h.runGeneration(c, usage.OpBackgroundRemoval, func(ctx context.Context) (*generationResult, error) {
		src, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("open uploaded image: %w", err)
		}
		defer src.Close()

		secureURL, err := h.uploader.UploadWithBackgroundRemoval(ctx, src)
		if err != nil {
			return nil, err
		}
		return &generationResult{
			Prompt:  "Remove background from image",
			Content: secureURL,
			Type:    models.CreationTypeImage,
		}, nil
	})
}

// RemoveObjectFromImage uploads the posted image and builds a delivery URL
// with the named object generatively erased.
func (h *AIHandler) RemoveObjectFromImage(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	object := c.FormValue("prompt")
	if object == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	return h.runGeneration(c, usage.OpObjectRemoval, func(ctx context.Context) (*generationResult, error) {
		src, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("open uploaded image: %w", err)
		}
		defer src.Close()

		_, publicID, err := h.uploader.Upload(ctx, src)
		if err != nil {
			return nil, err
		}
		secureURL, err := h.uploader.TransformedURL(publicID, media.GenRemoveEffect(object))
		if err != nil {
			return nil, err
		}
		return &generationResult{
			Prompt:  fmt.Sprintf("Remove the %s from image", object),
			Content: secureURL,
			Type:    models.CreationTypeImage,
		}, nil
	})
}

// ReviewResume extracts the text of an uploaded resume and asks the model
// for constructive feedback.
func (h *AIHandler) ReviewResume(c echo.Context) error {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "resume file is required")
	}
	if fileHeader.Size > maxResumeSize {
		return respondError(c, http.StatusBadRequest, "Resume file size exceeds allowed size 5MB")
	}

	return h.runGeneration(c, usage.OpResumeReview, func(ctx context.Context) (*generationResult, error) {
		src, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("open uploaded resume: %w", err)
		}
		defer src.Close()

		resumeText, err := docparse.ExtractPDFText(src, fileHeader.Size)
		if err != nil {
			return nil, err
		}

		directive := fmt.Sprintf("Review the following resume and provide constructive feedback on its strengths , weaknesses and areas for improvement. Resume Content\n\n: %s", resumeText)
		review, err := h.textGenerator.GenerateText(ctx, directive, ai.TextOptions{
			Temperature:     0.7,
			MaxOutputTokens: 2000,
		})
		if err != nil {
			return nil, err
		}
		return &generationResult{
			Prompt:  "review the uploaded resume",
			Content: review,
			Type:    models.CreationTypeResumeReview,
		}, nil
	})
}

// respondError writes the error envelope shared by every endpoint
func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": false, "message": message})
}
