package models

import (
	"time"

	"github.com/lib/pq"
)

// Creation types persisted in the type column
const (
	CreationTypeArticle      = "article"
	CreationTypeBlogTitle    = "blog-title"
	CreationTypeImage        = "image"
	CreationTypeResumeReview = "resume-review"
)

// Creation is one persisted generation event. Rows are immutable after
// insertion except for the likes column.
type Creation struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    string         `json:"user_id" gorm:"index"` // Firebase UID of the owner
	Prompt    string         `json:"prompt" gorm:"type:text"`
	Content   string         `json:"content" gorm:"type:text"` // generated text or hosted image URL
	Type      string         `json:"type" gorm:"index"`
	Publish   bool           `json:"publish" gorm:"default:false"`
	Likes     pq.StringArray `json:"likes" gorm:"type:text[]"` // user IDs, set semantics
	CreatedAt time.Time      `json:"created_at"`
}

// GenerateArticleRequest defines the request body for article generation
type GenerateArticleRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	Length int    `json:"length" validate:"required,min=1"`
}

// GenerateBlogTitlesRequest defines the request body for blog title generation
type GenerateBlogTitlesRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// GenerateImageRequest defines the request body for image generation
type GenerateImageRequest struct {
	Prompt  string `json:"prompt" validate:"required"`
	Publish bool   `json:"publish"`
}

// ToggleLikeRequest defines the request body for toggling a like on a creation
type ToggleLikeRequest struct {
	ID uint `json:"id" validate:"required"`
}
