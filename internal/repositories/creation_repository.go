package repositories

import (
	"fmt"

	"github.com/arifworks/creatix/backend/internal/models"
	"gorm.io/gorm"
)

// CreationRepository defines the interface for creation data operations
type CreationRepository interface {
	CreateCreation(creation *models.Creation) error
	GetCreationByID(id uint) (*models.Creation, error)
	GetCreationsByUserID(userID string) ([]models.Creation, error)
	GetPublishedCreations() ([]models.Creation, error)
	AddLike(creationID uint, userID string) error
	RemoveLike(creationID uint, userID string) error
}

// PostgresCreationRepository implements CreationRepository for PostgreSQL
type PostgresCreationRepository struct {
	db *gorm.DB
}

// NewPostgresCreationRepository creates a new PostgresCreationRepository
func NewPostgresCreationRepository(db *gorm.DB) *PostgresCreationRepository {
	return &PostgresCreationRepository{db: db}
}

// CreateCreation inserts a new creation row in PostgreSQL
func (r *PostgresCreationRepository) CreateCreation(creation *models.Creation) error {
	return r.db.Create(creation).Error
}

// GetCreationByID retrieves a specific creation by its ID
func (r *PostgresCreationRepository) GetCreationByID(id uint) (*models.Creation, error) {
	var creation models.Creation
	if err := r.db.First(&creation, id).Error; err != nil {
		return nil, err
	}
	return &creation, nil
}

// GetCreationsByUserID retrieves all creations owned by a user, newest first
func (r *PostgresCreationRepository) GetCreationsByUserID(userID string) ([]models.Creation, error) {
	var creations []models.Creation
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&creations).Error; err != nil {
		return nil, err
	}
	return creations, nil
}

// GetPublishedCreations retrieves all published creations, newest first
func (r *PostgresCreationRepository) GetPublishedCreations() ([]models.Creation, error) {
	var creations []models.Creation
	if err := r.db.Where("publish = ?", true).Order("created_at DESC").Find(&creations).Error; err != nil {
		return nil, err
	}
	return creations, nil
}

// AddLike appends the user to the creation's likes using an atomic array
// update so concurrent toggles by different users cannot clobber each other.
// The membership guard keeps the set free of duplicates.
func (r *PostgresCreationRepository) AddLike(creationID uint, userID string) error {
	res := r.db.Exec(
		`UPDATE creations
		 SET likes = array_append(COALESCE(likes, '{}'), ?)
		 WHERE id = ? AND NOT (? = ANY(COALESCE(likes, '{}')))`,
		userID, creationID, userID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("like already present or creation not found")
	}
	return nil
}

// RemoveLike removes the user from the creation's likes atomically
func (r *PostgresCreationRepository) RemoveLike(creationID uint, userID string) error {
	res := r.db.Exec(
		`UPDATE creations SET likes = array_remove(likes, ?) WHERE id = ?`,
		userID, creationID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("creation not found")
	}
	return nil
}
