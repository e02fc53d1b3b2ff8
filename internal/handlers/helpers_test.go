package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/arifworks/creatix/backend/internal/middleware"
	"github.com/arifworks/creatix/backend/internal/models"
	"github.com/arifworks/creatix/backend/internal/usage"
	"github.com/arifworks/creatix/backend/pkg/ai"
	"github.com/arifworks/creatix/backend/validators"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// fakeCreationRepo is an in-memory CreationRepository
type fakeCreationRepo struct {
	creations []models.Creation
	nextID    uint
	createErr error
}

func (r *fakeCreationRepo) CreateCreation(creation *models.Creation) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	creation.ID = r.nextID
	creation.CreatedAt = time.Unix(int64(r.nextID), 0)
	r.creations = append(r.creations, *creation)
	return nil
}

func (r *fakeCreationRepo) GetCreationByID(id uint) (*models.Creation, error) {
	for i := range r.creations {
		if r.creations[i].ID == id {
			c := r.creations[i]
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCreationRepo) GetCreationsByUserID(userID string) ([]models.Creation, error) {
	var out []models.Creation
	for i := len(r.creations) - 1; i >= 0; i-- {
		if r.creations[i].UserID == userID {
			out = append(out, r.creations[i])
		}
	}
	return out, nil
}

func (r *fakeCreationRepo) GetPublishedCreations() ([]models.Creation, error) {
	var out []models.Creation
	for i := len(r.creations) - 1; i >= 0; i-- {
		if r.creations[i].Publish {
			out = append(out, r.creations[i])
		}
	}
	return out, nil
}

func (r *fakeCreationRepo) AddLike(creationID uint, userID string) error {
	for i := range r.creations {
		if r.creations[i].ID != creationID {
			continue
		}
		for _, id := range r.creations[i].Likes {
			if id == userID {
				return gorm.ErrDuplicatedKey
			}
		}
		r.creations[i].Likes = append(r.creations[i].Likes, userID)
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeCreationRepo) RemoveLike(creationID uint, userID string) error {
	for i := range r.creations {
		if r.creations[i].ID != creationID {
			continue
		}
		kept := r.creations[i].Likes[:0]
		for _, id := range r.creations[i].Likes {
			if id != userID {
				kept = append(kept, id)
			}
		}
		r.creations[i].Likes = kept
		return nil
	}
	return gorm.ErrRecordNotFound
}

// fakeTextGenerator records the last request and returns a canned response
type fakeTextGenerator struct {
	text       string
	err        error
	calls      int
	lastPrompt string
	lastOpts   ai.TextOptions
}

func (g *fakeTextGenerator) GenerateText(_ context.Context, prompt string, opts ai.TextOptions) (string, error) {
	g.calls++
	g.lastPrompt = prompt
	g.lastOpts = opts
	return g.text, g.err
}

// fakeImageGenerator returns a canned inline image
type fakeImageGenerator struct {
	img *ai.GeneratedImage
	err error
}

func (g *fakeImageGenerator) GenerateImage(_ context.Context, _ string) (*ai.GeneratedImage, error) {
	return g.img, g.err
}

// fakeUploader returns canned hosting URLs
type fakeUploader struct {
	secureURL  string
	publicID   string
	lastEffect string
}

func (u *fakeUploader) Upload(_ context.Context, _ interface{}) (string, string, error) {
	return u.secureURL, u.publicID, nil
}

func (u *fakeUploader) UploadWithBackgroundRemoval(_ context.Context, _ interface{}) (string, error) {
	return u.secureURL, nil
}

func (u *fakeUploader) TransformedURL(publicID, effect string) (string, error) {
	u.lastEffect = effect
	return "https://res.example.com/" + publicID + "/" + effect, nil
}

// fakeUsageStore is an in-memory counter store
type fakeUsageStore struct {
	counts map[string]int
}

func newFakeUsageStore() *fakeUsageStore {
	return &fakeUsageStore{counts: map[string]int{}}
}

func (s *fakeUsageStore) FreeUsage(_ context.Context, userID string) (int, bool, error) {
	count, ok := s.counts[userID]
	return count, ok, nil
}

func (s *fakeUsageStore) SetFreeUsage(_ context.Context, userID string, count int) error {
	s.counts[userID] = count
	return nil
}

// newTestContext builds an Echo context pre-populated like the auth
// middleware chain would leave it.
func newTestContext(req *http.Request, userID string, plan usage.Plan, freeUsage int) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validators.NewValidator()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextUserID, userID)
	c.Set(middleware.ContextPlan, plan)
	c.Set(middleware.ContextFreeUsage, freeUsage)
	return c, rec
}
