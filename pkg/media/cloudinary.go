package media

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Uploader hosts images and applies provider-side transformations. Sources
// may be an io.Reader, a local file path or a base64 data URI.
type Uploader interface {
	Upload(ctx context.Context, source interface{}) (secureURL, publicID string, err error)
	UploadWithBackgroundRemoval(ctx context.Context, source interface{}) (secureURL string, err error)
	TransformedURL(publicID, effect string) (string, error)
}

// CloudinaryStore implements Uploader for Cloudinary
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore creates a Cloudinary-backed Uploader
func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not provided")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary client: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Upload stores the source image and returns its hosted URL and public ID
func (s *CloudinaryStore) Upload(ctx context.Context, source interface{}) (string, string, error) {
	resp, err := s.cld.Upload.Upload(ctx, source, uploader.UploadParams{PublicID: uuid.NewString()})
	if err != nil {
		return "", "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, resp.PublicID, nil
}

// UploadWithBackgroundRemoval stores the source image with the background
// removal effect applied on ingestion.
func (s *CloudinaryStore) UploadWithBackgroundRemoval(ctx context.Context, source interface{}) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, source, uploader.UploadParams{
		PublicID:       uuid.NewString(),
		Transformation: "e_background_removal",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// TransformedURL builds a delivery URL for an already uploaded asset with the
// given transformation applied.
func (s *CloudinaryStore) TransformedURL(publicID, effect string) (string, error) {
	img, err := s.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("cloudinary asset %s: %w", publicID, err)
	}
	img.Transformation = effect
	u, err := img.String()
	if err != nil {
		return "", fmt.Errorf("build delivery url for %s: %w", publicID, err)
	}
	return u, nil
}

// GenRemoveEffect builds the generative object removal transformation for the
// named object.
func GenRemoveEffect(object string) string {
	return "e_gen_remove:prompt_" + url.PathEscape(object)
}
