package ai

import "context"

// TextGenerator generates text from a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts TextOptions) (string, error)
}

// ImageGenerator generates an image from a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error)
}

// GeminiTextGenerator wraps GeminiClient with a fixed model for text generation.
type GeminiTextGenerator struct {
	client *GeminiClient
	model  string
}

// NewGeminiTextGenerator builds a Gemini-based TextGenerator.
func NewGeminiTextGenerator(client *GeminiClient, model string) *GeminiTextGenerator {
	return &GeminiTextGenerator{client: client, model: model}
}

// GenerateText implements TextGenerator using Gemini.
func (g *GeminiTextGenerator) GenerateText(ctx context.Context, prompt string, opts TextOptions) (string, error) {
	return g.client.GenerateText(ctx, g.model, prompt, opts)
}

// GeminiImageGenerator wraps GeminiClient with a fixed image-capable model.
type GeminiImageGenerator struct {
	client *GeminiClient
	model  string
}

// NewGeminiImageGenerator builds a Gemini-based ImageGenerator.
func NewGeminiImageGenerator(client *GeminiClient, model string) *GeminiImageGenerator {
	return &GeminiImageGenerator{client: client, model: model}
}

// GenerateImage implements ImageGenerator using Gemini.
func (g *GeminiImageGenerator) GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error) {
	return g.client.GenerateImage(ctx, g.model, prompt)
}
