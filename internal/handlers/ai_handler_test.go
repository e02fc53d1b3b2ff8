package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arifworks/creatix/backend/internal/models"
	"github.com/arifworks/creatix/backend/internal/usage"
	"github.com/arifworks/creatix/backend/pkg/ai"
	"github.com/labstack/echo/v4"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

func multipartRequest(t *testing.T, target, fileField, filename string, fileContent []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(fileField, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(fileContent); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write form field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestWriteArticleFreeUserUnderLimit(t *testing.T) {
	repo := &fakeCreationRepo{}
	textGen := &fakeTextGenerator{text: "the generated article"}
	store := newFakeUsageStore()
	store.counts["u1"] = 9
	h := NewAIHandler(repo, textGen, &fakeImageGenerator{}, &fakeUploader{}, store)

	req := jsonRequest(http.MethodPost, "/api/ai/write-article", `{"prompt":"go generics","length":800}`)
	c, rec := newTestContext(req, "u1", usage.PlanFree, 9)

	if err := h.WriteArticle(c); err != nil {
		t.Fatalf("WriteArticle returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("success = %v, want true", body["success"])
	}
	if body["content"] != "the generated article" {
		t.Fatalf("content = %v", body["content"])
	}
	if store.counts["u1"] != 10 {
		t.Fatalf("free usage = %d, want 10", store.counts["u1"])
	}
	if len(repo.creations) != 1 {
		t.Fatalf("creations = %d, want 1", len(repo.creations))
	}
	row := repo.creations[0]
	if row.Type != models.CreationTypeArticle || row.UserID != "u1" {
		t.Fatalf("unexpected row: %+v", row)
	}
	wantPrompt := "generate an detailed article based on this: go generics"
	if row.Prompt != wantPrompt {
		t.Fatalf("prompt = %q, want %q", row.Prompt, wantPrompt)
	}
	if textGen.lastOpts.MaxOutputTokens != 800 {
		t.Fatalf("max output tokens = %d, want 800", textGen.lastOpts.MaxOutputTokens)
	}
}

func TestWriteArticleFreeUserAtLimit(t *testing.T) {
	repo := &fakeCreationRepo{}
	textGen := &fakeTextGenerator{text: "should not be called"}
	store := newFakeUsageStore()
	store.counts["u1"] = 10
	h := NewAIHandler(repo, textGen, &fakeImageGenerator{}, &fakeUploader{}, store)

	req := jsonRequest(http.MethodPost, "/api/ai/write-article", `{"prompt":"go generics","length":800}`)
	c, rec := newTestContext(req, "u1", usage.PlanFree, 10)

	if err := h.WriteArticle(c); err != nil {
		t.Fatalf("WriteArticle returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != usage.MsgFreeLimitReached {
		t.Fatalf("message = %v, want %q", body["message"], usage.MsgFreeLimitReached)
	}
	if textGen.calls != 0 {
		t.Fatal("generator must not be called when the gate rejects")
	}
	if len(repo.creations) != 0 {
		t.Fatal("no creation row may be written on rejection")
	}
	if store.counts["u1"] != 10 {
		t.Fatalf("free usage = %d, want unchanged 10", store.counts["u1"])
	}
}

func TestWriteArticlePremiumSkipsCounter(t *testing.T) {
	repo := &fakeCreationRepo{}
	store := newFakeUsageStore()
	h := NewAIHandler(repo, &fakeTextGenerator{text: "ok"}, &fakeImageGenerator{}, &fakeUploader{}, store)

	req := jsonRequest(http.MethodPost, "/api/ai/write-article", `{"prompt":"p","length":100}`)
	c, rec := newTestContext(req, "u1", usage.PlanPremium, 0)

	if err := h.WriteArticle(c); err != nil {
		t.Fatalf("WriteArticle returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, ok := store.counts["u1"]; ok {
		t.Fatal("premium generation must not touch the usage counter")
	}
}

func TestGenerateBlogTitlesUsesFixedBudget(t *testing.T) {
	repo := &fakeCreationRepo{}
	textGen := &fakeTextGenerator{text: "1. Title"}
	store := newFakeUsageStore()
	h := NewAIHandler(repo, textGen, &fakeImageGenerator{}, &fakeUploader{}, store)

	req := jsonRequest(http.MethodPost, "/api/ai/generate-blog-titles", `{"prompt":"titles about tea"}`)
	c, rec := newTestContext(req, "u1", usage.PlanFree, 0)

	if err := h.GenerateBlogTitles(c); err != nil {
		t.Fatalf("GenerateBlogTitles returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if textGen.lastOpts.MaxOutputTokens != 100 {
		t.Fatalf("max output tokens = %d, want 100", textGen.lastOpts.MaxOutputTokens)
	}
	if textGen.lastPrompt != "titles about tea" {
		t.Fatalf("prompt = %q", textGen.lastPrompt)
	}
	if repo.creations[0].Type != models.CreationTypeBlogTitle {
		t.Fatalf("type = %q", repo.creations[0].Type)
	}
	if store.counts["u1"] != 1 {
		t.Fatalf("free usage = %d, want 1", store.counts["u1"])
	}
}

func TestGenerateImageNonPremiumRejected(t *testing.T) {
	repo := &fakeCreationRepo{}
	store := newFakeUsageStore()
	h := NewAIHandler(repo, &fakeTextGenerator{}, &fakeImageGenerator{}, &fakeUploader{}, store)

	req := jsonRequest(http.MethodPost, "/api/ai/generate-image", `{"prompt":"a red fox"}`)
	c, rec := newTestContext(req, "u1", usage.PlanFree, 0)

	if err := h.GenerateImage(c); err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != usage.MsgPremiumRequired {
		t.Fatalf("message = %v, want %q", body["message"], usage.MsgPremiumRequired)
	}
	if len(repo.creations) != 0 {
		t.Fatal("no creation row may be written on rejection")
	}
	if store.counts["u1"] != 0 {
		t.Fatalf("free usage = %d, want unchanged", store.counts["u1"])
	}
}

func TestGenerateImagePremium(t *testing.T) {
	repo := &fakeCreationRepo{}
	imageGen := &fakeImageGenerator{img: &ai.GeneratedImage{MIMEType: "image/png", Data: []byte{1, 2, 3}}}
	uploader := &fakeUploader{secureURL: "https://res.example.com/abc.png", publicID: "abc"}
	store := newFakeUsageStore()
	h := NewAIHandler(repo, &fakeTextGenerator{}, imageGen, uploader, store)

	req := jsonRequest(http.MethodPost, "/api/ai/generate-image", `{"prompt":"a red fox","publish":true}`)
	c, rec := newTestContext(req, "u1", usage.PlanPremium, 0)

	if err := h.GenerateImage(c); err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["content"] != "https://res.example.com/abc.png" {
		t.Fatalf("content = %v", body["content"])
	}
	row := repo.creations[0]
	if row.Type != models.CreationTypeImage || !row.Publish {
		t.Fatalf("unexpected row: %+v", row)
	}
	if _, ok := store.counts["u1"]; ok {
		t.Fatal("image generation must not touch the usage counter")
	}
}

func TestRemoveObjectFromImage(t *testing.T) {
	repo := &fakeCreationRepo{}
	uploader := &fakeUploader{secureURL: "https://res.example.com/raw.png", publicID: "raw"}
	store := newFakeUsageStore()
	h := NewAIHandler(repo, &fakeTextGenerator{}, &fakeImageGenerator{}, uploader, store)

	req := multipartRequest(t, "/api/ai/remove-object-from-image", "image", "photo.png", []byte("png-bytes"), map[string]string{"prompt": "lamp"})
	c, rec := newTestContext(req, "u1", usage.PlanPremium, 0)

	if err := h.RemoveObjectFromImage(c); err != nil {
		t.Fatalf("RemoveObjectFromImage returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if uploader.lastEffect != "e_gen_remove:prompt_lamp" {
		t.Fatalf("effect = %q", uploader.lastEffect)
	}
	row := repo.creations[0]
	if row.Prompt != "Remove the lamp from image" {
		t.Fatalf("prompt = %q", row.Prompt)
	}
	if row.Type != models.CreationTypeImage {
		t.Fatalf("type = %q", row.Type)
	}
}

func TestRemoveImageBackgroundNonPremiumRejected(t *testing.T) {
	repo := &fakeCreationRepo{}
	store := newFakeUsageStore()
	h := NewAIHandler(repo, &fakeTextGenerator{}, &fakeImageGenerator{}, &fakeUploader{}, store)

	req := multipartRequest(t, "/api/ai/remove-image-background", "image", "photo.png", []byte("png-bytes"), nil)
	c, rec := newTestContext(req, "u1", usage.PlanFree, 0)

	if err := h.RemoveImageBackground(c); err != nil {
		t.Fatalf("RemoveImageBackground returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(repo.creations) != 0 {
		t.Fatal("no creation row may be written on rejection")
	}
}

func TestReviewResumeOversizedFileRejected(t *testing.T) {
	repo := &fakeCreationRepo{}
	textGen := &fakeTextGenerator{text: "review"}
	store := newFakeUsageStore()
	h := NewAIHandler(repo, textGen, &fakeImageGenerator{}, &fakeUploader{}, store)

	oversized := bytes.Repeat([]byte("a"), maxResumeSize+1)
	req := multipartRequest(t, "/api/ai/review-resume", "resume", "resume.pdf", oversized, nil)
	c, rec := newTestContext(req, "u1", usage.PlanPremium, 0)

	if err := h.ReviewResume(c); err != nil {
		t.Fatalf("ReviewResume returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Resume file size exceeds allowed size 5MB" {
		t.Fatalf("message = %v", body["message"])
	}
	if textGen.calls != 0 {
		t.Fatal("oversized upload must stop before the provider call")
	}
	if len(repo.creations) != 0 {
		t.Fatal("no creation row may be written for an oversized upload")
	}
}

func TestProviderFailureReturnsServerError(t *testing.T) {
	repo := &fakeCreationRepo{}
	textGen := &fakeTextGenerator{err: fmt.Errorf("gemini api error: quota exceeded")}
	store := newFakeUsageStore()
	h := NewAIHandler(repo, textGen, &fakeImageGenerator{}, &fakeUploader{}, store)

	req := jsonRequest(http.MethodPost, "/api/ai/write-article", `{"prompt":"p","length":100}`)
	c, rec := newTestContext(req, "u1", usage.PlanFree, 0)

	if err := h.WriteArticle(c); err != nil {
		t.Fatalf("WriteArticle returned error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Fatalf("success = %v, want false", body["success"])
	}
	if body["message"] != "gemini api error: quota exceeded" {
		t.Fatalf("message = %v", body["message"])
	}
	if store.counts["u1"] != 0 {
		t.Fatal("failed generation must not increment the counter")
	}
}
