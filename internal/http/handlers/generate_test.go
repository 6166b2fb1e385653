package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"motionpitch/internal/deck"
	"motionpitch/internal/domain"
	"motionpitch/internal/middleware"
	"motionpitch/internal/storage"
)

type fakeGenerator struct {
	got  deck.GenerateInput
	pres *domain.Presentation
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context, in deck.GenerateInput) (*domain.Presentation, error) {
	f.got = in
	return f.pres, f.err
}

func newTestApp(t *testing.T, gen Generator) *App {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), "/static")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return &App{
		Service:    gen,
		Store:      store,
		Logger:     zerolog.New(io.Discard),
		JWTSecret:  "secret",
		GuestLimit: 15,
	}
}

func samplePresentation() *domain.Presentation {
	return &domain.Presentation{
		ID:    "p1",
		Title: "Deck",
		Slides: []domain.SlideResult{
			{Title: "A", Content: "a", MediaURL: "/static/veo_1.mp4", MediaType: domain.MediaTypeVideo},
			{Title: "B", Content: "b", MediaURL: "/static/img_2.png", MediaType: domain.MediaTypeImage},
		},
		HasVideo:  true,
		CreatedAt: time.Now().UTC(),
	}
}

func multipartRequest(t *testing.T, fields map[string]string, pdf []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if pdf != nil {
		part, err := mw.CreateFormFile("pdf_file", "source.pdf")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write(pdf); err != nil {
			t.Fatalf("write pdf: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/generate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	ctx := context.WithValue(req.Context(), middleware.LocaleKey, "en")
	return req.WithContext(ctx)
}

func TestGenerateReturnsPresentation(t *testing.T) {
	gen := &fakeGenerator{pres: samplePresentation()}
	app := newTestApp(t, gen)

	req := multipartRequest(t, map[string]string{
		"topic":        "Quantum Computing",
		"slide_count":  "2",
		"enable_video": "true",
		"url_link":     "https://example.com",
	}, nil)
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var dto presentationDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if dto.ID != "p1" || len(dto.Slides) != 2 || dto.Slides[0].MediaType != "video" {
		t.Fatalf("dto = %+v", dto)
	}
	if gen.got.Topic != "Quantum Computing" || gen.got.SlideCount != 2 || !gen.got.EnableVideo {
		t.Fatalf("input = %+v", gen.got)
	}
	if gen.got.SourceURL != "https://example.com" {
		t.Fatalf("source url = %q", gen.got.SourceURL)
	}
}

func TestGenerateSavesUploadedDocument(t *testing.T) {
	gen := &fakeGenerator{pres: samplePresentation()}
	app := newTestApp(t, gen)

	req := multipartRequest(t, map[string]string{"topic": "AI"}, []byte("%PDF-1.4 fake"))
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if gen.got.DocumentPath == "" || !strings.Contains(gen.got.DocumentPath, "uploads/doc_") {
		t.Fatalf("document path = %q", gen.got.DocumentPath)
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantSlug string
	}{
		{name: "invalid request", err: domain.ErrInvalidRequest, wantCode: http.StatusBadRequest, wantSlug: "bad_request"},
		{name: "quota exceeded", err: domain.ErrQuotaExceeded, wantCode: http.StatusForbidden, wantSlug: "quota_exceeded"},
		{name: "planning failed", err: domain.ErrPlanningFailed, wantCode: http.StatusInternalServerError, wantSlug: "planning_failed"},
		{name: "storage failed", err: domain.ErrStorageFailed, wantCode: http.StatusInternalServerError, wantSlug: "storage_failed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &fakeGenerator{err: tc.err})
			rec := httptest.NewRecorder()
			app.Generate(rec, multipartRequest(t, map[string]string{"topic": "AI"}, nil))

			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body["error"] != tc.wantSlug {
				t.Fatalf("error = %v, want %s", body["error"], tc.wantSlug)
			}
		})
	}
}

func TestGenerateRejectsBadSlideCount(t *testing.T) {
	app := newTestApp(t, &fakeGenerator{})
	rec := httptest.NewRecorder()
	app.Generate(rec, multipartRequest(t, map[string]string{"topic": "AI", "slide_count": "three"}, nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
