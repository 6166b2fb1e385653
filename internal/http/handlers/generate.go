package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"motionpitch/internal/deck"
	"motionpitch/internal/domain"
	"motionpitch/internal/middleware"
)

type slideDTO struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
}

type presentationDTO struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Slides    []slideDTO `json:"slides"`
	HasVideo  bool       `json:"has_video"`
	CreatedAt time.Time  `json:"created_at"`
}

func presentationToDTO(p *domain.Presentation) presentationDTO {
	dto := presentationDTO{
		ID:        p.ID,
		Title:     p.Title,
		HasVideo:  p.HasVideo,
		CreatedAt: p.CreatedAt,
		Slides:    make([]slideDTO, len(p.Slides)),
	}
	for i, s := range p.Slides {
		dto.Slides[i] = slideDTO{
			Title:     s.Title,
			Content:   s.Content,
			MediaURL:  s.MediaURL,
			MediaType: string(s.MediaType),
		}
	}
	return dto
}

// Generate handles the multipart generation request. The call is synchronous:
// the response carries the finished presentation, with progress streamed out
// of band over the event hub.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	maxBytes := a.UploadMaxMB
	if maxBytes <= 0 {
		maxBytes = 32
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes<<20)
	if err := r.ParseMultipartForm(maxBytes << 20); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}

	in := deck.GenerateInput{
		Topic:     r.FormValue("topic"),
		SourceURL: r.FormValue("url_link"),
		UserID:    a.currentUserID(r),
		GuestID:   middleware.GuestIDFromContext(r.Context()),
		Locale:    middleware.LocaleFromContext(r.Context()),
	}
	if v := r.FormValue("slide_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "slide_count must be a number")
			return
		}
		in.SlideCount = n
	}
	if v := r.FormValue("enable_video"); v != "" {
		in.EnableVideo = v == "true" || v == "1" || v == "on"
	}

	if file, header, err := r.FormFile("pdf_file"); err == nil {
		defer file.Close()
		path, err := a.saveUpload(r, file, header.Filename)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("handlers: document upload rejected")
			a.error(w, http.StatusBadRequest, "bad_request", "could not read uploaded document")
			return
		}
		in.DocumentPath = path
	}

	pres, err := a.Service.Generate(r.Context(), in)
	if err != nil {
		a.generateError(w, err)
		return
	}
	a.json(w, http.StatusOK, presentationToDTO(pres))
}

func (a *App) saveUpload(r *http.Request, file io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("uploads/doc_%s.pdf", uuid.NewString())
	storedKey, err := a.Store.Write(r.Context(), key, data)
	if err != nil {
		return "", err
	}
	a.Logger.Info().Str("key", storedKey).Str("filename", filename).Msg("handlers: document uploaded")
	return a.Store.Path(storedKey)
}

func (a *App) generateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded):
		a.error(w, http.StatusForbidden, "quota_exceeded",
			fmt.Sprintf("guest limit of %d generations reached; sign in to continue", a.GuestLimit))
	case errors.Is(err, domain.ErrPlanningFailed):
		a.error(w, http.StatusInternalServerError, "planning_failed", "could not plan the presentation")
	case errors.Is(err, domain.ErrStorageFailed):
		a.error(w, http.StatusInternalServerError, "storage_failed", "could not save the presentation")
	default:
		a.Logger.Error().Err(err).Msg("handlers: generate failed")
		a.error(w, http.StatusInternalServerError, "internal", "generation failed")
	}
}
