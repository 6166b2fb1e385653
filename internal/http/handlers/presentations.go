package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"motionpitch/internal/domain"
)

// GetPresentation serves one presentation for the viewer. Presentations are
// addressable by ID without authentication; the ID is an unguessable UUID.
func (a *App) GetPresentation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id required")
		return
	}

	pres, err := a.Presentations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "presentation not found")
			return
		}
		a.Logger.Error().Err(err).Str("presentation_id", id).Msg("handlers: load presentation failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not load presentation")
		return
	}
	a.json(w, http.StatusOK, presentationToDTO(pres))
}

// ListPresentations returns the authenticated user's decks, newest first.
func (a *App) ListPresentations(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	items, err := a.Presentations.ListByOwner(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: list presentations failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not list presentations")
		return
	}

	dtos := make([]presentationDTO, len(items))
	for i := range items {
		dtos[i] = presentationToDTO(&items[i])
	}
	a.json(w, http.StatusOK, map[string]any{"items": dtos})
}
