package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"motionpitch/internal/deck"
	"motionpitch/internal/domain"
	"motionpitch/internal/events"
	"motionpitch/internal/infra"
	"motionpitch/internal/middleware"
	"motionpitch/internal/storage"
)

// Generator runs the full generation pipeline. Implemented by deck.Service.
type Generator interface {
	Generate(ctx context.Context, in deck.GenerateInput) (*domain.Presentation, error)
}

type App struct {
	Service       Generator
	Users         domain.UserRepository
	Presentations domain.PresentationRepository
	Hub           *events.Hub
	Store         *storage.FileStore
	Logger        infra.Logger

	JWTSecret   string
	GuestLimit  int
	UploadMaxMB int64
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]any{
		"error":   slug,
		"message": message,
	})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
