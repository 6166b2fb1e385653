package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type guestKey string

const (
	guestIDKey      guestKey = "guest_id"
	guestCookieName          = "guest_id"
	guestCookieAge           = 365 * 24 * 60 * 60
)

// GuestID assigns a stable anonymous identity via cookie. Quota accounting
// for unauthenticated callers keys off this value.
func GuestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(guestCookieName); err == nil && c.Value != "" {
			id = c.Value
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     guestCookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   guestCookieAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), guestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GuestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(guestIDKey).(string); ok {
		return v
	}
	return ""
}
