package handlers

import "net/http"

// Events streams pipeline progress as server-sent events.
func (a *App) Events(w http.ResponseWriter, r *http.Request) {
	if a.Hub == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "event stream not enabled")
		return
	}
	a.Hub.ServeHTTP(w, r)
}
