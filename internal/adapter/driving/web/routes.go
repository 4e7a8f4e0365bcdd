package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Pages are served at / and form posts at /app/*.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Dashboard)

	mux.HandleFunc("POST /app/alerts/dismiss", h.DismissAlert)
	mux.HandleFunc("POST /app/alerts/clear", h.ClearAlerts)
	mux.HandleFunc("POST /app/settings", h.UpdateSettings)
}
