package http

import (
	"embed"
	"html/template"
	"net/http"

	"fraudlens/results"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func (s *Server) registerPageRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndexPage)
	mux.HandleFunc("GET /dashboard", s.handleDashboardPage)
}

func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pageTemplates.ExecuteTemplate(w, "index.html", map[string]interface{}{
		"ModelLoaded": s.deps.Predictor.Loaded(),
	})
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"HasBatch": false,
		"PageSize": s.config.PageSize,
	}
	if batch, err := s.deps.Store.Get(); err == nil {
		data["HasBatch"] = true
		data["Summary"] = results.Summarize(batch)
		data["Page"] = results.Page(batch, 1, s.config.PageSize)
		data["CreatedAt"] = batch.CreatedAt
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pageTemplates.ExecuteTemplate(w, "dashboard.html", data)
}
