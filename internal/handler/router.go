package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anubhav-ai/assistant/internal/handler/chat"
	"github.com/anubhav-ai/assistant/internal/handler/persona"
	middlewarePkg "github.com/anubhav-ai/assistant/internal/middleware"
	personaModel "github.com/anubhav-ai/assistant/internal/model/persona"
	"github.com/anubhav-ai/assistant/pkg/utils"
)

// NewRouter wires HTTP routes to the relay. replier may be nil when no upstream
// credential is configured; /api/chat then answers 500. A non-empty webDir is
// served at / and holds the compiled browser shell.
func NewRouter(personas personaModel.Store, defaultPersona string, replier chat.Replier, webDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	chatHandler := chat.New(replier)
	personaHandler := persona.New(personas, defaultPersona)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		personaHandler.RegisterRoutes(api)
	})

	if webDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(webDir)))
	}

	return r
}
