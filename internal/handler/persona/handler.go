package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anubhav-ai/assistant/internal/model/persona"
	"github.com/anubhav-ai/assistant/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	personas  persona.Store
	defaultID string
}

// New 创建persona处理器，defaultID 为浏览器端默认使用的角色。
func New(personas persona.Store, defaultID string) *Handler {
	return &Handler{
		personas:  personas,
		defaultID: defaultID,
	}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/default", h.handleDefaultPersona)
	r.Get("/personas/{personaID}", h.handleGetPersona)
}

// handleListPersonas 列出所有persona
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}

func (h *Handler) handleDefaultPersona(w http.ResponseWriter, r *http.Request) {
	h.respondPersona(w, h.defaultID)
}

func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	h.respondPersona(w, chi.URLParam(r, "personaID"))
}

func (h *Handler) respondPersona(w http.ResponseWriter, id string) {
	p, ok := h.personas.FindByID(id)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
