package organization

import (
	"net/http"

	"github.com/massiben/rh-backend/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(baseHandler *transport.BaseHandler, service *Service) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sieges", h.ListSieges)
	r.Get("/sieges/{id}", h.GetSiege)
	r.Get("/sieges/{id}/groupes", h.SiegeGroupes)
	r.Get("/groupes/{id}/membres", h.GroupeMembres)
}

func (h *Handler) ListSieges(w http.ResponseWriter, r *http.Request) {
	h.WriteSuccess(w, http.StatusOK, "Succès", h.Service.ListSieges())
}

func (h *Handler) GetSiege(w http.ResponseWriter, r *http.Request) {
	siege, err := h.Service.GetSiege(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Succès", siege)
}

func (h *Handler) SiegeGroupes(w http.ResponseWriter, r *http.Request) {
	groupes, err := h.Service.SiegeGroupes(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Succès", groupes)
}

func (h *Handler) GroupeMembres(w http.ResponseWriter, r *http.Request) {
	membres, err := h.Service.GroupeMembres(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Succès", membres)
}
