package resource

import (
	"encoding/json"
	"net/http"

	"github.com/massiben/rh-backend/internal/datastore"
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

// RegisterRoutes mounts the collection at its descriptor route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	desc := h.Service.Descriptor()
	r.Route(desc.Route, func(sr chi.Router) {
		sr.Get("/", h.List)
		sr.Post("/", h.Create)
		sr.Get("/{id}", h.Get)
		sr.Put("/{id}", h.Update)
		sr.Patch("/{id}", h.Update)
		sr.Delete("/{id}", h.Delete)

		if desc.Lifecycle {
			sr.Patch("/{id}/activate", h.Activate)
			sr.Patch("/{id}/deactivate", h.Deactivate)
		}
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := datastore.ParseListQuery(r.URL.Query())
	result := h.Service.List(q)
	h.WritePaged(w, "Succès", result.Records, result.Total, result.Filtered)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Succès", rec)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decodeBody(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.Create(body)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, "Enregistrement créé", rec)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decodeBody(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.Update(chi.URLParam(r, "id"), body)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Enregistrement mis à jour", rec)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.Delete(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Enregistrement supprimé", rec)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	rec, err := h.Service.SetActive(chi.URLParam(r, "id"), active)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	message := "Enregistrement activé"
	if !active {
		message = "Enregistrement désactivé"
	}
	h.WriteSuccess(w, http.StatusOK, message, rec)
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request) (datastore.Record, bool) {
	var body datastore.Record
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.WriteError(w, http.StatusBadRequest, "Corps de requête invalide")
			return nil, false
		}
	}
	return body, true
}
