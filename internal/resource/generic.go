package resource

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/massiben/rh-backend/internal/core/events"
	"github.com/massiben/rh-backend/internal/datastore"
	"github.com/massiben/rh-backend/internal/transport"
	"github.com/go-chi/chi"
)

// GenericHandler is the fallback router: any collection present in the
// document and not claimed by a specialized route gets uniform CRUD with the
// standard envelope. chi prefers static segments, so specialized routes and
// auth endpoints always win over these parameterized patterns.
type GenericHandler struct {
	*transport.BaseHandler
	store *datastore.Store
	bus   *events.EventBus
}

func NewGenericHandler(store *datastore.Store, bus *events.EventBus, logger *slog.Logger) *GenericHandler {
	return &GenericHandler{
		BaseHandler: transport.NewBaseHandler(logger),
		store:       store,
		bus:         bus,
	}
}

func (h *GenericHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{collection}", h.List)
	r.Post("/{collection}", h.Create)
	r.Get("/{collection}/{id}", h.Get)
	r.Put("/{collection}/{id}", h.Update)
	r.Patch("/{collection}/{id}", h.Update)
	r.Delete("/{collection}/{id}", h.Delete)
}

// collection resolves the path segment against the document, answering 404
// for names that are not collections.
func (h *GenericHandler) collection(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "collection")
	if !h.store.Has(name) {
		h.WriteError(w, http.StatusNotFound, "Collection introuvable")
		return "", false
	}
	return name, true
}

func (h *GenericHandler) List(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collection(w, r)
	if !ok {
		return
	}
	records := h.store.All(name)
	if records == nil {
		records = []datastore.Record{}
	}
	h.WriteSuccess(w, http.StatusOK, "Succès", records)
}

func (h *GenericHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collection(w, r)
	if !ok {
		return
	}
	rec, found := h.store.Find(name, datastore.CoerceID(chi.URLParam(r, "id")))
	if !found {
		h.WriteError(w, http.StatusNotFound, "Enregistrement introuvable")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Succès", rec)
}

func (h *GenericHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collection(w, r)
	if !ok {
		return
	}
	var body datastore.Record
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Corps de requête invalide")
		return
	}
	rec := h.store.Insert(name, body)
	h.bus.Publish(context.Background(), events.NewResourceEvent(events.ResourceCreated, name, rec.ID()))
	h.WriteSuccess(w, http.StatusCreated, "Enregistrement créé", rec)
}

func (h *GenericHandler) Update(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collection(w, r)
	if !ok {
		return
	}
	var body datastore.Record
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Corps de requête invalide")
		return
	}
	rec, found := h.store.Update(name, datastore.CoerceID(chi.URLParam(r, "id")), body)
	if !found {
		h.WriteError(w, http.StatusNotFound, "Enregistrement introuvable")
		return
	}
	h.bus.Publish(context.Background(), events.NewResourceEvent(events.ResourceUpdated, name, rec.ID()))
	h.WriteSuccess(w, http.StatusOK, "Enregistrement mis à jour", rec)
}

func (h *GenericHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collection(w, r)
	if !ok {
		return
	}
	rec, found := h.store.Delete(name, datastore.CoerceID(chi.URLParam(r, "id")))
	if !found {
		h.WriteError(w, http.StatusNotFound, "Enregistrement introuvable")
		return
	}
	h.bus.Publish(context.Background(), events.NewResourceEvent(events.ResourceDeleted, name, rec.ID()))
	h.WriteSuccess(w, http.StatusOK, "Enregistrement supprimé", rec)
}
