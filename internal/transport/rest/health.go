package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/massiben/rh-backend/internal/datastore"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status    HealthStatus   `json:"status"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CheckedAt time.Time      `json:"checked_at"`
}

type HealthHandler struct {
	store *datastore.Store
}

func NewHealthHandler(store *datastore.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// pingHandler just says the service is up.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "OK"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// healthCheckHandler reports the state of the document store.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	stats := h.store.Stats()
	records := 0
	for _, n := range stats {
		records += n
	}

	entry := CheckEntry{
		Status:    HealthHealthy,
		CheckedAt: time.Now(),
		Details: map[string]any{
			"path":          h.store.Path(),
			"collections":   len(stats),
			"records":       records,
			"pending_flush": h.store.Dirty(),
		},
	}

	resp := HealthResponse{
		Status:     entry.Status,
		CheckedAt:  time.Now(),
		Components: map[string]CheckEntry{"store": entry},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
