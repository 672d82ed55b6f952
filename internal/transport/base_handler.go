package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/massiben/rh-backend/internal"
	"github.com/massiben/rh-backend/pkg/logger"
)

// Envelope is the uniform response wrapper every endpoint returns.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// PagedEnvelope extends the envelope with the server-side table counts.
type PagedEnvelope struct {
	Envelope
	RecordsTotal    int `json:"recordsTotal"`
	RecordsFiltered int `json:"recordsFiltered"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a raw JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteSuccess writes a success envelope.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	h.WriteJSON(w, status, Envelope{Status: "success", Message: message, Data: data})
}

// WritePaged writes a success envelope with table pagination counts.
func (h *BaseHandler) WritePaged(w http.ResponseWriter, message string, data any, total, filtered int) {
	h.WriteJSON(w, http.StatusOK, PagedEnvelope{
		Envelope:        Envelope{Status: "success", Message: message, Data: data},
		RecordsTotal:    total,
		RecordsFiltered: filtered,
	})
}

// WriteError writes an error envelope with a null data field.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.WriteJSON(w, status, Envelope{Status: "error", Message: message, Data: nil})
}

// HandleServiceError translates service errors into envelopes. Unexpected
// errors echo their message with a 500, acceptable for a development mock.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteError(w, appErr.StatusCode, appErr.Message)
		return
	}
	h.WriteError(w, http.StatusInternalServerError, err.Error())
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
