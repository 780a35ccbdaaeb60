// Package query provides the HTTP handler for travel queries.
package query

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"travel-concierge/internal/handler/http/respond"
	tripUC "travel-concierge/internal/usecase/trip"
)

// Handler answers free-text travel queries.
type Handler struct{ Svc *tripUC.Service }

// ServeHTTP accepts a travel query and returns the composed reply.
// The reply is always 200 with a human-readable message: provider failures
// surface as apologies in the reply text, not as HTTP errors.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("message is required"))
		return
	}

	reply, err := h.Svc.Answer(r.Context(), req.Message)
	if err != nil {
		// Only caller-level cancellation reaches here.
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// Register registers the query handler with the given mux.
func Register(mux *http.ServeMux, svc *tripUC.Service) {
	mux.Handle("POST /query", Handler{Svc: svc})
}
