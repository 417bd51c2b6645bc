package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gatherly/gatherly/internal/rest"
	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateIntent starts a payment for an event and returns the client secret
// the browser uses to collect card details.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Creating payment intent")

	var request struct {
		EventId     int    `json:"eventId"`
		AmountCents int64  `json:"amountCents"`
		Currency    string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	clientSecret, err := h.service.CreateIntent(r.Context(), request.EventId, request.AmountCents, request.Currency)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNoUser):
			rest.WriteError(w, http.StatusUnauthorized, "Please sign in")
		case errors.Is(err, event.ErrEventNotFound):
			w.WriteHeader(http.StatusNotFound)
		default:
			rest.WriteError(w, http.StatusBadRequest, "Could not start payment")
		}
		return
	}

	response := struct {
		ClientSecret string `json:"clientSecret"`
	}{ClientSecret: clientSecret}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
