package signup

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gatherly/gatherly/internal/rest"
	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type SignupDTO struct {
	Id        int    `json:"id"`
	EventId   int    `json:"eventId"`
	CreatedAt string `json:"createdAt"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SignupEvent records attendance for a free event.
func (h *Handler) SignupEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Recording event signup")

	eventId, err := strconv.Atoi(mux.Vars(r)["eventId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	signup, err := h.service.SignupFree(r.Context(), eventId)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNoUser):
			rest.WriteError(w, http.StatusUnauthorized, "Please sign in to join events")
		case errors.Is(err, event.ErrEventNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, ErrPaymentRequired):
			rest.WriteError(w, http.StatusPaymentRequired, "This event requires payment")
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(signupToDTO(signup)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	events, err := h.service.ListMyEvents(r.Context())
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			rest.WriteError(w, http.StatusUnauthorized, "Please sign in")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := make([]event.EventDTO, 0, len(events))
	for _, e := range events {
		response = append(response, event.EventDTO{
			Id:             e.Id,
			Title:          e.Title,
			Description:    e.Description,
			Location:       e.Location,
			StartTime:      e.StartTime.Format(time.RFC3339),
			EndTime:        e.EndTime.Format(time.RFC3339),
			IsPaid:         e.IsPaid,
			Price:          e.Price,
			Currency:       e.Currency,
			PayWhatYouFeel: e.PayWhatYouFeel,
			Attendees:      e.Attendees,
		})
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func signupToDTO(s Signup) SignupDTO {
	return SignupDTO{
		Id:        s.Id,
		EventId:   s.EventId,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}
