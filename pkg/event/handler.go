package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gatherly/gatherly/internal/rest"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type EventDTO struct {
	Id             int      `json:"id,omitempty"`
	Title          string   `json:"title" validate:"required,max=200"`
	Description    string   `json:"description,omitempty"`
	Location       string   `json:"location" validate:"required,max=200"`
	StartTime      string   `json:"startTime" validate:"required"`
	EndTime        string   `json:"endTime" validate:"required"`
	IsPaid         bool     `json:"isPaid"`
	Price          *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Currency       string   `json:"currency,omitempty" validate:"omitempty,len=3"`
	PayWhatYouFeel bool     `json:"payWhatYouFeel"`
	CreatedBy      int      `json:"createdBy,omitempty"`
	Attendees      int      `json:"attendees"`
}

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Creating new event")

	event, ok := h.decodeEvent(w, r)
	if !ok {
		return
	}

	created, err := h.service.CreateEvent(r.Context(), event)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(eventToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, ok := eventId(w, r)
	if !ok {
		return
	}

	event, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(eventToDTO(event)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	filter := Filter{
		Query:    r.URL.Query().Get("q"),
		OnlyFree: r.URL.Query().Get("free") == "true",
		OnlyPaid: r.URL.Query().Get("paid") == "true",
	}

	events, err := h.service.ListEvents(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := make([]EventDTO, 0, len(events))
	for _, e := range events {
		response = append(response, eventToDTO(e))
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Updating event")

	id, ok := eventId(w, r)
	if !ok {
		return
	}
	event, ok := h.decodeEvent(w, r)
	if !ok {
		return
	}
	event.Id = id

	updated, err := h.service.UpdateEvent(r.Context(), event)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(eventToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventId(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteEvent(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeEvent(w http.ResponseWriter, r *http.Request) (Event, bool) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return Event{}, false
	}
	if err := h.validate.Struct(dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
		return Event{}, false
	}

	startTime, err := time.Parse(time.RFC3339, dto.StartTime)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid startTime format", "Start time must be in RFC3339 format")
		return Event{}, false
	}
	endTime, err := time.Parse(time.RFC3339, dto.EndTime)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid endTime format", "End time must be in RFC3339 format")
		return Event{}, false
	}

	return Event{
		Title:          dto.Title,
		Description:    dto.Description,
		Location:       dto.Location,
		StartTime:      startTime,
		EndTime:        endTime,
		IsPaid:         dto.IsPaid,
		Price:          dto.Price,
		Currency:       dto.Currency,
		PayWhatYouFeel: dto.PayWhatYouFeel,
	}, true
}

func eventId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["eventId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id")
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, ErrNotAllowed):
		rest.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidEvent):
		rest.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func eventToDTO(event Event) EventDTO {
	return EventDTO{
		Id:             event.Id,
		Title:          event.Title,
		Description:    event.Description,
		Location:       event.Location,
		StartTime:      event.StartTime.Format(time.RFC3339),
		EndTime:        event.EndTime.Format(time.RFC3339),
		IsPaid:         event.IsPaid,
		Price:          event.Price,
		Currency:       event.Currency,
		PayWhatYouFeel: event.PayWhatYouFeel,
		CreatedBy:      event.CreatedBy,
		Attendees:      event.Attendees,
	}
}
