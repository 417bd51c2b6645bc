package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gatherly/gatherly/internal/rest"
	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/google"
	"github.com/gatherly/gatherly/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service Service
	resumer *Resumer
}

func NewHandler(service Service, resumer *Resumer) *Handler {
	return &Handler{service: service, resumer: resumer}
}

type noticeDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type sessionDTO struct {
	EventId       int        `json:"eventId"`
	Step          string     `json:"step"`
	CustomAmount  string     `json:"customAmount,omitempty"`
	ClientSecret  string     `json:"clientSecret,omitempty"`
	CalendarError string     `json:"calendarError,omitempty"`
	Loading       bool       `json:"loading"`
	Open          bool       `json:"open"`
	Notice        *noticeDTO `json:"notice,omitempty"`
}

func toSessionDTO(s Session) sessionDTO {
	dto := sessionDTO{
		EventId:       s.EventId,
		Step:          string(s.Step),
		CustomAmount:  s.CustomAmount,
		ClientSecret:  s.ClientSecret,
		CalendarError: s.CalendarError,
		Loading:       s.Loading,
		Open:          s.Open,
	}
	if s.Notice != nil {
		dto.Notice = &noticeDTO{Kind: string(s.Notice.Kind), Message: s.Notice.Message}
	}
	return dto
}

type checkoutRequest struct {
	CustomAmount string `json:"customAmount"`
}

type confirmRequest struct {
	PaymentMethodId string `json:"paymentMethodId"`
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	eventId, err := strconv.Atoi(mux.Vars(r)["eventId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}
	session, err := h.service.Open(r.Context(), eventId)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, session)
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Current(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, session)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Close(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var request checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	session, err := h.service.Checkout(r.Context(), request.CustomAmount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, session)
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var request confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	session, err := h.service.ConfirmPayment(r.Context(), request.PaymentMethodId)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, session)
}

func (h *Handler) AddToCalendar(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.AddToCalendar(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, session)
}

func (h *Handler) ConnectCalendar(w http.ResponseWriter, r *http.Request) {
	url, session, err := h.service.ConnectCalendar(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response := struct {
		Url     string     `json:"url,omitempty"`
		Session sessionDTO `json:"session"`
	}{Url: url, Session: toSessionDTO(session)}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error(err)
	}
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Back(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, session)
}

func (h *Handler) Skip(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Skip(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, session)
}

// Resume finishes the calendar hand-off after the OAuth redirect returned.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	linked, err := h.resumer.Resume(r.Context())
	if errors.Is(err, google.ErrCalendarNotLinked) {
		rest.WriteError(w, http.StatusConflict, "Google Calendar is not connected")
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	response := struct {
		Linked  bool   `json:"linked"`
		EventId int    `json:"eventId,omitempty"`
		Title   string `json:"title,omitempty"`
	}{}
	if linked != nil {
		response.Linked = true
		response.EventId = linked.Id
		response.Title = linked.Title
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error(err)
	}
}

func (h *Handler) writeSession(w http.ResponseWriter, session Session) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toSessionDTO(session)); err != nil {
		log.Error(err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, ErrNoSession):
		rest.WriteError(w, http.StatusNotFound, "No active checkout session")
	case errors.Is(err, ErrBusy):
		rest.WriteError(w, http.StatusConflict, "Another operation is in progress")
	case errors.Is(err, ErrClosed), errors.Is(err, ErrInvalidStep):
		rest.WriteError(w, http.StatusConflict, "Operation not available in the current step")
	case errors.Is(err, event.ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found")
	default:
		log.Error(err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
