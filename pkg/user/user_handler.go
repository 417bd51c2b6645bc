package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gatherly/gatherly/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id          int    `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
}

type roleUpdateRequest struct {
	Role string `json:"role"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	currentUser, err := h.service.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			rest.WriteError(w, http.StatusUnauthorized, "Not signed in")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(userToDTO(currentUser)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Updating user role")

	userId, err := strconv.Atoi(mux.Vars(r)["userId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var request roleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	updated, err := h.service.ChangeRole(r.Context(), userId, Role(request.Role))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAllowed):
			rest.WriteError(w, http.StatusForbidden, "Only staff can change roles")
		case errors.Is(err, ErrNoUser):
			w.WriteHeader(http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if err := json.NewEncoder(w).Encode(userToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func userToDTO(u User) UserDTO {
	return UserDTO{
		Id:          u.Id,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        string(u.Role),
	}
}
