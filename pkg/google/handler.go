package google

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gatherly/gatherly/internal/rest"
	"github.com/gatherly/gatherly/pkg/user"
	log "github.com/sirupsen/logrus"
)

type authRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

type Handler struct {
	auth *Auth
}

func NewHandler(auth *Auth) *Handler {
	return &Handler{auth: auth}
}

// AuthUrl returns the Google authorization URL for the current user.
func (h *Handler) AuthUrl(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	finalUrl := r.URL.Query().Get("finalUrl")
	u, err := h.auth.AuthURL(r.Context(), finalUrl)
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			rest.WriteError(w, http.StatusUnauthorized, "Please sign in")
			return
		}
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication")
		return
	}

	if err := json.NewEncoder(w).Encode(authRedirect{RedirectUrl: u}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Callback completes the OAuth round trip and sends the browser back to the
// page that started it.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	state := r.FormValue("state")

	parts := strings.SplitN(state, "|", 2)
	if len(parts) != 2 {
		rest.WriteError(w, http.StatusBadRequest, "Malformed state parameter")
		return
	}
	finalUrl := parts[0]
	nonce := parts[1]

	if err := h.auth.StoreToken(r.Context(), code, nonce); err != nil {
		log.Error(err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := h.auth.Unlink(r.Context()); err != nil {
		if errors.Is(err, user.ErrNoUser) {
			rest.WriteError(w, http.StatusUnauthorized, "Please sign in")
			return
		}
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
