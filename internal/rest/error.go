package rest

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON shape returned by all handlers on failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteError writes an ErrorResponse with the given status code.
func WriteError(w http.ResponseWriter, status int, message string, details ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	response := ErrorResponse{Error: message}
	if len(details) > 0 {
		response.Details = details[0]
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
