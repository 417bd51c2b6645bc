package checkout

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerFixture(t *testing.T) (*httptest.Server, *serviceFixture) {
	t.Helper()
	f := newServiceFixture(t)
	resumer := NewResumer(event.NewService(f.events), f.service.caps.Calendar, f.service.caps.Pending)
	handler := NewHandler(f.service, resumer)

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := user.WithUser(r.Context(), user.User{Id: 123, Uid: "idp_test_user", Role: user.RoleMember})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.HandleFunc("/api/events/{eventId}/checkout", handler.Open).Methods("POST")
	router.HandleFunc("/api/checkout", handler.Current).Methods("GET")
	router.HandleFunc("/api/checkout", handler.Close).Methods("DELETE")
	router.HandleFunc("/api/checkout/checkout", handler.Checkout).Methods("POST")
	router.HandleFunc("/api/checkout/payment", handler.ConfirmPayment).Methods("POST")
	router.HandleFunc("/api/checkout/calendar", handler.AddToCalendar).Methods("POST")
	router.HandleFunc("/api/checkout/connect", handler.ConnectCalendar).Methods("POST")
	router.HandleFunc("/api/checkout/back", handler.Back).Methods("POST")
	router.HandleFunc("/api/checkout/skip", handler.Skip).Methods("POST")
	router.HandleFunc("/api/checkout/resume", handler.Resume).Methods("POST")

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, f
}

func postJSON(t *testing.T, url string, body string) (*http.Response, sessionDTO) {
	t.Helper()
	response, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { response.Body.Close() })
	var dto sessionDTO
	if response.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(response.Body).Decode(&dto))
	}
	return response, dto
}

func TestHandlerJoinFlow(t *testing.T) {
	t.Run("free event flow over HTTP", func(t *testing.T) {
		server, _ := newHandlerFixture(t)

		response, session := postJSON(t, server.URL+"/api/events/1/checkout", "{}")
		require.Equal(t, http.StatusOK, response.StatusCode)
		assert.Equal(t, "initial", session.Step)

		response, session = postJSON(t, server.URL+"/api/checkout/checkout", "{}")
		require.Equal(t, http.StatusOK, response.StatusCode)
		assert.Equal(t, "success", session.Step)
		require.NotNil(t, session.Notice)
		assert.Equal(t, "success", session.Notice.Kind)

		response, _ = postJSON(t, server.URL+"/api/checkout/skip", "{}")
		require.Equal(t, http.StatusOK, response.StatusCode)
	})

	t.Run("paid event flow exposes the client secret", func(t *testing.T) {
		server, _ := newHandlerFixture(t)

		response, _ := postJSON(t, server.URL+"/api/events/2/checkout", "{}")
		require.Equal(t, http.StatusOK, response.StatusCode)

		response, session := postJSON(t, server.URL+"/api/checkout/checkout", "{}")
		require.Equal(t, http.StatusOK, response.StatusCode)
		assert.Equal(t, "payment", session.Step)
		assert.Equal(t, "pi_1_secret_x", session.ClientSecret)

		response, session = postJSON(t, server.URL+"/api/checkout/payment", `{"paymentMethodId":"pm_card"}`)
		require.Equal(t, http.StatusOK, response.StatusCode)
		assert.Equal(t, "success", session.Step)
		assert.Empty(t, session.ClientSecret)
	})

	t.Run("unknown event returns 404", func(t *testing.T) {
		server, _ := newHandlerFixture(t)

		response, _ := postJSON(t, server.URL+"/api/events/99/checkout", "{}")

		assert.Equal(t, http.StatusNotFound, response.StatusCode)
	})

	t.Run("invalid event id returns 400", func(t *testing.T) {
		server, _ := newHandlerFixture(t)

		response, _ := postJSON(t, server.URL+"/api/events/abc/checkout", "{}")

		assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	})

	t.Run("operations without a session return 404", func(t *testing.T) {
		server, _ := newHandlerFixture(t)

		response, _ := postJSON(t, server.URL+"/api/checkout/checkout", "{}")

		assert.Equal(t, http.StatusNotFound, response.StatusCode)
	})

	t.Run("invalid step returns 409", func(t *testing.T) {
		server, _ := newHandlerFixture(t)
		_, _ = postJSON(t, server.URL+"/api/events/1/checkout", "{}")

		response, _ := postJSON(t, server.URL+"/api/checkout/payment", `{"paymentMethodId":"pm_card"}`)

		assert.Equal(t, http.StatusConflict, response.StatusCode)
	})

	t.Run("current returns the session state", func(t *testing.T) {
		server, _ := newHandlerFixture(t)
		_, _ = postJSON(t, server.URL+"/api/events/1/checkout", "{}")

		request, err := http.NewRequest("GET", server.URL+"/api/checkout", nil)
		require.NoError(t, err)
		response, err := http.DefaultClient.Do(request)
		require.NoError(t, err)
		defer response.Body.Close()

		require.Equal(t, http.StatusOK, response.StatusCode)
		var session sessionDTO
		require.NoError(t, json.NewDecoder(response.Body).Decode(&session))
		assert.Equal(t, 1, session.EventId)
		assert.True(t, session.Open)
	})

	t.Run("close returns 204", func(t *testing.T) {
		server, _ := newHandlerFixture(t)
		_, _ = postJSON(t, server.URL+"/api/events/1/checkout", "{}")

		request, err := http.NewRequest("DELETE", server.URL+"/api/checkout", nil)
		require.NoError(t, err)
		response, err := http.DefaultClient.Do(request)
		require.NoError(t, err)
		defer response.Body.Close()

		assert.Equal(t, http.StatusNoContent, response.StatusCode)
	})

	t.Run("resume with nothing pending reports not linked", func(t *testing.T) {
		server, _ := newHandlerFixture(t)

		response, err := http.Post(server.URL+"/api/checkout/resume", "application/json", strings.NewReader("{}"))
		require.NoError(t, err)
		defer response.Body.Close()

		require.Equal(t, http.StatusOK, response.StatusCode)
		var result struct {
			Linked bool `json:"linked"`
		}
		require.NoError(t, json.NewDecoder(response.Body).Decode(&result))
		assert.False(t, result.Linked)
	})
}
