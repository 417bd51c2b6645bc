package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatherly/gatherly/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

// stubStripeBackend points the Stripe SDK at a local test server for the
// duration of one test.
func stubStripeBackend(t *testing.T, handler http.Handler) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL: stripe.String(server.URL),
	})
	stripe.SetBackend(stripe.APIBackend, backend)
	t.Cleanup(func() {
		stripe.SetBackend(stripe.APIBackend, nil)
	})
}

func TestStripeConfirmCardPayment(t *testing.T) {
	t.Run("already succeeded intent is not confirmed again", func(t *testing.T) {
		confirmCalls := 0
		stubStripeBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/v1/payment_intents/pi_123":
				fmt.Fprint(w, `{"id": "pi_123", "status": "succeeded"}`)
			case r.Method == http.MethodPost && r.URL.Path == "/v1/payment_intents/pi_123/confirm":
				confirmCalls++
				fmt.Fprint(w, `{"id": "pi_123", "status": "succeeded"}`)
			default:
				t.Errorf("unexpected Stripe call: %s %s", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		client := NewStripeClient(config.Stripe{SecretKey: "sk_test_123"})

		err := client.ConfirmCardPayment(context.Background(), "pi_123_secret_abc", "pm_card")

		require.NoError(t, err)
		assert.Equal(t, 0, confirmCalls)
	})

	t.Run("unconfirmed intent goes through confirm", func(t *testing.T) {
		confirmCalls := 0
		stubStripeBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/v1/payment_intents/pi_123":
				fmt.Fprint(w, `{"id": "pi_123", "status": "requires_confirmation"}`)
			case r.Method == http.MethodPost && r.URL.Path == "/v1/payment_intents/pi_123/confirm":
				confirmCalls++
				fmt.Fprint(w, `{"id": "pi_123", "status": "succeeded"}`)
			default:
				t.Errorf("unexpected Stripe call: %s %s", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		client := NewStripeClient(config.Stripe{SecretKey: "sk_test_123"})

		err := client.ConfirmCardPayment(context.Background(), "pi_123_secret_abc", "pm_card")

		require.NoError(t, err)
		assert.Equal(t, 1, confirmCalls)
	})

	t.Run("malformed client secret is rejected", func(t *testing.T) {
		client := NewStripeClient(config.Stripe{SecretKey: "sk_test_123"})

		err := client.ConfirmCardPayment(context.Background(), "garbage", "pm_card")

		assert.Error(t, err)
	})
}
