package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gatherly/gatherly/internal/config"
	"github.com/gatherly/gatherly/pkg/user"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

// StripeClient implements IntentCreator and CardConfirmer against the
// Stripe API.
type StripeClient struct{}

func NewStripeClient(cfg config.Stripe) *StripeClient {
	stripe.Key = cfg.SecretKey
	return &StripeClient{}
}

func (c *StripeClient) CreateIntent(ctx context.Context, eventId int, amountCents int64, currency string) (string, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}

	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.AddMetadata("event_id", strconv.Itoa(eventId))
	params.AddMetadata("user_id", strconv.Itoa(userId))

	intent, err := paymentintent.New(params)
	if err != nil {
		err := fmt.Errorf("unable to create payment intent: %w", asProviderError(err))
		log.Error(err)
		return "", err
	}

	log.Debugf("created payment intent %s for event %d", intent.ID, eventId)
	return intent.ClientSecret, nil
}

// ConfirmCardPayment confirms the intent with the given payment method. An
// intent that already succeeded is treated as confirmed, so a retry after a
// failure later in the flow does not trip Stripe's invalid-state check.
func (c *StripeClient) ConfirmCardPayment(ctx context.Context, clientSecret string, paymentMethodId string) error {
	intentId, err := intentIdFromSecret(clientSecret)
	if err != nil {
		return err
	}

	current, err := paymentintent.Get(intentId, &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
	})
	if err != nil {
		return asProviderError(err)
	}
	if current.Status == stripe.PaymentIntentStatusSucceeded {
		log.Debugf("payment intent %s already succeeded, skipping confirm", intentId)
		return nil
	}

	params := &stripe.PaymentIntentConfirmParams{
		Params: stripe.Params{
			Context: ctx,
		},
		PaymentMethod: stripe.String(paymentMethodId),
	}

	intent, err := paymentintent.Confirm(intentId, params)
	if err != nil {
		return asProviderError(err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return &ProviderError{
			Code:    string(intent.Status),
			Message: "payment was not completed",
		}
	}
	return nil
}

// intentIdFromSecret extracts the intent id from a client secret of the form
// "pi_xxx_secret_yyy".
func intentIdFromSecret(clientSecret string) (string, error) {
	intentId, _, found := strings.Cut(clientSecret, "_secret")
	if !found || intentId == "" {
		return "", fmt.Errorf("malformed client secret")
	}
	return intentId, nil
}

func asProviderError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &ProviderError{
			Code:    string(stripeErr.Code),
			Message: stripeErr.Msg,
		}
	}
	return err
}
