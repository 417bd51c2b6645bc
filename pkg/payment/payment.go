package payment

import (
	"context"
	"fmt"
	"time"
)

// IntentCreator starts a payment by creating a payment intent with the
// provider. The returned client secret authorizes exactly one confirmation.
type IntentCreator interface {
	CreateIntent(ctx context.Context, eventId int, amountCents int64, currency string) (string, error)
}

// CardConfirmer confirms a card payment previously started with an intent.
// Provider-reported failures are returned as *ProviderError.
type CardConfirmer interface {
	ConfirmCardPayment(ctx context.Context, clientSecret string, paymentMethodId string) error
}

// Provider is a payment provider able to both start and confirm payments.
type Provider interface {
	IntentCreator
	CardConfirmer
}

// ProviderError carries a payment-provider failure (card declined, etc.) with
// the provider's own message, which is safe to show to the user.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider error %s: %s", e.Code, e.Message)
}

// Intent is the locally persisted record of a created payment intent, kept
// for reconciliation of charges against signups.
type Intent struct {
	Id          int
	IntentId    string
	EventId     int
	UserId      int
	AmountCents int64
	Currency    string
	CreatedAt   time.Time
}
