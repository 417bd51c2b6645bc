package payment

import (
	"context"
	"fmt"

	"github.com/gatherly/gatherly/internal/utils"
	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	IntentCreator
	CardConfirmer
}

// ServiceImpl wraps the provider client, validating the event and keeping a
// local intent record for reconciliation.
type ServiceImpl struct {
	provider Provider
	repo     Repository
	events   event.Finder
	clock    utils.Clock
}

func NewService(provider Provider, repo Repository, events event.Finder) *ServiceImpl {
	return &ServiceImpl{provider: provider, repo: repo, events: events, clock: utils.SystemClock{}}
}

func (s *ServiceImpl) CreateIntent(ctx context.Context, eventId int, amountCents int64, currency string) (string, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}

	e, err := s.events.GetEvent(ctx, eventId)
	if err != nil {
		return "", err
	}
	if !e.IsPaid {
		return "", fmt.Errorf("event %d does not require payment", eventId)
	}
	if amountCents <= 0 {
		return "", fmt.Errorf("payment amount must be positive")
	}
	if currency == "" {
		currency = e.Currency
	}

	clientSecret, err := s.provider.CreateIntent(ctx, eventId, amountCents, currency)
	if err != nil {
		return "", err
	}

	intentId, err := intentIdFromSecret(clientSecret)
	if err != nil {
		return "", err
	}
	if _, err := s.repo.StoreIntent(ctx, Intent{
		IntentId:    intentId,
		EventId:     eventId,
		UserId:      userId,
		AmountCents: amountCents,
		Currency:    currency,
		CreatedAt:   s.clock.Now(),
	}); err != nil {
		// The provider-side intent exists either way; a missing local record
		// only degrades reconciliation, so the checkout proceeds.
		log.Errorf("failed to record payment intent %s locally: %v", intentId, err)
	}

	return clientSecret, nil
}

func (s *ServiceImpl) ConfirmCardPayment(ctx context.Context, clientSecret string, paymentMethodId string) error {
	return s.provider.ConfirmCardPayment(ctx, clientSecret, paymentMethodId)
}
