package payment

import (
	"context"
	"errors"
)

// StubProvider is an in-memory payment provider for tests. It hands out
// predictable client secrets and confirms any payment unless primed to fail.
type StubProvider struct {
	NextSecret   string
	CreateErr    error
	ConfirmErr   error
	Created      []int64
	Confirmed    []string
	FailNotFound bool
}

func (s *StubProvider) CreateIntent(ctx context.Context, eventId int, amountCents int64, currency string) (string, error) {
	if s.CreateErr != nil {
		return "", s.CreateErr
	}
	s.Created = append(s.Created, amountCents)
	if s.NextSecret != "" {
		return s.NextSecret, nil
	}
	return "pi_stub_secret_stub", nil
}

func (s *StubProvider) ConfirmCardPayment(ctx context.Context, clientSecret string, paymentMethodId string) error {
	if s.ConfirmErr != nil {
		return s.ConfirmErr
	}
	if s.FailNotFound {
		return errors.New("no such intent")
	}
	s.Confirmed = append(s.Confirmed, clientSecret)
	return nil
}

type StubRepository struct {
	Intents []Intent
	nextId  int
}

func (s *StubRepository) StoreIntent(ctx context.Context, intent Intent) (Intent, error) {
	s.nextId++
	intent.Id = s.nextId
	s.Intents = append(s.Intents, intent)
	return intent, nil
}

func (s *StubRepository) FindByIntentId(ctx context.Context, intentId string) (*Intent, error) {
	for _, intent := range s.Intents {
		if intent.IntentId == intentId {
			found := intent
			return &found, nil
		}
	}
	return nil, nil
}
