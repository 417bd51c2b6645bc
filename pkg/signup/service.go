package signup

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherly/gatherly/internal/utils"
	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrPaymentRequired = errors.New("event requires payment")

// Recorder is the narrow interface the join flow depends on.
type Recorder interface {
	Record(ctx context.Context, eventId int, reference string, amountCents int64) (Signup, error)
}

type Service interface {
	Recorder
	// SignupFree records attendance for a free event. Paid events are
	// rejected; they go through the checkout flow.
	SignupFree(ctx context.Context, eventId int) (Signup, error)
	ListMyEvents(ctx context.Context) ([]event.Event, error)
}

type ServiceImpl struct {
	repo   Repository
	events event.Finder
	clock  utils.Clock
}

func NewService(repo Repository, events event.Finder) *ServiceImpl {
	return &ServiceImpl{repo: repo, events: events, clock: utils.SystemClock{}}
}

// Record stores a signup for the current user. Recording twice for the same
// event returns the existing signup unchanged.
func (s *ServiceImpl) Record(ctx context.Context, eventId int, reference string, amountCents int64) (Signup, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Signup{}, fmt.Errorf("failed to get current user: %w", err)
	}

	existing, err := s.repo.FindByEventAndUser(ctx, eventId, userId)
	if err != nil {
		return Signup{}, err
	}
	if existing != nil {
		log.Debugf("user %d already signed up for event %d", userId, eventId)
		return *existing, nil
	}

	return s.repo.Store(ctx, Signup{
		EventId:     eventId,
		UserId:      userId,
		Reference:   reference,
		AmountCents: amountCents,
		CreatedAt:   s.clock.Now(),
	})
}

func (s *ServiceImpl) SignupFree(ctx context.Context, eventId int) (Signup, error) {
	e, err := s.events.GetEvent(ctx, eventId)
	if err != nil {
		return Signup{}, err
	}
	if e.IsPaid {
		return Signup{}, ErrPaymentRequired
	}
	return s.Record(ctx, eventId, "", 0)
}

func (s *ServiceImpl) ListMyEvents(ctx context.Context) ([]event.Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	signups, err := s.repo.ListByUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	events := make([]event.Event, 0, len(signups))
	for _, signup := range signups {
		e, err := s.events.GetEvent(ctx, signup.EventId)
		if err != nil {
			if errors.Is(err, event.ErrEventNotFound) {
				log.Warnf("signup %d references missing event %d", signup.Id, signup.EventId)
				continue
			}
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
