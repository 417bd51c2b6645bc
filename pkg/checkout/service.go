package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/gatherly/gatherly/internal/event_bus"
	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Service coordinates join flow sessions. Each user holds at most one open
// session at a time; opening a flow for another event replaces it.
type Service interface {
	Open(ctx context.Context, eventId int) (Session, error)
	Current(ctx context.Context) (Session, error)
	Close(ctx context.Context) error
	Checkout(ctx context.Context, customAmount string) (Session, error)
	ConfirmPayment(ctx context.Context, paymentMethodId string) (Session, error)
	AddToCalendar(ctx context.Context) (Session, error)
	ConnectCalendar(ctx context.Context) (string, Session, error)
	Back(ctx context.Context) (Session, error)
	Skip(ctx context.Context) (Session, error)
}

type ServiceImpl struct {
	events     event.Finder
	caps       Capabilities
	bus        *event_bus.EventBus
	returnUrl  string
	resetDelay time.Duration

	mu       sync.Mutex
	machines map[int]*Machine
}

func NewService(events event.Finder, caps Capabilities, bus *event_bus.EventBus, returnUrl string, resetDelay time.Duration) *ServiceImpl {
	return &ServiceImpl{
		events:     events,
		caps:       caps,
		bus:        bus,
		returnUrl:  returnUrl,
		resetDelay: resetDelay,
		machines:   make(map[int]*Machine),
	}
}

func (s *ServiceImpl) Open(ctx context.Context, eventId int) (Session, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Session{}, err
	}
	e, err := s.events.GetEvent(ctx, eventId)
	if err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.machines[userId]; ok {
		snapshot := existing.Snapshot()
		if snapshot.Open && snapshot.EventId == eventId {
			return snapshot, nil
		}
		if snapshot.EventId == eventId && !snapshot.Open {
			existing.SetOpen(true)
			return existing.Snapshot(), nil
		}
		existing.SetOpen(false)
	}
	machine := NewMachine(e, s.caps, s.sessionReference(), s.returnUrl, s.resetDelay, s.joinedCallback(eventId, userId))
	s.machines[userId] = machine
	return machine.Snapshot(), nil
}

// sessionReference identifies a session in signup records, so a retried
// completion within the same session stays idempotent.
func (s *ServiceImpl) sessionReference() string {
	return uuid.New().String()
}

func (s *ServiceImpl) joinedCallback(eventId int, userId int) func(paid bool) {
	return func(paid bool) {
		err := s.bus.Publish(event_bus.NewEvent(context.Background(), event_bus.MemberJoinedEvent, event_bus.MemberJoined{
			EventId: eventId,
			UserId:  userId,
			Paid:    paid,
		}))
		if err != nil {
			log.Error(err)
		}
	}
}

func (s *ServiceImpl) machineFor(ctx context.Context) (*Machine, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	machine, ok := s.machines[userId]
	if !ok {
		return nil, ErrNoSession
	}
	return machine, nil
}

func (s *ServiceImpl) Current(ctx context.Context) (Session, error) {
	machine, err := s.machineFor(ctx)
	if err != nil {
		return Session{}, err
	}
	return machine.Snapshot(), nil
}

func (s *ServiceImpl) Close(ctx context.Context) error {
	machine, err := s.machineFor(ctx)
	if err != nil {
		return err
	}
	machine.SetOpen(false)
	return nil
}

func (s *ServiceImpl) Checkout(ctx context.Context, customAmount string) (Session, error) {
	machine, err := s.machineFor(ctx)
	if err != nil {
		return Session{}, err
	}
	if err := machine.Checkout(ctx, customAmount); err != nil {
		return Session{}, err
	}
	return machine.Snapshot(), nil
}

func (s *ServiceImpl) ConfirmPayment(ctx context.Context, paymentMethodId string) (Session, error) {
	machine, err := s.machineFor(ctx)
	if err != nil {
		return Session{}, err
	}
	if err := machine.ConfirmPayment(ctx, paymentMethodId); err != nil {
		return Session{}, err
	}
	return machine.Snapshot(), nil
}

func (s *ServiceImpl) AddToCalendar(ctx context.Context) (Session, error) {
	machine, err := s.machineFor(ctx)
	if err != nil {
		return Session{}, err
	}
	if err := machine.AddToCalendar(ctx); err != nil {
		return Session{}, err
	}
	return machine.Snapshot(), nil
}

func (s *ServiceImpl) ConnectCalendar(ctx context.Context) (string, Session, error) {
	machine, err := s.machineFor(ctx)
	if err != nil {
		return "", Session{}, err
	}
	url, err := machine.ConnectCalendar(ctx)
	if err != nil {
		return "", Session{}, err
	}
	return url, machine.Snapshot(), nil
}

func (s *ServiceImpl) Back(ctx context.Context) (Session, error) {
	machine, err := s.machineFor(ctx)
	if err != nil {
		return Session{}, err
	}
	if err := machine.Back(); err != nil {
		return Session{}, err
	}
	return machine.Snapshot(), nil
}

func (s *ServiceImpl) Skip(ctx context.Context) (Session, error) {
	machine, err := s.machineFor(ctx)
	if err != nil {
		return Session{}, err
	}
	if err := machine.Skip(); err != nil {
		return Session{}, err
	}
	return machine.Snapshot(), nil
}

// Sweep drops sessions that have been idle longer than ttl. Closed sessions
// reset themselves; this only reclaims the map entries of abandoned flows.
func (s *ServiceImpl) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for userId, machine := range s.machines {
		if machine.LastTouched().Before(cutoff) {
			machine.SetOpen(false)
			delete(s.machines, userId)
			removed++
		}
	}
	if removed > 0 {
		log.Debugf("swept %d idle checkout sessions", removed)
	}
	return removed
}
