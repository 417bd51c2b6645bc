package event

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gatherly/gatherly/pkg/user"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotAllowed    = errors.New("only the event creator or staff can modify this event")
	ErrInvalidEvent  = errors.New("invalid event")
)

type Service interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id int) (Event, error)
	ListEvents(ctx context.Context, filter Filter) ([]Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, id int) error
	RefreshAttendeeCount(ctx context.Context, id int) error
}

// Finder is the narrow read-only view other packages depend on.
type Finder interface {
	GetEvent(ctx context.Context, id int) (Event, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, event Event) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateEvent(event); err != nil {
		return Event{}, err
	}

	event.CreatedBy = userId
	if event.Currency == "" {
		event.Currency = "usd"
	}
	return s.repo.StoreEvent(ctx, event)
}

func (s *ServiceImpl) GetEvent(ctx context.Context, id int) (Event, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if event == nil {
		return Event{}, ErrEventNotFound
	}
	return *event, nil
}

// ListEvents returns all events matching the filter. Text matching is a
// case-insensitive substring match on title and location.
func (s *ServiceImpl) ListEvents(ctx context.Context, filter Filter) ([]Event, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	return FilterEvents(events, filter), nil
}

func FilterEvents(events []Event, filter Filter) []Event {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	filtered := make([]Event, 0, len(events))
	for _, e := range events {
		if filter.OnlyFree && e.IsPaid {
			continue
		}
		if filter.OnlyPaid && !e.IsPaid {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Title), query) &&
			!strings.Contains(strings.ToLower(e.Location), query) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	existing, err := s.GetEvent(ctx, event.Id)
	if err != nil {
		return Event{}, err
	}
	if err := s.checkOwnership(ctx, existing); err != nil {
		return Event{}, err
	}
	if err := validateEvent(event); err != nil {
		return Event{}, err
	}

	event.CreatedBy = existing.CreatedBy
	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return Event{}, err
	}
	return s.GetEvent(ctx, event.Id)
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, id int) error {
	existing, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(ctx, existing); err != nil {
		return err
	}
	return s.repo.DeleteEvent(ctx, id)
}

func (s *ServiceImpl) RefreshAttendeeCount(ctx context.Context, id int) error {
	return s.repo.RefreshAttendeeCount(ctx, id)
}

func (s *ServiceImpl) checkOwnership(ctx context.Context, event Event) error {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if currentUser.Id != event.CreatedBy && currentUser.Role != user.RoleStaff {
		log.Debugf("user %d attempted to modify event %d owned by %d", currentUser.Id, event.Id, event.CreatedBy)
		return ErrNotAllowed
	}
	return nil
}

func validateEvent(event Event) error {
	if !event.EndTime.After(event.StartTime) {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidEvent)
	}
	if event.IsPaid && !event.PayWhatYouFeel {
		if event.Price == nil || *event.Price <= 0 {
			return fmt.Errorf("%w: paid events require a positive price", ErrInvalidEvent)
		}
	}
	if !event.IsPaid && event.Price != nil {
		return fmt.Errorf("%w: free events cannot have a price", ErrInvalidEvent)
	}
	return nil
}
