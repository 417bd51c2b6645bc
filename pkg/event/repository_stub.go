package event

import (
	"context"
)

type StubRepository struct {
	Events  []Event
	Counted []int
	nextId  int
}

func (s *StubRepository) StoreEvent(ctx context.Context, event Event) (Event, error) {
	s.nextId++
	event.Id = s.nextId
	s.Events = append(s.Events, event)
	return event, nil
}

func (s *StubRepository) GetEvent(ctx context.Context, id int) (*Event, error) {
	for _, e := range s.Events {
		if e.Id == id {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (s *StubRepository) ListEvents(ctx context.Context) ([]Event, error) {
	return s.Events, nil
}

func (s *StubRepository) UpdateEvent(ctx context.Context, event Event) error {
	for i, e := range s.Events {
		if e.Id == event.Id {
			s.Events[i] = event
			return nil
		}
	}
	return ErrEventNotFound
}

func (s *StubRepository) DeleteEvent(ctx context.Context, id int) error {
	for i, e := range s.Events {
		if e.Id == id {
			s.Events = append(s.Events[:i], s.Events[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *StubRepository) RefreshAttendeeCount(ctx context.Context, id int) error {
	s.Counted = append(s.Counted, id)
	return nil
}
