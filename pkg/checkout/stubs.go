package checkout

import (
	"context"
	"sync"

	"github.com/gatherly/gatherly/pkg/event"
)

// StubCalendarLinker records linked events and returns a configurable error.
type StubCalendarLinker struct {
	mu     sync.Mutex
	Linked []event.Event
	Err    error
}

func (s *StubCalendarLinker) LinkEvent(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Linked = append(s.Linked, e)
	return nil
}

// StubAuthURL returns a fixed authorization URL.
type StubAuthURL struct {
	Url string
	Err error
}

func (s *StubAuthURL) AuthURL(_ context.Context, _ string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Url, nil
}

// StubPendingStore keeps hand-offs in memory.
type StubPendingStore struct {
	mu      sync.Mutex
	pending map[int]int
	SetErr  error
}

func (s *StubPendingStore) Set(_ context.Context, userId int, eventId int) error {
	if s.SetErr != nil {
		return s.SetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		s.pending = make(map[int]int)
	}
	s.pending[userId] = eventId
	return nil
}

func (s *StubPendingStore) Get(_ context.Context, userId int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eventId, ok := s.pending[userId]
	return eventId, ok, nil
}

func (s *StubPendingStore) Clear(_ context.Context, userId int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, userId)
	return nil
}

// RecordingNotifier collects every notice for assertions.
type RecordingNotifier struct {
	mu      sync.Mutex
	Notices []Notice
}

func (r *RecordingNotifier) Notify(notice Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notices = append(r.Notices, notice)
}

func (r *RecordingNotifier) Last() *Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Notices) == 0 {
		return nil
	}
	notice := r.Notices[len(r.Notices)-1]
	return &notice
}
