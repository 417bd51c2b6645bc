package signup

import (
	"context"
)

type StubRepository struct {
	Signups []Signup
	nextId  int
}

func (s *StubRepository) Store(ctx context.Context, signup Signup) (Signup, error) {
	for _, existing := range s.Signups {
		if existing.EventId == signup.EventId && existing.UserId == signup.UserId {
			return existing, nil
		}
	}
	s.nextId++
	signup.Id = s.nextId
	s.Signups = append(s.Signups, signup)
	return signup, nil
}

func (s *StubRepository) FindByEventAndUser(ctx context.Context, eventId int, userId int) (*Signup, error) {
	for _, existing := range s.Signups {
		if existing.EventId == eventId && existing.UserId == userId {
			found := existing
			return &found, nil
		}
	}
	return nil, nil
}

func (s *StubRepository) ListByUser(ctx context.Context, userId int) ([]Signup, error) {
	var signups []Signup
	for _, existing := range s.Signups {
		if existing.UserId == userId {
			signups = append(signups, existing)
		}
	}
	return signups, nil
}
