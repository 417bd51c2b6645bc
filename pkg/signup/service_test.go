package signup

import (
	"context"
	"testing"
	"time"

	"github.com/gatherly/gatherly/internal/utils"
	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/user"
	"github.com/stretchr/testify/assert"
)

func userCtx(id int) context.Context {
	return user.WithUser(context.Background(), user.User{Id: id, Role: user.RoleMember})
}

func eventsWith(events ...event.Event) *event.StubRepository {
	repo := &event.StubRepository{}
	for _, e := range events {
		repo.StoreEvent(context.Background(), e)
	}
	return repo
}

func freeEvent() event.Event {
	return event.Event{
		Title:     "Community Picnic",
		Location:  "Hill Park",
		StartTime: time.Date(2026, time.October, 3, 12, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, time.October, 3, 15, 0, 0, 0, time.UTC),
	}
}

func paidEvent() event.Event {
	price := 25.0
	e := freeEvent()
	e.Title = "Wine Tasting"
	e.IsPaid = true
	e.Price = &price
	return e
}

func TestRecord(t *testing.T) {
	t.Run("records a signup with idempotency reference", func(t *testing.T) {
		repo := &StubRepository{}
		service := NewService(repo, event.NewService(eventsWith(freeEvent())))

		signup, err := service.Record(userCtx(5), 1, "sess-abc", 2500)

		assert.NoError(t, err)
		assert.Equal(t, 1, signup.EventId)
		assert.Equal(t, 5, signup.UserId)
		assert.Equal(t, "sess-abc", signup.Reference)
		assert.Equal(t, int64(2500), signup.AmountCents)
	})

	t.Run("recording twice returns the first signup", func(t *testing.T) {
		repo := &StubRepository{}
		service := NewService(repo, event.NewService(eventsWith(freeEvent())))

		first, err := service.Record(userCtx(5), 1, "sess-abc", 2500)
		assert.NoError(t, err)
		second, err := service.Record(userCtx(5), 1, "sess-later", 2500)
		assert.NoError(t, err)

		assert.Equal(t, first.Id, second.Id)
		assert.Equal(t, "sess-abc", second.Reference)
		assert.Len(t, repo.Signups, 1)
	})

	t.Run("anonymous callers are rejected", func(t *testing.T) {
		service := NewService(&StubRepository{}, event.NewService(eventsWith(freeEvent())))

		_, err := service.Record(context.Background(), 1, "", 0)

		assert.ErrorIs(t, err, user.ErrNoUser)
	})

	t.Run("signup timestamp comes from the clock", func(t *testing.T) {
		repo := &StubRepository{}
		service := NewService(repo, event.NewService(eventsWith(freeEvent())))
		fixed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
		service.clock = &utils.MockClock{FixedNow: fixed}

		signup, err := service.Record(userCtx(5), 1, "sess-abc", 0)

		assert.NoError(t, err)
		assert.Equal(t, fixed, signup.CreatedAt)
	})
}

func TestSignupFree(t *testing.T) {
	t.Run("signs up for a free event", func(t *testing.T) {
		service := NewService(&StubRepository{}, event.NewService(eventsWith(freeEvent())))

		signup, err := service.SignupFree(userCtx(5), 1)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), signup.AmountCents)
	})

	t.Run("rejects paid events", func(t *testing.T) {
		service := NewService(&StubRepository{}, event.NewService(eventsWith(paidEvent())))

		_, err := service.SignupFree(userCtx(5), 1)

		assert.ErrorIs(t, err, ErrPaymentRequired)
	})

	t.Run("missing event returns not found", func(t *testing.T) {
		service := NewService(&StubRepository{}, event.NewService(eventsWith()))

		_, err := service.SignupFree(userCtx(5), 404)

		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})
}

func TestListMyEvents(t *testing.T) {
	t.Run("returns only the caller's events", func(t *testing.T) {
		repo := &StubRepository{}
		service := NewService(repo, event.NewService(eventsWith(freeEvent(), paidEvent())))

		_, err := service.Record(userCtx(5), 1, "", 0)
		assert.NoError(t, err)
		_, err = service.Record(userCtx(6), 2, "sess", 2500)
		assert.NoError(t, err)

		events, err := service.ListMyEvents(userCtx(5))

		assert.NoError(t, err)
		assert.Len(t, events, 1)
		assert.Equal(t, "Community Picnic", events[0].Title)
	})

	t.Run("skips signups whose event was deleted", func(t *testing.T) {
		eventRepo := eventsWith(freeEvent())
		repo := &StubRepository{}
		service := NewService(repo, event.NewService(eventRepo))

		_, err := service.Record(userCtx(5), 1, "", 0)
		assert.NoError(t, err)
		assert.NoError(t, eventRepo.DeleteEvent(context.Background(), 1))

		events, err := service.ListMyEvents(userCtx(5))

		assert.NoError(t, err)
		assert.Empty(t, events)
	})
}
