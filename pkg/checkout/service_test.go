package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/gatherly/gatherly/internal/event_bus"
	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	service *ServiceImpl
	events  *event.StubRepository
	signups *stubRecorder
	bus     *event_bus.EventBus
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	price := 25.0
	repo := &event.StubRepository{Events: []event.Event{
		{Id: 1, Title: "Community Picnic", Currency: "usd"},
		{Id: 2, Title: "Go Workshop", IsPaid: true, Price: &price, Currency: "usd"},
	}}
	signups := &stubRecorder{}
	caps := Capabilities{
		Payments: &payment.StubProvider{NextSecret: "pi_1_secret_x"},
		Cards:    &payment.StubProvider{},
		Signups:  signups,
		Calendar: &StubCalendarLinker{},
		AuthURL:  &StubAuthURL{Url: "https://accounts.example.com/auth"},
		Pending:  &StubPendingStore{},
	}
	bus := event_bus.NewEventBus()
	service := NewService(event.NewService(repo), caps, bus, "http://localhost:8181/google-success", time.Minute)
	return &serviceFixture{service: service, events: repo, signups: signups, bus: bus}
}

func TestServiceSessions(t *testing.T) {
	t.Run("open creates a session at the initial step", func(t *testing.T) {
		f := newServiceFixture(t)

		session, err := f.service.Open(signedIn(), 1)

		require.NoError(t, err)
		assert.Equal(t, 1, session.EventId)
		assert.Equal(t, StepInitial, session.Step)
		assert.True(t, session.Open)
	})

	t.Run("open for an unknown event fails", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.Open(signedIn(), 99)

		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})

	t.Run("reopening the same event keeps the session", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.service.Open(signedIn(), 1)
		require.NoError(t, err)
		_, err = f.service.Checkout(signedIn(), "")
		require.NoError(t, err)

		session, err := f.service.Open(signedIn(), 1)

		require.NoError(t, err)
		assert.Equal(t, StepSuccess, session.Step)
	})

	t.Run("opening another event replaces the session", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.service.Open(signedIn(), 1)
		require.NoError(t, err)

		session, err := f.service.Open(signedIn(), 2)

		require.NoError(t, err)
		assert.Equal(t, 2, session.EventId)
		assert.Equal(t, StepInitial, session.Step)
	})

	t.Run("operations without a session are rejected", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.Checkout(signedIn(), "")

		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("anonymous access is rejected", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.Open(context.Background(), 1)

		assert.Error(t, err)
	})
}

func TestServicePublishesMemberJoined(t *testing.T) {
	f := newServiceFixture(t)
	var received []event_bus.MemberJoined
	f.bus.Subscribe(event_bus.MemberJoinedEvent, func(e event_bus.Event) error {
		received = append(received, e.Data.(event_bus.MemberJoined))
		return nil
	})

	_, err := f.service.Open(signedIn(), 1)
	require.NoError(t, err)
	_, err = f.service.Checkout(signedIn(), "")
	require.NoError(t, err)
	_, err = f.service.Skip(signedIn())
	require.NoError(t, err)

	require.Len(t, received, 1)
	assert.Equal(t, 1, received[0].EventId)
	assert.Equal(t, 123, received[0].UserId)
	assert.False(t, received[0].Paid)

	// closing again must not publish a second join
	require.NoError(t, f.service.Close(signedIn()))
	assert.Len(t, received, 1)
}

func TestServiceSweep(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.Open(signedIn(), 1)
	require.NoError(t, err)

	assert.Equal(t, 0, f.service.Sweep(time.Minute))
	assert.Equal(t, 1, f.service.Sweep(0))

	_, err = f.service.Current(signedIn())
	assert.ErrorIs(t, err, ErrNoSession)
}
