package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/google"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResumerFixture(events []event.Event) (*Resumer, *StubCalendarLinker, *StubPendingStore) {
	calendar := &StubCalendarLinker{}
	pending := &StubPendingStore{}
	repo := &event.StubRepository{Events: events}
	return NewResumer(event.NewService(repo), calendar, pending), calendar, pending
}

func TestResumer(t *testing.T) {
	picnic := event.Event{Id: 7, Title: "Community Picnic", Currency: "usd"}

	t.Run("links the pending event and clears the hand-off", func(t *testing.T) {
		resumer, calendar, pending := newResumerFixture([]event.Event{picnic})
		require.NoError(t, pending.Set(context.Background(), 123, 7))

		linked, err := resumer.Resume(signedIn())

		require.NoError(t, err)
		require.NotNil(t, linked)
		assert.Equal(t, "Community Picnic", linked.Title)
		require.Len(t, calendar.Linked, 1)
		_, found, _ := pending.Get(context.Background(), 123)
		assert.False(t, found)
	})

	t.Run("nothing pending is a no-op", func(t *testing.T) {
		resumer, calendar, _ := newResumerFixture([]event.Event{picnic})

		linked, err := resumer.Resume(signedIn())

		require.NoError(t, err)
		assert.Nil(t, linked)
		assert.Empty(t, calendar.Linked)
	})

	t.Run("deleted event drops the hand-off", func(t *testing.T) {
		resumer, calendar, pending := newResumerFixture(nil)
		require.NoError(t, pending.Set(context.Background(), 123, 42))

		linked, err := resumer.Resume(signedIn())

		require.NoError(t, err)
		assert.Nil(t, linked)
		assert.Empty(t, calendar.Linked)
		_, found, _ := pending.Get(context.Background(), 123)
		assert.False(t, found)
	})

	t.Run("still unlinked calendar keeps the hand-off for a retry", func(t *testing.T) {
		resumer, calendar, pending := newResumerFixture([]event.Event{picnic})
		require.NoError(t, pending.Set(context.Background(), 123, 7))
		calendar.Err = google.ErrCalendarNotLinked

		_, err := resumer.Resume(signedIn())

		assert.ErrorIs(t, err, google.ErrCalendarNotLinked)
		_, found, _ := pending.Get(context.Background(), 123)
		assert.True(t, found)
	})

	t.Run("anonymous user is rejected", func(t *testing.T) {
		resumer, _, _ := newResumerFixture([]event.Event{picnic})

		_, err := resumer.Resume(context.Background())

		assert.Error(t, err)
	})

	t.Run("calendar API failure is returned", func(t *testing.T) {
		resumer, calendar, pending := newResumerFixture([]event.Event{picnic})
		require.NoError(t, pending.Set(context.Background(), 123, 7))
		calendar.Err = errors.New("calendar unavailable")

		_, err := resumer.Resume(signedIn())

		assert.Error(t, err)
	})
}
