package checkout

import (
	"context"
	"errors"

	evt "github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/google"
	"github.com/gatherly/gatherly/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Resumer completes the calendar detour after the browser returns from the
// Google authorization redirect. It looks up the event recorded before the
// redirect, links it to the freshly connected calendar and clears the
// hand-off.
type Resumer struct {
	events   evt.Finder
	calendar CalendarLinker
	pending  PendingStore
}

func NewResumer(events evt.Finder, calendar CalendarLinker, pending PendingStore) *Resumer {
	return &Resumer{events: events, calendar: calendar, pending: pending}
}

// Resume links the pending event, if any. Returns the linked event, or nil
// when there was nothing pending. A hand-off whose event no longer exists is
// dropped silently.
func (r *Resumer) Resume(ctx context.Context) (*evt.Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	eventId, found, err := r.pending.Get(ctx, userId)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	e, err := r.events.GetEvent(ctx, eventId)
	if errors.Is(err, evt.ErrEventNotFound) {
		log.Warnf("pending calendar event %d no longer exists", eventId)
		return nil, r.pending.Clear(ctx, userId)
	}
	if err != nil {
		return nil, err
	}

	if err := r.calendar.LinkEvent(ctx, e); err != nil {
		// ErrCalendarNotLinked here means authorization was abandoned;
		// keep the hand-off so a later connect can still consume it.
		if errors.Is(err, google.ErrCalendarNotLinked) {
			return nil, err
		}
		log.Error(err)
		return nil, err
	}
	if err := r.pending.Clear(ctx, userId); err != nil {
		return nil, err
	}
	return &e, nil
}
