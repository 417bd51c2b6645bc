package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/user"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// CalendarService inserts joined events into the user's primary Google
// Calendar.
type CalendarService struct {
	auth *Auth
}

func NewCalendarService(auth *Auth) *CalendarService {
	return &CalendarService{auth: auth}
}

func (s *CalendarService) LinkEvent(ctx context.Context, e event.Event) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	client, err := s.auth.getClient(ctx, userId)
	if err != nil {
		return err
	}
	if client == nil {
		log.Debugf("user %d has no linked calendar account", userId)
		return ErrCalendarNotLinked
	}

	service, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to create Google Calendar service: %w", err)
		log.Error(err)
		return err
	}

	_, err = service.Events.Insert("primary", &gcal.Event{
		Summary:     e.Title,
		Location:    e.Location,
		Description: e.Description,
		Start: &gcal.EventDateTime{
			DateTime: e.StartTime.Format(time.RFC3339),
		},
		End: &gcal.EventDateTime{
			DateTime: e.EndTime.Format(time.RFC3339),
		},
	}).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
			// Token revoked or expired without refresh: treat as not linked so
			// the user is sent back through the consent flow.
			log.Debugf("calendar token for user %d no longer valid: %v", userId, apiErr)
			return ErrCalendarNotLinked
		}
		err := fmt.Errorf("unable to insert event in Google Calendar: %w", err)
		log.Error(err)
		return err
	}

	log.Debugf("linked event %d to calendar of user %d", e.Id, userId)
	return nil
}
