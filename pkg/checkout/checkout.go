package checkout

import (
	"context"
	"errors"

	"github.com/gatherly/gatherly/pkg/event"
	log "github.com/sirupsen/logrus"
)

// Step is the current position of a join flow session.
type Step string

const (
	// StepInitial shows the event price or contribution mode and offers checkout.
	StepInitial Step = "initial"
	// StepPayment collects and confirms card details.
	StepPayment Step = "payment"
	// StepSuccess offers the calendar detour or finishing the flow.
	StepSuccess Step = "success"
	// StepConnect offers linking a Google Calendar account after a failed
	// calendar sync.
	StepConnect Step = "connect"
)

var (
	ErrNoSession   = errors.New("no active checkout session")
	ErrBusy        = errors.New("another operation is already in progress")
	ErrClosed      = errors.New("checkout session is closed")
	ErrInvalidStep = errors.New("operation not available in the current step")
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a user-visible message, the equivalent of a toast in the browser.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Session is a snapshot of one join flow instance. It is owned exclusively by
// its Machine and reset to the zero step shortly after the dialog closes.
type Session struct {
	EventId       int
	Step          Step
	CustomAmount  string
	ClientSecret  string
	CalendarError string
	Loading       bool
	Open          bool
	Notice        *Notice
}

// CalendarLinker adds an event to the current user's external calendar.
type CalendarLinker interface {
	LinkEvent(ctx context.Context, e event.Event) error
}

// AuthURLProvider issues the external authorization URL for linking a
// calendar account.
type AuthURLProvider interface {
	AuthURL(ctx context.Context, finalUrl string) (string, error)
}

// PendingStore is the durable hand-off between the connect step and the page
// that resumes the flow after the external redirect returns. One pending
// event per user; cleared on consumption.
type PendingStore interface {
	Set(ctx context.Context, userId int, eventId int) error
	Get(ctx context.Context, userId int) (int, bool, error)
	Clear(ctx context.Context, userId int) error
}

// Notifier receives user-visible notices as they happen. The machine also
// records the latest notice on the session snapshot.
type Notifier interface {
	Notify(notice Notice)
}

// LogNotifier is the default Notifier; it just logs.
type LogNotifier struct{}

func (LogNotifier) Notify(notice Notice) {
	if notice.Kind == NoticeError {
		log.Debugf("checkout notice: %s", notice.Message)
		return
	}
	log.Tracef("checkout notice: %s", notice.Message)
}
