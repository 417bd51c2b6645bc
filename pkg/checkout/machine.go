package checkout

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/google"
	"github.com/gatherly/gatherly/pkg/payment"
	"github.com/gatherly/gatherly/pkg/signup"
	"github.com/gatherly/gatherly/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Capabilities are the external effects a Machine can trigger. Every field is
// a narrow interface so tests can substitute stubs per concern.
type Capabilities struct {
	Payments payment.IntentCreator
	Cards    payment.CardConfirmer
	Signups  signup.Recorder
	Calendar CalendarLinker
	AuthURL  AuthURLProvider
	Pending  PendingStore
	Notifier Notifier
}

// Machine drives one user's join flow for one event. All state transitions
// happen under the machine's lock; external calls (payment provider, signup
// store, calendar API) run outside it, and their results are applied only if
// the session has not been reset in the meantime.
type Machine struct {
	event      event.Event
	caps       Capabilities
	reference  string
	returnUrl  string
	resetDelay time.Duration
	onJoined   func(paid bool)

	mu          sync.Mutex
	session     Session
	generation  uint64
	amountCents int64
	completed   bool
	paidJoin    bool
	resetTimer  *time.Timer
	lastTouched time.Time
}

// NewMachine returns an open session positioned at the initial step.
// The reference identifies this session in signup records so that a retried
// completion stays idempotent. onJoined fires exactly once when the flow
// finishes with a recorded signup; it may be nil.
func NewMachine(e event.Event, caps Capabilities, reference string, returnUrl string, resetDelay time.Duration, onJoined func(paid bool)) *Machine {
	if caps.Notifier == nil {
		caps.Notifier = LogNotifier{}
	}
	return &Machine{
		event:      e,
		caps:       caps,
		reference:  reference,
		returnUrl:  returnUrl,
		resetDelay: resetDelay,
		onJoined:   onJoined,
		session: Session{
			EventId: e.Id,
			Step:    StepInitial,
			Open:    true,
		},
		lastTouched: time.Now(),
	}
}

// Snapshot returns a copy of the current session state.
func (m *Machine) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// LastTouched reports when the session last handled an operation.
func (m *Machine) LastTouched() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTouched
}

// begin marks the session as loading and returns the current generation.
// A session that is closed or already mid-operation rejects the call.
func (m *Machine) begin() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.session.Open {
		return 0, ErrClosed
	}
	if m.session.Loading {
		return 0, ErrBusy
	}
	m.session.Loading = true
	m.session.Notice = nil
	m.lastTouched = time.Now()
	return m.generation, nil
}

// finish clears the loading flag and applies the outcome of an operation,
// unless the session was reset while the operation was in flight.
func (m *Machine) finish(generation uint64, apply func(s *Session)) {
	fire := false
	m.mu.Lock()
	if generation != m.generation {
		m.mu.Unlock()
		return
	}
	m.session.Loading = false
	if apply != nil {
		apply(&m.session)
	}
	if m.session.Notice != nil {
		m.caps.Notifier.Notify(*m.session.Notice)
	}
	if !m.session.Open {
		fire = m.markCompletedLocked()
		m.scheduleResetLocked()
	}
	m.mu.Unlock()
	if fire && m.onJoined != nil {
		m.onJoined(m.paidJoin)
	}
}

// Checkout starts the join. Free events record the signup immediately; paid
// events create a payment intent and advance to the payment step. Only a
// session at the initial step can start; a repeat call after the flow has
// advanced would mint a second payment intent.
func (m *Machine) Checkout(ctx context.Context, customAmount string) error {
	m.mu.Lock()
	step := m.session.Step
	m.mu.Unlock()
	if step != StepInitial {
		return ErrInvalidStep
	}

	generation, err := m.begin()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.session.CustomAmount = customAmount
	m.mu.Unlock()

	if _, err := user.CurrentId(ctx); err != nil {
		m.finish(generation, noticeError("Please sign in to join this event."))
		return nil
	}

	if !m.event.IsPaid {
		_, err := m.caps.Signups.Record(ctx, m.event.Id, m.reference, 0)
		if err != nil {
			log.Error(err)
			m.finish(generation, noticeError("Could not complete your signup. Please try again."))
			return nil
		}
		m.finish(generation, func(s *Session) {
			s.Step = StepSuccess
			s.Notice = &Notice{Kind: NoticeSuccess, Message: "You have joined the event!"}
		})
		return nil
	}

	cents, err := m.amountFor(customAmount)
	if err != nil {
		m.finish(generation, noticeError(err.Error()))
		return nil
	}
	secret, err := m.caps.Payments.CreateIntent(ctx, m.event.Id, cents, m.event.Currency)
	if err != nil {
		log.Error(err)
		m.finish(generation, noticeError("Could not start the payment. Please try again."))
		return nil
	}
	m.finish(generation, func(s *Session) {
		s.Step = StepPayment
		s.ClientSecret = secret
		m.amountCents = cents
	})
	return nil
}

// amountFor resolves the charge in minor units. Pay-what-you-feel events take
// the attendee's amount; fixed price events take the event's price.
func (m *Machine) amountFor(customAmount string) (int64, error) {
	if m.event.PayWhatYouFeel {
		amount, err := strconv.ParseFloat(customAmount, 64)
		if err != nil || amount <= 0 {
			return 0, errors.New("Please enter a valid amount.")
		}
		return int64(math.Round(amount * 100)), nil
	}
	if m.event.Price == nil || *m.event.Price <= 0 {
		return 0, errors.New("This event has no valid price.")
	}
	return int64(math.Round(*m.event.Price * 100)), nil
}

// ConfirmPayment confirms the pending intent and records the signup. A
// confirmation that succeeds but fails to record leaves the session in the
// payment step; retrying reconfirms the already captured intent, which the
// provider treats as a no-op, and records the signup idempotently.
func (m *Machine) ConfirmPayment(ctx context.Context, paymentMethodId string) error {
	m.mu.Lock()
	secret := m.session.ClientSecret
	step := m.session.Step
	cents := m.amountCents
	m.mu.Unlock()
	if step != StepPayment || secret == "" {
		return ErrInvalidStep
	}

	generation, err := m.begin()
	if err != nil {
		return err
	}
	if err := m.caps.Cards.ConfirmCardPayment(ctx, secret, paymentMethodId); err != nil {
		message := "Payment failed. Please try again."
		var providerErr *payment.ProviderError
		if errors.As(err, &providerErr) && providerErr.Message != "" {
			message = providerErr.Message
		} else {
			log.Error(err)
		}
		m.finish(generation, noticeError(message))
		return nil
	}

	if _, err := m.caps.Signups.Record(ctx, m.event.Id, m.reference, cents); err != nil {
		log.Error(err)
		m.finish(generation, noticeError("Payment received, but we could not record your signup. Please try again."))
		return nil
	}
	m.finish(generation, func(s *Session) {
		s.Step = StepSuccess
		s.ClientSecret = ""
		s.Notice = &Notice{Kind: NoticeSuccess, Message: "Payment successful! You have joined the event."}
		m.paidJoin = true
	})
	return nil
}

// AddToCalendar pushes the event to the user's calendar. When no calendar is
// linked yet the session advances to the connect step instead of failing.
func (m *Machine) AddToCalendar(ctx context.Context) error {
	m.mu.Lock()
	step := m.session.Step
	m.mu.Unlock()
	if step != StepSuccess {
		return ErrInvalidStep
	}

	generation, err := m.begin()
	if err != nil {
		return err
	}
	err = m.caps.Calendar.LinkEvent(ctx, m.event)
	if errors.Is(err, google.ErrCalendarNotLinked) {
		m.finish(generation, func(s *Session) {
			s.Step = StepConnect
			s.CalendarError = "Your Google Calendar is not connected yet."
		})
		return nil
	}
	if err != nil {
		log.Error(err)
		m.finish(generation, noticeError("Could not add the event to your calendar. Please try again."))
		return nil
	}
	m.finish(generation, func(s *Session) {
		s.Notice = &Notice{Kind: NoticeSuccess, Message: "Event added to your calendar!"}
		s.Open = false
	})
	return nil
}

// ConnectCalendar stores the event as pending, closes the session and returns
// the authorization URL the browser should navigate to. The pending record is
// consumed after the redirect returns.
func (m *Machine) ConnectCalendar(ctx context.Context) (string, error) {
	m.mu.Lock()
	step := m.session.Step
	m.mu.Unlock()
	if step != StepConnect {
		return "", ErrInvalidStep
	}

	userId, err := user.CurrentId(ctx)
	if err != nil {
		return "", err
	}
	generation, err := m.begin()
	if err != nil {
		return "", err
	}
	if err := m.caps.Pending.Set(ctx, userId, m.event.Id); err != nil {
		log.Error(err)
		m.finish(generation, noticeError("Could not prepare the calendar connection. Please try again."))
		return "", nil
	}
	url, err := m.caps.AuthURL.AuthURL(ctx, m.returnUrl)
	if err != nil {
		log.Error(err)
		m.finish(generation, noticeError("Could not prepare the calendar connection. Please try again."))
		return "", nil
	}
	m.finish(generation, func(s *Session) {
		s.Open = false
	})
	return url, nil
}

// Back returns from the connect step to the success step.
func (m *Machine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.Step != StepConnect {
		return ErrInvalidStep
	}
	m.session.Step = StepSuccess
	m.session.CalendarError = ""
	m.lastTouched = time.Now()
	return nil
}

// Skip finishes the flow without the calendar detour.
func (m *Machine) Skip() error {
	m.mu.Lock()
	if m.session.Step != StepSuccess && m.session.Step != StepConnect {
		m.mu.Unlock()
		return ErrInvalidStep
	}
	m.session.Open = false
	m.lastTouched = time.Now()
	fire := m.markCompletedLocked()
	m.scheduleResetLocked()
	m.mu.Unlock()
	if fire && m.onJoined != nil {
		m.onJoined(m.paidJoin)
	}
	return nil
}

// SetOpen opens or closes the dialog. Closing schedules a deferred reset so a
// quick reopen keeps the current step; reopening cancels the pending reset.
func (m *Machine) SetOpen(open bool) {
	fire := false
	m.mu.Lock()
	m.lastTouched = time.Now()
	if open {
		if m.resetTimer != nil {
			m.resetTimer.Stop()
			m.resetTimer = nil
		}
		m.session.Open = true
	} else {
		m.session.Open = false
		if m.session.Step == StepSuccess || m.session.Step == StepConnect {
			fire = m.markCompletedLocked()
		}
		m.scheduleResetLocked()
	}
	m.mu.Unlock()
	if fire && m.onJoined != nil {
		m.onJoined(m.paidJoin)
	}
}

// markCompletedLocked flips the completion latch. Returns true only on the
// first call for a session that reached the success step.
func (m *Machine) markCompletedLocked() bool {
	if m.completed {
		return false
	}
	if m.session.Step != StepSuccess && m.session.Step != StepConnect {
		return false
	}
	m.completed = true
	return true
}

func (m *Machine) scheduleResetLocked() {
	if m.resetTimer != nil {
		m.resetTimer.Stop()
	}
	generation := m.generation
	m.resetTimer = time.AfterFunc(m.resetDelay, func() {
		m.reset(generation)
	})
}

// reset restores the session to the initial step. In-flight operations that
// started before the reset find a bumped generation and discard their result.
func (m *Machine) reset(generation uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation || m.session.Open {
		return
	}
	m.generation++
	m.amountCents = 0
	m.completed = false
	m.paidJoin = false
	m.resetTimer = nil
	m.session = Session{
		EventId: m.event.Id,
		Step:    StepInitial,
	}
}

func noticeError(message string) func(s *Session) {
	return func(s *Session) {
		s.Notice = &Notice{Kind: NoticeError, Message: message}
	}
}
