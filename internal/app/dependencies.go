package app

import (
	"database/sql"
	"time"

	"github.com/gatherly/gatherly/internal/auth"
	"github.com/gatherly/gatherly/internal/config"
	"github.com/gatherly/gatherly/internal/event_bus"
	"github.com/gatherly/gatherly/pkg/checkout"
	"github.com/gatherly/gatherly/pkg/event"
	"github.com/gatherly/gatherly/pkg/google"
	"github.com/gatherly/gatherly/pkg/payment"
	"github.com/gatherly/gatherly/pkg/signup"
	"github.com/gatherly/gatherly/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	AuthTokenValidator *auth.TokenValidator

	EventBus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	EventRepo    event.Repository
	EventService event.Service
	EventHandler *event.Handler
	IcsHandler   *event.IcsHandler

	SignupService signup.Service
	SignupHandler *signup.Handler

	StripeClient   *payment.StripeClient
	PaymentService payment.Service
	PaymentHandler *payment.Handler

	GoogleAuth      *google.Auth
	CalendarService *google.CalendarService
	GoogleHandler   *google.Handler

	PendingRepo     *checkout.PendingRepository
	CheckoutService *checkout.ServiceImpl
	Resumer         *checkout.Resumer
	CheckoutHandler *checkout.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.AuthTokenValidator = auth.NewTokenValidator(cfg.Auth)
	deps.EventBus = event_bus.NewEventBus()

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.EventRepo = event.NewRepository(db)
	deps.EventService = event.NewService(deps.EventRepo)
	deps.EventHandler = event.NewHandler(deps.EventService)
	deps.IcsHandler = event.NewIcsHandler(deps.EventService)

	deps.SignupService = signup.NewService(signup.NewRepository(db), deps.EventService)
	deps.SignupHandler = signup.NewHandler(deps.SignupService)

	deps.StripeClient = payment.NewStripeClient(cfg.Stripe)
	deps.PaymentService = payment.NewService(deps.StripeClient, payment.NewRepository(db), deps.EventService)
	deps.PaymentHandler = payment.NewHandler(deps.PaymentService)

	deps.GoogleAuth = google.NewAuth(db, cfg)
	deps.CalendarService = google.NewCalendarService(deps.GoogleAuth)
	deps.GoogleHandler = google.NewHandler(deps.GoogleAuth)

	deps.PendingRepo = checkout.NewPendingRepository(db)
	deps.CheckoutService = checkout.NewService(
		deps.EventService,
		checkout.Capabilities{
			Payments: deps.PaymentService,
			Cards:    deps.PaymentService,
			Signups:  deps.SignupService,
			Calendar: deps.CalendarService,
			AuthURL:  deps.GoogleAuth,
			Pending:  deps.PendingRepo,
		},
		deps.EventBus,
		cfg.Host+"/google-success",
		time.Duration(cfg.Checkout.ResetDelaySeconds)*time.Second,
	)
	deps.Resumer = checkout.NewResumer(deps.EventService, deps.CalendarService, deps.PendingRepo)
	deps.CheckoutHandler = checkout.NewHandler(deps.CheckoutService, deps.Resumer)

	// Keep the denormalized attendee count on event rows in sync with
	// completed joins.
	deps.EventBus.Subscribe(event_bus.MemberJoinedEvent, func(e event_bus.Event) error {
		joined, ok := e.Data.(event_bus.MemberJoined)
		if !ok {
			return nil
		}
		return deps.EventService.RefreshAttendeeCount(e.Context(), joined.EventId)
	})

	return deps
}
