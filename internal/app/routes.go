package app

import (
	"github.com/gatherly/gatherly/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Events
	r.HandleFunc("/api/events", deps.EventHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/events", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/events/{eventId}", deps.EventHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/events/{eventId}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/events/{eventId}", deps.EventHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/events/{eventId}/ics", deps.IcsHandler.DownloadEvent).Methods("GET")

	// Signups
	r.HandleFunc("/api/events/{eventId}/signup", deps.SignupHandler.SignupEvent).Methods("POST")
	r.HandleFunc("/api/me/events", deps.SignupHandler.ListMyEvents).Methods("GET")

	// Join flow
	r.HandleFunc("/api/events/{eventId}/checkout", deps.CheckoutHandler.Open).Methods("POST")
	r.HandleFunc("/api/checkout", deps.CheckoutHandler.Current).Methods("GET")
	r.HandleFunc("/api/checkout", deps.CheckoutHandler.Close).Methods("DELETE")
	r.HandleFunc("/api/checkout/checkout", deps.CheckoutHandler.Checkout).Methods("POST")
	r.HandleFunc("/api/checkout/payment", deps.CheckoutHandler.ConfirmPayment).Methods("POST")
	r.HandleFunc("/api/checkout/calendar", deps.CheckoutHandler.AddToCalendar).Methods("POST")
	r.HandleFunc("/api/checkout/connect", deps.CheckoutHandler.ConnectCalendar).Methods("POST")
	r.HandleFunc("/api/checkout/back", deps.CheckoutHandler.Back).Methods("POST")
	r.HandleFunc("/api/checkout/skip", deps.CheckoutHandler.Skip).Methods("POST")
	r.HandleFunc("/api/checkout/resume", deps.CheckoutHandler.Resume).Methods("POST")

	// Payments
	r.HandleFunc("/api/payments/create-intent", deps.PaymentHandler.CreateIntent).Methods("POST")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/{userId}/role", deps.UserHandler.UpdateRole).Methods("PATCH")

	// Google Calendar integration
	r.HandleFunc("/api/auth/google", deps.GoogleHandler.AuthUrl).Methods("GET")
	r.HandleFunc("/api/auth/google/callback", deps.GoogleHandler.Callback).Methods("GET")
	r.HandleFunc("/api/auth/google", deps.GoogleHandler.Logout).Methods("DELETE")
}
