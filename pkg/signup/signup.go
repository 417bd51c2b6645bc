package signup

import "time"

// Signup records one user's confirmed attendance of one event. The pair
// (event, user) is unique: recording the same signup again returns the
// existing row, which makes recording safe to retry after a payment.
type Signup struct {
	Id      int
	EventId int
	UserId  int
	// Reference is an idempotency reference supplied by the caller, for paid
	// signups the checkout session id.
	Reference   string
	AmountCents int64
	CreatedAt   time.Time
}
