package event

import "time"

type Event struct {
	Id          int
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	IsPaid      bool
	// Price is the fixed amount in major currency units. Nil for free events
	// and for pay-what-you-feel events, where the attendee chooses the amount.
	Price          *float64
	Currency       string
	PayWhatYouFeel bool
	CreatedBy      int
	Attendees      int
}

// Filter narrows the event listing. The zero value matches everything.
type Filter struct {
	Query    string
	OnlyFree bool
	OnlyPaid bool
}
