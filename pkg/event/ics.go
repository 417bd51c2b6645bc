package event

import (
	"fmt"
	"net/http"
	"strconv"

	ical "github.com/arran4/golang-ical"
	"github.com/gatherly/gatherly/internal/rest"
	"github.com/gorilla/mux"
)

// IcsHandler serves an event as a downloadable iCalendar file, for attendees
// who do not use the Google Calendar integration.
type IcsHandler struct {
	events Finder
}

func NewIcsHandler(events Finder) *IcsHandler {
	return &IcsHandler{events: events}
}

func (h *IcsHandler) DownloadEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["eventId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	event, err := h.events.GetEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"event-%d.ics\"", event.Id))
	fmt.Fprint(w, RenderIcs(event))
}

// RenderIcs serializes an event as a single-VEVENT iCalendar document.
func RenderIcs(event Event) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//Gatherly//Events//EN")

	icsEvent := cal.AddEvent(fmt.Sprintf("event-%d@gatherly", event.Id))
	icsEvent.SetSummary(event.Title)
	icsEvent.SetLocation(event.Location)
	icsEvent.SetStartAt(event.StartTime.UTC())
	icsEvent.SetEndAt(event.EndTime.UTC())
	if event.Description != "" {
		icsEvent.SetDescription(event.Description)
	}

	return cal.Serialize()
}
