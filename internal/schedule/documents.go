package schedule

// The four config documents live as whole JSON files in the document store.
// They are pre-seeded, read in full on every query, and rewritten in full on
// every mutation. Field names and shapes match what the admin front-end
// already consumes, so none of them follow Go naming conventions.

// DayHours maps one day name to its ordered list of bookable time strings.
// Each element of a BusinessHoursDocument holds exactly one day.
type DayHours map[string][]string

// BusinessHoursDocument is an ordered sequence of single-day objects, e.g.
// [{"Monday":["9:00","10:00"]},{"Tuesday":["9:00"]}]. A day name appears in at
// most one element.
type BusinessHoursDocument []DayHours

// BlockedDates holds the set of fully blocked-out dates. Represented as a
// sequence, so duplicates are possible; adds do not deduplicate and removes
// strip every matching entry.
type BlockedDates struct {
	Blocked []string `json:"Blocked"`
}

// BlockedDatesDocument is a single-element sequence wrapping BlockedDates.
type BlockedDatesDocument []BlockedDates

// TimeSlot is one blocked time on a given date, with a padding buffer around
// it. Deletion matches structurally on all three fields.
type TimeSlot struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Buffer string `json:"buffer"`
}

// BlockedTimeSlotDocument is an unordered sequence of blocked slots.
type BlockedTimeSlotDocument []TimeSlot

// PendingRequest is a customer-submitted appointment request awaiting admin
// confirmation. AppointmentID is caller-supplied and unique within the queue;
// uniqueness is enforced on enqueue.
type PendingRequest struct {
	Name          string `json:"name"`
	Appointment   string `json:"appointment"`
	AppointmentID string `json:"appointmentId"`
}

// PendingAppointmentsDocument is the queue of pending requests.
type PendingAppointmentsDocument []PendingRequest
