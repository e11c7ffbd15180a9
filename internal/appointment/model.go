package appointment

import (
	"time"
)

// Appointment is one confirmed-or-pending booking row. Date and time are kept
// as the free-text strings the admin client submits; status has no enumerated
// domain in the store and defaults to "pending".
type Appointment struct {
	ID        int64     `json:"appointmentId"`
	Date      string    `json:"appointmentDate"`
	Time      string    `json:"appointmentTime"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
