package api

// Request payloads use the field names the admin front-end already sends.

type AddAppointmentRequest struct {
	AppointmentTime string `json:"appointmentTime"`
	AppointmentDate string `json:"appointmentDate"`
}

type UpdateAppointmentRequest struct {
	Status string `json:"status"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type BusinessHourRequest struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

type BlockedDatesRequest struct {
	BlockedDates []string `json:"blockedDates"`
}

type BlockedTimeRequest struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Buffer string `json:"buffer"`
}

type PendingAppointmentRequest struct {
	Name          string `json:"name"`
	Appointment   string `json:"appointment"`
	AppointmentID string `json:"appointmentId"`
}

type RemovePendingRequest struct {
	AppointmentID string `json:"appointmentId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
