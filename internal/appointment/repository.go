package appointment

import (
	"context"
	"errors"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	Insert(ctx context.Context, date, timeStr string) (*Appointment, error)
	List(ctx context.Context) ([]Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*Appointment, error)
	Delete(ctx context.Context, id int64) error
}
