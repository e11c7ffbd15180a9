package appointment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	redisclient "github.com/notarly/backoffice/internal/redis"
)

// deleteLock names the resource held while a delete is in flight. Earlier
// revisions of this service guarded the delete/list pair with a process-wide
// boolean; the shared lock keeps the same observable contract (list returns
// nothing while a delete runs) but holds across processes and cannot stay
// wedged past its TTL.
const deleteLock = "appointments:delete"

var (
	ErrDeleteInProgress = errors.New("another delete is in progress, retry shortly")
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	log    *zap.Logger
}

func NewService(repo Repository, locker redisclient.Locker, log *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		log:    log,
	}
}

func (s *Service) Create(ctx context.Context, date, timeStr string) (*Appointment, error) {
	appt, err := s.repo.Insert(ctx, date, timeStr)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	s.log.Info("appointment added",
		zap.Int64("id", appt.ID),
		zap.String("date", appt.Date),
		zap.String("time", appt.Time),
	)

	return appt, nil
}

// List returns all appointment rows. While a delete holds the lock the query
// is skipped entirely and an empty list is returned; the caller is expected to
// refetch.
func (s *Service) List(ctx context.Context) ([]Appointment, error) {
	held, err := s.locker.Held(ctx, deleteLock)
	if err != nil {
		return nil, fmt.Errorf("check delete lock: %w", err)
	}
	if held {
		s.log.Debug("list skipped, delete in flight")
		return []Appointment{}, nil
	}

	appts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return appts, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*Appointment, error) {
	appt, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	return appt, nil
}

// Delete removes the row under the delete lock. The lock is released on every
// exit path, including a failed delete.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.locker.WithLock(ctx, deleteLock, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return ErrDeleteInProgress
		}
		if errors.Is(err, ErrAppointmentNotFound) {
			return err
		}
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.log.Info("appointment deleted", zap.Int64("id", id))
	return nil
}
