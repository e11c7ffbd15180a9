package appointment

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	redisclient "github.com/notarly/backoffice/internal/redis"
)

type fakeRepo struct {
	appts     []Appointment
	deleteErr error
	listCalls int
}

func (f *fakeRepo) Insert(ctx context.Context, date, timeStr string) (*Appointment, error) {
	a := Appointment{ID: int64(len(f.appts) + 1), Date: date, Time: timeStr, Status: "pending"}
	f.appts = append(f.appts, a)
	return &a, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]Appointment, error) {
	f.listCalls++
	return f.appts, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id int64, status string) (*Appointment, error) {
	for i := range f.appts {
		if f.appts[i].ID == id {
			f.appts[i].Status = status
			return &f.appts[i], nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.appts {
		if f.appts[i].ID == id {
			f.appts = append(f.appts[:i], f.appts[i+1:]...)
			return nil
		}
	}
	return ErrAppointmentNotFound
}

// trackingLocker executes critical sections inline and records whether a lock
// is currently considered held.
type trackingLocker struct {
	held   bool
	refuse bool
}

func (l *trackingLocker) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if l.refuse {
		return redisclient.ErrLockNotAcquired
	}
	l.held = true
	defer func() { l.held = false }()
	return fn(ctx)
}

func (l *trackingLocker) Held(ctx context.Context, name string) (bool, error) {
	return l.held, nil
}

func newTestService(repo *fakeRepo, locker redisclient.Locker) *Service {
	return NewService(repo, locker, zap.NewNop())
}

func TestListSkippedWhileDeleteInFlight(t *testing.T) {
	repo := &fakeRepo{appts: []Appointment{{ID: 1}}}
	locker := &trackingLocker{held: true}
	svc := newTestService(repo, locker)

	appts, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(appts) != 0 {
		t.Errorf("expected empty list while delete in flight, got %d rows", len(appts))
	}
	if repo.listCalls != 0 {
		t.Errorf("list query ran despite in-flight delete")
	}
}

func TestListAfterDelete(t *testing.T) {
	repo := &fakeRepo{appts: []Appointment{{ID: 1}, {ID: 2}}}
	locker := &trackingLocker{}
	svc := newTestService(repo, locker)

	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	appts, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(appts) != 1 || appts[0].ID != 2 {
		t.Errorf("unexpected rows after delete: %v", appts)
	}
}

func TestDeleteUnknownID(t *testing.T) {
	repo := &fakeRepo{appts: []Appointment{{ID: 1}}}
	svc := newTestService(repo, &trackingLocker{})

	err := svc.Delete(context.Background(), 99)
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
	if len(repo.appts) != 1 {
		t.Errorf("failed delete changed the table")
	}
}

func TestUpdateStatusUnknownID(t *testing.T) {
	repo := &fakeRepo{appts: []Appointment{{ID: 1, Status: "pending"}}}
	svc := newTestService(repo, &trackingLocker{})

	_, err := svc.UpdateStatus(context.Background(), 99, "confirmed")
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
	if repo.appts[0].Status != "pending" {
		t.Errorf("failed update changed a row")
	}
}

func TestDeleteWhileAnotherDeleteHoldsLock(t *testing.T) {
	repo := &fakeRepo{appts: []Appointment{{ID: 1}}}
	svc := newTestService(repo, &trackingLocker{refuse: true})

	err := svc.Delete(context.Background(), 1)
	if !errors.Is(err, ErrDeleteInProgress) {
		t.Fatalf("expected ErrDeleteInProgress, got %v", err)
	}
}

func TestLockReleasedAfterFailedDelete(t *testing.T) {
	repo := &fakeRepo{deleteErr: errors.New("connection reset")}
	locker := &trackingLocker{}
	svc := newTestService(repo, locker)

	if err := svc.Delete(context.Background(), 1); err == nil {
		t.Fatal("expected delete error")
	}
	if locker.held {
		t.Fatal("lock still held after failed delete")
	}

	// List must work again once the failed delete has unwound.
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("list after failed delete: %v", err)
	}
	if repo.listCalls != 1 {
		t.Errorf("list query did not run")
	}
}
