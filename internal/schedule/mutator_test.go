package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/notarly/backoffice/internal/docstore"
	redisclient "github.com/notarly/backoffice/internal/redis"
)

const testBucket = "config"

var testKeys = Keys{
	BusinessHours: "businessHours.json",
	BlockedDates:  "blockedDates.json",
	BlockedTimes:  "blockedTimes.json",
	Pending:       "pendingAppointments.json",
}

// passLocker runs the critical section inline; lock behavior itself is
// covered by the redis package and the service tests.
type passLocker struct{}

func (passLocker) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passLocker) Held(ctx context.Context, name string) (bool, error) { return false, nil }

// lockDenied refuses every acquisition.
type lockDenied struct{}

func (lockDenied) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

func (lockDenied) Held(ctx context.Context, name string) (bool, error) { return true, nil }

// stalePutStore delegates reads but fails every write as if another writer
// got there first.
type stalePutStore struct {
	docstore.Store
}

func (s stalePutStore) Put(ctx context.Context, bucket, key string, data []byte, ifVersion string) (string, error) {
	return "", fmt.Errorf("put %s/%s: %w", bucket, key, docstore.ErrVersionMismatch)
}

func seedDoc(t *testing.T, store docstore.Store, key string, doc any) {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal seed doc: %v", err)
	}
	if _, err := store.Put(context.Background(), testBucket, key, data, ""); err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
}

func rawDoc(t *testing.T, store docstore.Store, key string) string {
	t.Helper()
	data, _, err := store.Fetch(context.Background(), testBucket, key)
	if err != nil {
		t.Fatalf("fetch %s: %v", key, err)
	}
	return string(data)
}

func newTestMutator(t *testing.T) (*Mutator, docstore.Store) {
	t.Helper()
	store := docstore.NewFSStore(t.TempDir())
	m := NewMutator(store, passLocker{}, testBucket, testKeys, zap.NewNop())
	return m, store
}

func TestAppendAndRemoveBusinessHour(t *testing.T) {
	m, _ := newTestMutator(t)
	ctx := context.Background()

	seedDoc(t, m.store, testKeys.BusinessHours, BusinessHoursDocument{{"Monday": {"9:00"}}})

	doc, err := m.AppendBusinessHour(ctx, "Monday", "10:00")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	want := BusinessHoursDocument{{"Monday": {"9:00", "10:00"}}}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("after append: got %v, want %v", doc, want)
	}

	doc, err = m.RemoveBusinessHour(ctx, "Monday", "9:00")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	want = BusinessHoursDocument{{"Monday": {"10:00"}}}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("after remove: got %v, want %v", doc, want)
	}
}

func TestBusinessHourRoundTripRestoresDocument(t *testing.T) {
	m, store := newTestMutator(t)
	ctx := context.Background()

	seedDoc(t, store, testKeys.BusinessHours, BusinessHoursDocument{
		{"Monday": {"9:00", "10:00"}},
		{"Tuesday": {"13:00"}},
	})
	before := rawDoc(t, store, testKeys.BusinessHours)

	if _, err := m.AppendBusinessHour(ctx, "Tuesday", "14:00"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := m.RemoveBusinessHour(ctx, "Tuesday", "14:00"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	after := rawDoc(t, store, testKeys.BusinessHours)
	if before != after {
		t.Errorf("round trip changed document:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestBusinessHourUnknownDay(t *testing.T) {
	m, store := newTestMutator(t)
	ctx := context.Background()

	seedDoc(t, store, testKeys.BusinessHours, BusinessHoursDocument{{"Monday": {"9:00"}}})
	before := rawDoc(t, store, testKeys.BusinessHours)

	if _, err := m.AppendBusinessHour(ctx, "Funday", "10:00"); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("append unknown day: expected ErrDayNotFound, got %v", err)
	}
	if _, err := m.RemoveBusinessHour(ctx, "Funday", "9:00"); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("remove unknown day: expected ErrDayNotFound, got %v", err)
	}

	if after := rawDoc(t, store, testKeys.BusinessHours); after != before {
		t.Errorf("rejected edit still wrote the document: %s", after)
	}
}

func TestRemoveBusinessHourKeepsShapeWhenEmpty(t *testing.T) {
	m, store := newTestMutator(t)

	seedDoc(t, store, testKeys.BusinessHours, BusinessHoursDocument{{"Monday": {"9:00"}}})

	if _, err := m.RemoveBusinessHour(context.Background(), "Monday", "9:00"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if got := rawDoc(t, store, testKeys.BusinessHours); got != `[{"Monday":[]}]` {
		t.Errorf("emptied day lost its shape: %s", got)
	}
}

func TestBlockedDatesAddRemoveRoundTrip(t *testing.T) {
	m, store := newTestMutator(t)
	ctx := context.Background()

	seedDoc(t, store, testKeys.BlockedDates, BlockedDatesDocument{{Blocked: []string{"2024-03-01"}}})
	before := rawDoc(t, store, testKeys.BlockedDates)

	added := []string{"2024-05-05", "2024-06-06"}
	if _, err := m.AddBlockedDates(ctx, added); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := m.RemoveBlockedDates(ctx, added); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if after := rawDoc(t, store, testKeys.BlockedDates); after != before {
		t.Errorf("round trip changed blocked set:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestRemoveBlockedDatesNonPresentIsNoop(t *testing.T) {
	m, store := newTestMutator(t)

	seedDoc(t, store, testKeys.BlockedDates, BlockedDatesDocument{{Blocked: []string{"2024-01-01"}}})

	doc, err := m.RemoveBlockedDates(context.Background(), []string{"2024-01-01", "2024-02-02"})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(doc) != 1 || len(doc[0].Blocked) != 0 {
		t.Errorf("got %v, want single element with empty Blocked set", doc)
	}

	// The emptied set must still serialize as [] inside the singleton.
	if got := rawDoc(t, store, testKeys.BlockedDates); got != `[{"Blocked":[]}]` {
		t.Errorf("stored document lost its shape: %s", got)
	}
}

func TestAddBlockedDatesKeepsDuplicates(t *testing.T) {
	m, store := newTestMutator(t)
	ctx := context.Background()

	seedDoc(t, store, testKeys.BlockedDates, BlockedDatesDocument{{Blocked: []string{}}})

	if _, err := m.AddBlockedDates(ctx, []string{"2024-07-04"}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	doc, err := m.AddBlockedDates(ctx, []string{"2024-07-04"})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if got := len(doc[0].Blocked); got != 2 {
		t.Errorf("adds are not deduplicated, expected 2 entries, got %d", got)
	}

	// Removal strips every matching entry, restoring the empty set.
	doc, err = m.RemoveBlockedDates(ctx, []string{"2024-07-04"})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(doc[0].Blocked) != 0 {
		t.Errorf("expected empty set after remove, got %v", doc[0].Blocked)
	}
}

func TestBlockedTimeStructuralMatch(t *testing.T) {
	m, store := newTestMutator(t)
	ctx := context.Background()

	seedDoc(t, store, testKeys.BlockedTimes, BlockedTimeSlotDocument{})

	slot := TimeSlot{Date: "2024-04-01", Time: "10:00", Buffer: "30"}
	if _, err := m.AddBlockedTime(ctx, slot); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Same date and time, different buffer: not a structural match.
	doc, err := m.RemoveBlockedTime(ctx, TimeSlot{Date: "2024-04-01", Time: "10:00", Buffer: "60"})
	if err != nil {
		t.Fatalf("remove non-match: %v", err)
	}
	if len(doc) != 1 {
		t.Fatalf("non-matching remove deleted the slot: %v", doc)
	}

	doc, err = m.RemoveBlockedTime(ctx, slot)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(doc) != 0 {
		t.Errorf("expected empty document, got %v", doc)
	}
	if got := rawDoc(t, store, testKeys.BlockedTimes); got != `[]` {
		t.Errorf("emptied document must stay an array: %s", got)
	}
}

func TestEnqueuePendingDuplicate(t *testing.T) {
	m, store := newTestMutator(t)
	ctx := context.Background()

	seedDoc(t, store, testKeys.Pending, PendingAppointmentsDocument{})

	req := PendingRequest{Name: "Dana", Appointment: "loan signing", AppointmentID: "req-1"}
	if _, err := m.EnqueuePending(ctx, req); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}

	_, err := m.EnqueuePending(ctx, PendingRequest{Name: "Other", Appointment: "other", AppointmentID: "req-1"})
	if !errors.Is(err, ErrAlreadyQueued) {
		t.Fatalf("expected ErrAlreadyQueued, got %v", err)
	}

	doc, err := m.PendingAppointments(ctx)
	if err != nil {
		t.Fatalf("read queue: %v", err)
	}
	if len(doc) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(doc))
	}
	if doc[0].Name != "Dana" {
		t.Errorf("duplicate enqueue overwrote the original entry: %v", doc[0])
	}
}

func TestDequeuePendingPersists(t *testing.T) {
	m, store := newTestMutator(t)
	ctx := context.Background()

	seedDoc(t, store, testKeys.Pending, PendingAppointmentsDocument{
		{Name: "Dana", Appointment: "loan signing", AppointmentID: "req-1"},
		{Name: "Eli", Appointment: "poa", AppointmentID: "req-2"},
	})

	if _, err := m.DequeuePending(ctx, "req-1"); err != nil {
		t.Fatalf("dequeue: %v", err)
	}

	// Re-read from the store: the removal must have been written back.
	doc, err := m.PendingAppointments(ctx)
	if err != nil {
		t.Fatalf("read queue: %v", err)
	}
	if len(doc) != 1 || doc[0].AppointmentID != "req-2" {
		t.Errorf("dequeue was not persisted, queue is %v", doc)
	}
}

func TestMutationConflict(t *testing.T) {
	fs := docstore.NewFSStore(t.TempDir())
	m := NewMutator(stalePutStore{fs}, passLocker{}, testBucket, testKeys, zap.NewNop())

	seedDoc(t, fs, testKeys.BlockedDates, BlockedDatesDocument{{Blocked: []string{}}})

	_, err := m.AddBlockedDates(context.Background(), []string{"2024-08-08"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestMutationBusy(t *testing.T) {
	fs := docstore.NewFSStore(t.TempDir())
	m := NewMutator(fs, lockDenied{}, testBucket, testKeys, zap.NewNop())

	seedDoc(t, fs, testKeys.BlockedDates, BlockedDatesDocument{{Blocked: []string{}}})

	_, err := m.AddBlockedDates(context.Background(), []string{"2024-08-08"})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestMissingDocument(t *testing.T) {
	m, _ := newTestMutator(t)

	_, err := m.BusinessHours(context.Background())
	if !errors.Is(err, ErrDocNotFound) {
		t.Fatalf("expected ErrDocNotFound, got %v", err)
	}
}
