package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/notarly/backoffice/internal/docstore"
	redisclient "github.com/notarly/backoffice/internal/redis"
)

var (
	ErrDayNotFound   = errors.New("day not present in business hours")
	ErrAlreadyQueued = errors.New("appointment request already queued")
	ErrConflict      = errors.New("document was modified concurrently")
	ErrBusy          = errors.New("document is being modified, retry shortly")
	ErrDocNotFound   = errors.New("document not found")
)

// Keys names the four documents within the bucket.
type Keys struct {
	BusinessHours string
	BlockedDates  string
	BlockedTimes  string
	Pending       string
}

// Mutator applies single semantic edits to the config documents through a
// fetch-whole, edit-in-memory, put-whole cycle. Two layers guard the cycle:
// a per-document lock serializes writers within and across processes, and the
// put is conditioned on the version tag returned by the fetch, so a write that
// lost the race fails with ErrConflict instead of erasing the other writer's
// edit.
type Mutator struct {
	store  docstore.Store
	locker redisclient.Locker
	bucket string
	keys   Keys
	log    *zap.Logger
}

func NewMutator(store docstore.Store, locker redisclient.Locker, bucket string, keys Keys, log *zap.Logger) *Mutator {
	return &Mutator{
		store:  store,
		locker: locker,
		bucket: bucket,
		keys:   keys,
		log:    log,
	}
}

// fetchDoc loads and decodes one document. A document that fails to decode is
// an internal error, not NotFound: the store is the source of truth and a
// malformed document must surface loudly rather than be rewritten as empty.
func fetchDoc[D any](ctx context.Context, m *Mutator, key string) (doc D, version string, err error) {
	data, version, err := m.store.Fetch(ctx, m.bucket, key)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return doc, "", fmt.Errorf("%s: %w", key, ErrDocNotFound)
		}
		return doc, "", err
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, "", fmt.Errorf("decode %s: %w", key, err)
	}

	return doc, version, nil
}

// mutateDoc runs one locked read-modify-write cycle and returns the document
// as written. edit must preserve the document's structural shape even when its
// result is empty.
func mutateDoc[D any](ctx context.Context, m *Mutator, key string, edit func(D) (D, error)) (D, error) {
	var result D

	err := m.locker.WithLock(ctx, "doc:"+key, func(ctx context.Context) error {
		doc, version, err := fetchDoc[D](ctx, m, key)
		if err != nil {
			return err
		}

		edited, err := edit(doc)
		if err != nil {
			return err
		}

		data, err := json.Marshal(edited)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}

		if _, err := m.store.Put(ctx, m.bucket, key, data, version); err != nil {
			if errors.Is(err, docstore.ErrVersionMismatch) {
				return fmt.Errorf("%s: %w", key, ErrConflict)
			}
			return err
		}

		result = edited
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return result, fmt.Errorf("%s: %w", key, ErrBusy)
		}
		return result, err
	}

	m.log.Info("config document updated", zap.String("key", key))
	return result, nil
}

// Reads

func (m *Mutator) BusinessHours(ctx context.Context) (BusinessHoursDocument, error) {
	doc, _, err := fetchDoc[BusinessHoursDocument](ctx, m, m.keys.BusinessHours)
	return doc, err
}

func (m *Mutator) BlockedDates(ctx context.Context) (BlockedDatesDocument, error) {
	doc, _, err := fetchDoc[BlockedDatesDocument](ctx, m, m.keys.BlockedDates)
	return doc, err
}

func (m *Mutator) BlockedTimes(ctx context.Context) (BlockedTimeSlotDocument, error) {
	doc, _, err := fetchDoc[BlockedTimeSlotDocument](ctx, m, m.keys.BlockedTimes)
	return doc, err
}

func (m *Mutator) PendingAppointments(ctx context.Context) (PendingAppointmentsDocument, error) {
	doc, _, err := fetchDoc[PendingAppointmentsDocument](ctx, m, m.keys.Pending)
	return doc, err
}

// Business hours

// AppendBusinessHour adds a time string to the named day's sequence. A day
// absent from the document is rejected with ErrDayNotFound; days are only
// created by re-seeding the document, never implicitly.
func (m *Mutator) AppendBusinessHour(ctx context.Context, day, timeStr string) (BusinessHoursDocument, error) {
	return mutateDoc(ctx, m, m.keys.BusinessHours, func(doc BusinessHoursDocument) (BusinessHoursDocument, error) {
		for _, entry := range doc {
			if times, ok := entry[day]; ok {
				entry[day] = append(times, timeStr)
				return doc, nil
			}
		}
		return doc, fmt.Errorf("%q: %w", day, ErrDayNotFound)
	})
}

// RemoveBusinessHour removes every entry equal to the given time string from
// the named day. Removing a time that is not present leaves the day unchanged.
func (m *Mutator) RemoveBusinessHour(ctx context.Context, day, timeStr string) (BusinessHoursDocument, error) {
	return mutateDoc(ctx, m, m.keys.BusinessHours, func(doc BusinessHoursDocument) (BusinessHoursDocument, error) {
		for _, entry := range doc {
			times, ok := entry[day]
			if !ok {
				continue
			}
			kept := make([]string, 0, len(times))
			for _, t := range times {
				if t != timeStr {
					kept = append(kept, t)
				}
			}
			entry[day] = kept
			return doc, nil
		}
		return doc, fmt.Errorf("%q: %w", day, ErrDayNotFound)
	})
}

// Blocked dates

// AddBlockedDates appends the given dates to the blocked set. Duplicates are
// not collapsed; RemoveBlockedDates strips every matching entry, so a
// double-add still round-trips back to the prior set.
func (m *Mutator) AddBlockedDates(ctx context.Context, dates []string) (BlockedDatesDocument, error) {
	return mutateDoc(ctx, m, m.keys.BlockedDates, func(doc BlockedDatesDocument) (BlockedDatesDocument, error) {
		if len(doc) == 0 {
			doc = BlockedDatesDocument{{Blocked: []string{}}}
		}
		doc[0].Blocked = append(doc[0].Blocked, dates...)
		return doc, nil
	})
}

// RemoveBlockedDates removes every entry present in the removal set. Removing
// a date that is not blocked is a no-op for that date.
func (m *Mutator) RemoveBlockedDates(ctx context.Context, dates []string) (BlockedDatesDocument, error) {
	remove := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		remove[d] = struct{}{}
	}

	return mutateDoc(ctx, m, m.keys.BlockedDates, func(doc BlockedDatesDocument) (BlockedDatesDocument, error) {
		if len(doc) == 0 {
			doc = BlockedDatesDocument{{Blocked: []string{}}}
			return doc, nil
		}
		kept := make([]string, 0, len(doc[0].Blocked))
		for _, d := range doc[0].Blocked {
			if _, drop := remove[d]; !drop {
				kept = append(kept, d)
			}
		}
		doc[0].Blocked = kept
		return doc, nil
	})
}

// Blocked time slots

// AddBlockedTime appends one slot unconditionally; no dedup.
func (m *Mutator) AddBlockedTime(ctx context.Context, slot TimeSlot) (BlockedTimeSlotDocument, error) {
	return mutateDoc(ctx, m, m.keys.BlockedTimes, func(doc BlockedTimeSlotDocument) (BlockedTimeSlotDocument, error) {
		return append(doc, slot), nil
	})
}

// RemoveBlockedTime removes entries matching the slot on all three fields.
func (m *Mutator) RemoveBlockedTime(ctx context.Context, slot TimeSlot) (BlockedTimeSlotDocument, error) {
	return mutateDoc(ctx, m, m.keys.BlockedTimes, func(doc BlockedTimeSlotDocument) (BlockedTimeSlotDocument, error) {
		kept := make(BlockedTimeSlotDocument, 0, len(doc))
		for _, s := range doc {
			if s != slot {
				kept = append(kept, s)
			}
		}
		return kept, nil
	})
}

// Pending appointments

// EnqueuePending appends a request to the queue. A request whose
// AppointmentID is already queued is rejected with ErrAlreadyQueued and the
// document is left untouched.
func (m *Mutator) EnqueuePending(ctx context.Context, req PendingRequest) (PendingAppointmentsDocument, error) {
	return mutateDoc(ctx, m, m.keys.Pending, func(doc PendingAppointmentsDocument) (PendingAppointmentsDocument, error) {
		for _, existing := range doc {
			if existing.AppointmentID == req.AppointmentID {
				return doc, fmt.Errorf("%q: %w", req.AppointmentID, ErrAlreadyQueued)
			}
		}
		return append(doc, req), nil
	})
}

// DequeuePending removes the request with the matching AppointmentID. The
// result is always written back to the store.
func (m *Mutator) DequeuePending(ctx context.Context, appointmentID string) (PendingAppointmentsDocument, error) {
	return mutateDoc(ctx, m, m.keys.Pending, func(doc PendingAppointmentsDocument) (PendingAppointmentsDocument, error) {
		kept := make(PendingAppointmentsDocument, 0, len(doc))
		for _, req := range doc {
			if req.AppointmentID != appointmentID {
				kept = append(kept, req)
			}
		}
		return kept, nil
	})
}
