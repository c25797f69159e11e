package booking

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SlotCalendar tracks reserved consultation slots per doctor. A date with no
// reservations simply has no entries; Release and IsBooked treat a missing
// date as "nothing booked" rather than an error.
type SlotCalendar interface {
	// Reserve marks the slot as taken. Returns ErrSlotTaken when it
	// already is.
	Reserve(ctx context.Context, doctorID uuid.UUID, date, timeLabel string) error
	// Release frees the slot. Releasing a slot that was never reserved is
	// a no-op.
	Release(ctx context.Context, doctorID uuid.UUID, date, timeLabel string) error
	// IsBooked reports whether the slot is currently reserved.
	IsBooked(ctx context.Context, doctorID uuid.UUID, date, timeLabel string) (bool, error)
	// BookedSlots returns every reserved slot for the doctor, keyed by date.
	BookedSlots(ctx context.Context, doctorID uuid.UUID) (map[string][]string, error)
}

// memCalendar is the in-memory SlotCalendar used by tests and available for
// single-node deployments.
type memCalendar struct {
	mu    sync.Mutex
	slots map[uuid.UUID]map[string]map[string]struct{} // doctor -> date -> set of times
}

func NewMemoryCalendar() SlotCalendar {
	return &memCalendar{slots: make(map[uuid.UUID]map[string]map[string]struct{})}
}

func (c *memCalendar) Reserve(_ context.Context, doctorID uuid.UUID, date, timeLabel string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dates := c.slots[doctorID]
	if dates == nil {
		dates = make(map[string]map[string]struct{})
		c.slots[doctorID] = dates
	}
	times := dates[date]
	if times == nil {
		times = make(map[string]struct{})
		dates[date] = times
	}
	if _, taken := times[timeLabel]; taken {
		return ErrSlotTaken
	}
	times[timeLabel] = struct{}{}
	return nil
}

func (c *memCalendar) Release(_ context.Context, doctorID uuid.UUID, date, timeLabel string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dates, ok := c.slots[doctorID]
	if !ok {
		return nil
	}
	times, ok := dates[date]
	if !ok {
		return nil
	}
	delete(times, timeLabel)
	if len(times) == 0 {
		delete(dates, date)
	}
	return nil
}

func (c *memCalendar) IsBooked(_ context.Context, doctorID uuid.UUID, date, timeLabel string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dates, ok := c.slots[doctorID]
	if !ok {
		return false, nil
	}
	times, ok := dates[date]
	if !ok {
		return false, nil
	}
	_, taken := times[timeLabel]
	return taken, nil
}

func (c *memCalendar) BookedSlots(_ context.Context, doctorID uuid.UUID) (map[string][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string][]string)
	for date, times := range c.slots[doctorID] {
		for t := range times {
			out[date] = append(out[date], t)
		}
	}
	return out, nil
}
