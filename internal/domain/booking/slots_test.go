package booking

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryCalendar_ReserveRelease(t *testing.T) {
	cal := NewMemoryCalendar()
	ctx := context.Background()
	doc := uuid.New()

	if err := cal.Reserve(ctx, doc, "15_09_2026", "09:30 AM"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := cal.Reserve(ctx, doc, "15_09_2026", "09:30 AM"); err != ErrSlotTaken {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// Same time on another date or for another doctor is independent.
	if err := cal.Reserve(ctx, doc, "16_09_2026", "09:30 AM"); err != nil {
		t.Fatalf("other date: %v", err)
	}
	if err := cal.Reserve(ctx, uuid.New(), "15_09_2026", "09:30 AM"); err != nil {
		t.Fatalf("other doctor: %v", err)
	}

	if err := cal.Release(ctx, doc, "15_09_2026", "09:30 AM"); err != nil {
		t.Fatalf("release: %v", err)
	}
	booked, err := cal.IsBooked(ctx, doc, "15_09_2026", "09:30 AM")
	if err != nil || booked {
		t.Fatalf("expected slot free after release, got %v/%v", booked, err)
	}
	if err := cal.Reserve(ctx, doc, "15_09_2026", "09:30 AM"); err != nil {
		t.Fatalf("re-reserve after release: %v", err)
	}
}

func TestMemoryCalendar_ReleaseUnknownIsNoop(t *testing.T) {
	cal := NewMemoryCalendar()
	if err := cal.Release(context.Background(), uuid.New(), "15_09_2026", "09:30 AM"); err != nil {
		t.Fatalf("releasing an unreserved slot must not fail: %v", err)
	}
}

func TestMemoryCalendar_BookedSlots(t *testing.T) {
	cal := NewMemoryCalendar()
	ctx := context.Background()
	doc := uuid.New()

	cal.Reserve(ctx, doc, "15_09_2026", "09:30 AM")
	cal.Reserve(ctx, doc, "15_09_2026", "10:00 AM")
	cal.Reserve(ctx, doc, "16_09_2026", "09:30 AM")

	slots, err := cal.BookedSlots(ctx, doc)
	if err != nil {
		t.Fatalf("booked slots: %v", err)
	}
	if len(slots["15_09_2026"]) != 2 || len(slots["16_09_2026"]) != 1 {
		t.Fatalf("unexpected slots: %+v", slots)
	}
}

func TestMemoryCalendar_ConcurrentReserve(t *testing.T) {
	cal := NewMemoryCalendar()
	ctx := context.Background()
	doc := uuid.New()

	const n = 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := cal.Reserve(ctx, doc, "15_09_2026", "09:30 AM"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one successful reservation, got %d", wins)
	}
}
