package classify

import (
	"testing"
	"time"

	"pharmaevents/event"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func eventAt(start, end time.Time) event.Event {
	return event.Event{StartDateTime: start, EndDateTime: end, Status: event.StatusApproved}
}

func TestPhaseOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		e    event.Event
		want Phase
	}{
		{name: "future", e: eventAt(now.Add(time.Hour), now.Add(2*time.Hour)), want: PhaseUpcoming},
		{name: "running", e: eventAt(now.Add(-time.Hour), now.Add(time.Hour)), want: PhaseOngoing},
		{name: "finished", e: eventAt(now.Add(-2*time.Hour), now.Add(-time.Hour)), want: PhaseCompleted},
		{name: "no end", e: eventAt(now.Add(-48*time.Hour), time.Time{}), want: PhaseOngoing},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := PhaseOf(tc.e, now); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestTally(t *testing.T) {
	t.Parallel()

	online := eventAt(now.Add(24*time.Hour), time.Time{})
	online.IsOnline = true
	online.Status = event.StatusPending
	done := eventAt(now.Add(-72*time.Hour), now.Add(-48*time.Hour))

	stats := Tally([]event.Event{online, done}, now)
	want := Stats{TotalEvents: 2, UpcomingEvents: 1, OnlineEvents: 1, OfflineEvents: 1, PendingEvents: 1, CompletedEvents: 1}
	if stats != want {
		t.Fatalf("want %+v, got %+v", want, stats)
	}
}

func TestUpcoming_SoonestFirst(t *testing.T) {
	t.Parallel()

	events := []event.Event{
		{ID: 3, StartDateTime: now.Add(72 * time.Hour)},
		{ID: 2, StartDateTime: now.Add(24 * time.Hour)},
		{ID: 1, StartDateTime: now.Add(-24 * time.Hour)},
	}

	got := Upcoming(events, now, 5)
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("unexpected upcoming events: %+v", got)
	}
}

func TestMonthlyCounts(t *testing.T) {
	t.Parallel()

	events := []event.Event{
		{StartDateTime: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{StartDateTime: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)},
		{StartDateTime: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)},
		{StartDateTime: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)},
	}

	counts := MonthlyCounts(events, 2026, time.UTC)
	if counts[0] != 2 || counts[11] != 1 || counts[5] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}
