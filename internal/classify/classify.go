package classify

import (
	"time"

	"pharmaevents/event"
)

// Phase places an event relative to a point in time.
type Phase string

const (
	PhaseUpcoming  Phase = "upcoming"
	PhaseOngoing   Phase = "ongoing"
	PhaseCompleted Phase = "completed"
)

// PhaseOf classifies an event by its start and end. An event without an end
// is ongoing once it has started.
func PhaseOf(e event.Event, now time.Time) Phase {
	if e.StartDateTime.After(now) {
		return PhaseUpcoming
	}
	if e.HasEnd() && e.EndDateTime.Before(now) {
		return PhaseCompleted
	}
	return PhaseOngoing
}

// Stats are the dashboard counters.
type Stats struct {
	TotalEvents     int `json:"total_events"`
	UpcomingEvents  int `json:"upcoming_events"`
	OnlineEvents    int `json:"online_events"`
	OfflineEvents   int `json:"offline_events"`
	PendingEvents   int `json:"pending_events"`
	CompletedEvents int `json:"completed_events"`
}

// Tally counts events for the dashboard.
func Tally(events []event.Event, now time.Time) Stats {
	stats := Stats{TotalEvents: len(events)}
	for _, e := range events {
		if e.IsOnline {
			stats.OnlineEvents++
		} else {
			stats.OfflineEvents++
		}
		if e.Status == event.StatusPending {
			stats.PendingEvents++
		}
		switch PhaseOf(e, now) {
		case PhaseUpcoming:
			stats.UpcomingEvents++
		case PhaseCompleted:
			stats.CompletedEvents++
		}
	}
	return stats
}

// Upcoming returns up to limit events starting after now, soonest first.
// Input is expected to be ordered by start descending.
func Upcoming(events []event.Event, now time.Time, limit int) []event.Event {
	out := make([]event.Event, 0, limit)
	for i := len(events) - 1; i >= 0 && len(out) < limit; i-- {
		if PhaseOf(events[i], now) == PhaseUpcoming {
			out = append(out, events[i])
		}
	}
	return out
}

// MonthlyCounts returns the number of events starting in each month of year.
func MonthlyCounts(events []event.Event, year int, loc *time.Location) [12]int {
	var counts [12]int
	for _, e := range events {
		start := e.StartDateTime.In(loc)
		if start.Year() == year {
			counts[start.Month()-1]++
		}
	}
	return counts
}
