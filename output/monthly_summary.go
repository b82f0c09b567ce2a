package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"pharmaevents/event"
)

// MonthlySummary aggregates the events starting in one calendar month.
type MonthlySummary struct {
	Month      string
	EventCount int
	Online     int
	Offline    int
	Pending    int
	Approved   int
	Rejected   int
	Attendees  int
}

var monthlyHeaders = []string{"Month", "Events", "Online", "Offline", "Pending", "Approved", "Rejected", "Attendees"}

func BuildMonthlySummaries(events []event.Event, loc *time.Location) []MonthlySummary {
	if len(events) == 0 {
		return []MonthlySummary{}
	}
	if loc == nil {
		loc = time.Local
	}

	byMonth := make(map[string]*MonthlySummary)
	for _, e := range events {
		month := e.StartDateTime.In(loc).Format("2006-01")
		summary, ok := byMonth[month]
		if !ok {
			summary = &MonthlySummary{Month: month}
			byMonth[month] = summary
		}

		summary.EventCount++
		summary.Attendees += e.AttendeesCount
		if e.IsOnline {
			summary.Online++
		} else {
			summary.Offline++
		}
		switch e.Status {
		case event.StatusApproved:
			summary.Approved++
		case event.StatusRejected:
			summary.Rejected++
		default:
			summary.Pending++
		}
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	summaries := make([]MonthlySummary, 0, len(months))
	for _, month := range months {
		summaries = append(summaries, *byMonth[month])
	}
	return summaries
}

func (s MonthlySummary) row() []string {
	return []string{
		s.Month,
		strconv.Itoa(s.EventCount),
		strconv.Itoa(s.Online),
		strconv.Itoa(s.Offline),
		strconv.Itoa(s.Pending),
		strconv.Itoa(s.Approved),
		strconv.Itoa(s.Rejected),
		strconv.Itoa(s.Attendees),
	}
}

func WriteMonthlySummaries(out io.Writer, format string, summaries []MonthlySummary) error {
	switch normalizeFormat(format) {
	case "csv", "":
		return writeMonthlySummariesCSV(out, summaries)
	case "excel", "xlsx":
		rows := make([][]string, 0, len(summaries))
		for _, summary := range summaries {
			rows = append(rows, summary.row())
		}
		return writeSheet(out, "Monthly", monthlyHeaders, rows)
	default:
		return fmt.Errorf("unsupported output format for monthly summaries: %s", format)
	}
}

func writeMonthlySummariesCSV(out io.Writer, summaries []MonthlySummary) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(monthlyHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for _, summary := range summaries {
		if err := writer.Write(summary.row()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}
