package importer

import (
	"fmt"
	"sort"
)

const DefaultMaxDisplayedErrors = 10

// Report summarizes one import run.
type Report struct {
	SuccessCount int
	ErrorCount   int
	Errors       []RowError
	Displayed    []RowError
	Omitted      int
	// Fatal is set when the import stopped before processing rows.
	Fatal string
}

// BuildReport merges committed chunks and row failures into a report.
// Rolled-back chunks contribute one error per user.
func BuildReport(outcomes []ChunkOutcome, failures []RowError, maxDisplayed int) Report {
	if maxDisplayed <= 0 {
		maxDisplayed = DefaultMaxDisplayedErrors
	}

	report := Report{}
	errs := make([]RowError, 0, len(failures))
	errs = append(errs, failures...)
	for _, outcome := range outcomes {
		if outcome.Committed {
			report.SuccessCount += len(outcome.Users)
			continue
		}
		errs = append(errs, outcome.RowErrors()...)
	}
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Row < errs[j].Row
	})

	report.Errors = errs
	report.ErrorCount = len(errs)
	if len(errs) > maxDisplayed {
		report.Displayed = errs[:maxDisplayed]
		report.Omitted = len(errs) - maxDisplayed
	} else {
		report.Displayed = errs
	}
	return report
}

// FatalReport is the report of an import that never reached the rows.
func FatalReport(err *FatalError) Report {
	return Report{Fatal: err.Error()}
}

// Messages returns the displayed error lines plus an overflow note.
func (r Report) Messages() []string {
	if r.Fatal != "" {
		return []string{r.Fatal}
	}
	lines := make([]string, 0, len(r.Displayed)+1)
	for _, rowErr := range r.Displayed {
		lines = append(lines, rowErr.Message)
	}
	if r.Omitted > 0 {
		lines = append(lines, fmt.Sprintf("... and %d more errors", r.Omitted))
	}
	return lines
}

// Summary returns the headline lines shown above the error list.
func (r Report) Summary() []string {
	lines := make([]string, 0, 2)
	if r.SuccessCount > 0 {
		lines = append(lines, fmt.Sprintf("Successfully created %d users!", r.SuccessCount))
	}
	if r.ErrorCount > 0 {
		lines = append(lines, fmt.Sprintf("Failed to create %d users. See details below.", r.ErrorCount))
	}
	return lines
}
