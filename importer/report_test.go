package importer

import (
	"fmt"
	"testing"
)

func TestBuildReport_CapsDisplayedErrors(t *testing.T) {
	t.Parallel()

	failures := make([]RowError, 0, 15)
	for i := 15; i >= 1; i-- {
		failures = append(failures, *newRowError(i, ValidationError, "Missing required fields (Email)"))
	}

	report := BuildReport(nil, failures, 10)
	if report.ErrorCount != 15 || report.SuccessCount != 0 {
		t.Fatalf("unexpected counts: success=%d error=%d", report.SuccessCount, report.ErrorCount)
	}

	lines := report.Messages()
	if len(lines) != 11 {
		t.Fatalf("expected 11 lines, got %d: %v", len(lines), lines)
	}
	for i := 0; i < 10; i++ {
		want := fmt.Sprintf("Row %d: Missing required fields (Email)", i+1)
		if lines[i] != want {
			t.Fatalf("line %d: want %q, got %q", i, want, lines[i])
		}
	}
	if lines[10] != "... and 5 more errors" {
		t.Fatalf("unexpected overflow line: %q", lines[10])
	}
}

func TestBuildReport_CountsCommittedChunksOnly(t *testing.T) {
	t.Parallel()

	users := validatedUsers(4)
	outcomes := []ChunkOutcome{
		{Index: 1, Users: users[:2], Committed: true},
		{Index: 2, Users: users[2:], Err: fmt.Errorf("unique violation")},
	}
	failures := []RowError{*newRowError(7, DuplicateError, "Duplicate email %q in file", "a@x.com")}

	report := BuildReport(outcomes, failures, 0)
	if report.SuccessCount != 2 || report.ErrorCount != 3 {
		t.Fatalf("unexpected counts: success=%d error=%d", report.SuccessCount, report.ErrorCount)
	}
	if report.Errors[0].Row != 3 || report.Errors[2].Row != 7 {
		t.Fatalf("expected errors in row order, got %+v", report.Errors)
	}
	if report.Omitted != 0 {
		t.Fatalf("unexpected omitted count: %d", report.Omitted)
	}

	summary := report.Summary()
	if len(summary) != 2 || summary[0] != "Successfully created 2 users!" {
		t.Fatalf("unexpected summary: %v", summary)
	}
}
