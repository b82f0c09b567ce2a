package event

import "testing"

func TestCanonicalGovernorate(t *testing.T) {
	t.Parallel()

	got, ok := CanonicalGovernorate("  port said ")
	if !ok || got != "Port Said" {
		t.Fatalf("expected Port Said, got %q (ok=%v)", got, ok)
	}
	if _, ok := CanonicalGovernorate("Atlantis"); ok {
		t.Fatalf("expected unknown governorate to be rejected")
	}
}

func TestEvent_CategoryNames(t *testing.T) {
	t.Parallel()

	e := Event{Categories: []Category{{Name: "Cardiology"}, {Name: "Oncology"}}}
	if got := e.CategoryNames(); got != "Cardiology, Oncology" {
		t.Fatalf("unexpected category names: %q", got)
	}
}
