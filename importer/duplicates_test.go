package importer

import "testing"

func TestDuplicateDetector(t *testing.T) {
	t.Parallel()

	existing := map[string]struct{}{"taken@x.com": {}}
	detector := NewDuplicateDetector(existing)

	if got := detector.Check("TAKEN@x.com"); got != ExistingUser {
		t.Fatalf("expected existing user collision, got %v", got)
	}
	if got := detector.Check("new@x.com"); got != NoCollision {
		t.Fatalf("expected no collision, got %v", got)
	}

	detector.Accept("new@x.com")
	if got := detector.Check(" New@X.com "); got != DuplicateInFile {
		t.Fatalf("expected in-file collision, got %v", got)
	}
	if len(existing) != 1 {
		t.Fatalf("expected snapshot to stay unchanged, got %d entries", len(existing))
	}
}

func TestDuplicateDetector_CheckUserMessages(t *testing.T) {
	t.Parallel()

	detector := NewDuplicateDetector(map[string]struct{}{"a@x.com": {}})
	rowErr := detector.CheckUser(ValidatedUser{Row: 5, Email: "a@x.com"})
	if rowErr == nil || rowErr.Message != `Row 5: User with email "a@x.com" already exists` {
		t.Fatalf("unexpected error: %+v", rowErr)
	}

	detector.Accept("b@x.com")
	rowErr = detector.CheckUser(ValidatedUser{Row: 6, Email: "b@x.com"})
	if rowErr == nil || rowErr.Kind != DuplicateError || rowErr.Message != `Row 6: Duplicate email "b@x.com" in file` {
		t.Fatalf("unexpected error: %+v", rowErr)
	}
}
