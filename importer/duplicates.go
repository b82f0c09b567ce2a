package importer

import "pharmaevents/user"

// Collision says where an email was already seen.
type Collision int

const (
	NoCollision Collision = iota
	ExistingUser
	DuplicateInFile
)

// DuplicateDetector checks emails against a snapshot of stored accounts and
// against the rows accepted so far. The snapshot is never modified.
type DuplicateDetector struct {
	existing map[string]struct{}
	accepted map[string]struct{}
}

func NewDuplicateDetector(existing map[string]struct{}) *DuplicateDetector {
	return &DuplicateDetector{
		existing: existing,
		accepted: make(map[string]struct{}),
	}
}

func (d *DuplicateDetector) Check(email string) Collision {
	key := user.NormalizeEmail(email)
	if _, ok := d.existing[key]; ok {
		return ExistingUser
	}
	if _, ok := d.accepted[key]; ok {
		return DuplicateInFile
	}
	return NoCollision
}

func (d *DuplicateDetector) Accept(email string) {
	d.accepted[user.NormalizeEmail(email)] = struct{}{}
}

// CheckUser returns the duplicate error for a validated row, if any.
func (d *DuplicateDetector) CheckUser(v ValidatedUser) *RowError {
	switch d.Check(v.Email) {
	case ExistingUser:
		return newRowError(v.Row, DuplicateError, "User with email %q already exists", v.Email)
	case DuplicateInFile:
		return newRowError(v.Row, DuplicateError, "Duplicate email %q in file", v.Email)
	default:
		return nil
	}
}
