package event

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Event is the stored event record shared by storage, web and output.
type Event struct {
	ID                   int64
	Name                 string
	Description          string
	EventTypeID          int64
	EventTypeName        string
	IsOnline             bool
	StartDateTime        time.Time
	EndDateTime          time.Time
	RegistrationDeadline time.Time
	Venue                string
	Governorate          string
	ImageFile            string
	AttendeesFile        string
	AttendeesCount       int
	UserID               int64
	CreatorEmail         string
	Status               Status
	CreatedAt            time.Time
	Categories           []Category
}

type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

type Type struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// NameCount is one bar of a dashboard chart.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (e Event) HasEnd() bool {
	return !e.EndDateTime.IsZero()
}

func (e Event) CategoryNames() string {
	names := make([]string, 0, len(e.Categories))
	for _, category := range e.Categories {
		names = append(names, category.Name)
	}
	return strings.Join(names, ", ")
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// DefaultCategories are seeded into an empty database.
func DefaultCategories() []string {
	return []string{
		"Cardiology", "Oncology", "Neurology", "Pediatrics", "Endocrinology",
		"Dermatology", "Psychiatry", "Product Launch", "Medical Education",
		"Patient Awareness", "Internal Training",
	}
}

// DefaultTypes are seeded into an empty database.
func DefaultTypes() []string {
	return []string{
		"Conference", "Webinar", "Workshop", "Symposium",
		"Roundtable Meeting", "Investigator Meeting",
	}
}

var governorates = []string{
	"Cairo", "Giza", "Alexandria", "Dakahlia", "Red Sea", "Beheira", "Fayoum",
	"Gharbiya", "Ismailia", "Menofia", "Minya", "Qaliubiya", "New Valley",
	"Suez", "Aswan", "Assiut", "Beni Suef", "Port Said", "Damietta",
	"Sharkia", "South Sinai", "Kafr El Sheikh", "Matrouh", "Luxor",
	"Qena", "North Sinai", "Sohag",
}

func Governorates() []string {
	out := make([]string, len(governorates))
	copy(out, governorates)
	return out
}

// CanonicalGovernorate returns the listed spelling of name, matched
// case-insensitively.
func CanonicalGovernorate(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, governorate := range governorates {
		if strings.EqualFold(governorate, name) {
			return governorate, true
		}
	}
	return "", false
}
