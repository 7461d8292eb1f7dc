package models

import "time"

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task belongs to exactly one project. Done is a two-state toggle;
// CompletedByID records only the most recent toggling identity and is
// overwritten on every toggle. CompletedBy is resolved on reads.
type Task struct {
	ID            string
	ProjectID     string
	Name          string
	Description   string
	Priority      string
	DueDate       time.Time
	Done          bool
	CompletedByID string
	CompletedBy   *User
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
