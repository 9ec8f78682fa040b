package models

import "strings"

// Coursework is a teacher-issued assignment. Mark is the maximum achievable
// points, not a score, and duplicates of (title, subject) are allowed.
type Coursework struct {
	ID          int64  `json:"id"`
	TeacherName string `json:"teacherName"`
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	DueDate     Date   `json:"dueDate"`
	Mark        int    `json:"mark"`
}

// Valid reports whether the coursework satisfies the domain constraints.
// Entries failing this check are dropped when a persisted collection is
// loaded.
func (c Coursework) Valid() bool {
	for _, field := range []string{c.TeacherName, c.Title, c.Subject, c.Description} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}

	return !c.DueDate.IsZero() && c.Mark >= 0
}

// DueStatus classifies coursework relative to a reference day.
type DueStatus string

// Due statuses, most urgent first.
const (
	DueOverdue  DueStatus = "overdue"
	DueToday    DueStatus = "due_today"
	DueTomorrow DueStatus = "due_tomorrow"
	DueUpcoming DueStatus = "upcoming"
)

// ClassifyDue is a pure function of (dueDate, today); callers recompute it on
// every render, it is never stored. The comparison is date-only: anything
// strictly before today is overdue regardless of time-of-day.
func ClassifyDue(due, today Date) DueStatus {
	switch days := today.DaysUntil(due); {
	case days < 0:
		return DueOverdue
	case days == 0:
		return DueToday
	case days == 1:
		return DueTomorrow
	default:
		return DueUpcoming
	}
}
