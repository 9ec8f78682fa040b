package models

import "strings"

// MarkRecord stores one student's score in one subject. At most one record
// exists per case-insensitive (student, subject) pair; a second write for the
// same pair updates the existing record in place.
type MarkRecord struct {
	ID       int64  `json:"id"`
	Student  string `json:"student"`
	Subject  string `json:"subject"`
	Mark     int    `json:"mark"`
	Password string `json:"password,omitempty"`
}

// Matches reports whether the record belongs to the given (student, subject)
// pair. Identity is case-insensitive on both fields.
func (m MarkRecord) Matches(student, subject string) bool {
	return m.BelongsTo(student) && strings.EqualFold(m.Subject, subject)
}

// BelongsTo reports whether the record belongs to the named student.
func (m MarkRecord) BelongsTo(student string) bool {
	return strings.EqualFold(m.Student, student)
}

// Valid reports whether the record satisfies the domain constraints. Records
// failing this check are dropped when a persisted collection is loaded.
func (m MarkRecord) Valid() bool {
	if strings.TrimSpace(m.Student) == "" || strings.TrimSpace(m.Subject) == "" {
		return false
	}

	return m.Mark >= 0 && m.Mark <= 100
}

// Average returns the arithmetic mean of the marks in the given records.
// The caller guarantees a non-empty slice; an empty one yields 0 rather than
// NaN so the value stays encodable.
func Average(records []MarkRecord) float64 {
	if len(records) == 0 {
		return 0
	}

	total := 0
	for _, record := range records {
		total += record.Mark
	}

	return float64(total) / float64(len(records))
}
