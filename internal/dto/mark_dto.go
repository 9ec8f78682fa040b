package dto

import "github.com/markbook-app/markbook-api/internal/models"

// MarkUpsertRequest is the payload for adding or updating a mark.
type MarkUpsertRequest struct {
	Student string `json:"student" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Mark    int    `json:"mark" validate:"min=0,max=100"`
}

// MarkResponse is one mark record as rendered to clients. The stored student
// password never leaves the service.
type MarkResponse struct {
	ID      int64        `json:"id"`
	Student string       `json:"student"`
	Subject string       `json:"subject"`
	Mark    int          `json:"mark"`
	Grade   models.Grade `json:"grade"`
}

// NewMarkResponse maps a record to its response shape.
func NewMarkResponse(record models.MarkRecord) MarkResponse {
	return MarkResponse{
		ID:      record.ID,
		Student: record.Student,
		Subject: record.Subject,
		Mark:    record.Mark,
		Grade:   models.GradeFor(float64(record.Mark)),
	}
}

// MarkUpsertResponse reports the outcome of an upsert.
type MarkUpsertResponse struct {
	Record  MarkResponse `json:"record"`
	Created bool         `json:"created"`
}

// MarkListResponse is the records page payload: every record sorted for
// display plus the counters and autocomplete values the page shows.
type MarkListResponse struct {
	TotalRecords  int            `json:"total_records"`
	TotalStudents int            `json:"total_students"`
	Records       []MarkResponse `json:"records"`
	Students      []string       `json:"students"`
	Subjects      []string       `json:"subjects"`
}

// MarkSearchRequest looks up a single (student, subject) record.
type MarkSearchRequest struct {
	Student string `json:"student" validate:"required"`
	Subject string `json:"subject" validate:"required"`
}

// ClearedResponse reports a delete-all outcome.
type ClearedResponse struct {
	Removed int `json:"removed"`
}
