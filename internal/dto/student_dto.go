package dto

import "github.com/markbook-app/markbook-api/internal/models"

// StudentViewRequest authorizes a student's view of their own marks.
type StudentViewRequest struct {
	Student  string `json:"student" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SubjectMark is one row of a student's summary table.
type SubjectMark struct {
	Subject string       `json:"subject"`
	Mark    int          `json:"mark"`
	Grade   models.Grade `json:"grade"`
}

// StudentSummaryResponse is the authorized student view: per-subject rows
// sorted by subject plus the average and its grade band. Average is the raw
// mean; one-decimal formatting is the client's concern.
type StudentSummaryResponse struct {
	Student string        `json:"student"`
	Average float64       `json:"average"`
	Grade   models.Grade  `json:"grade"`
	Marks   []SubjectMark `json:"marks"`
}
