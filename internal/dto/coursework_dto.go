package dto

import "github.com/markbook-app/markbook-api/internal/models"

// CourseworkCreateRequest is the payload for issuing a new assignment.
// Mark is the maximum achievable points, not a score.
type CourseworkCreateRequest struct {
	TeacherName string `json:"teacherName" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"dueDate" validate:"required"`
	Mark        int    `json:"mark" validate:"min=0"`
}

// CourseworkResponse is one assignment as rendered to clients, with its due
// status computed against the day of the request.
type CourseworkResponse struct {
	ID          int64            `json:"id"`
	TeacherName string           `json:"teacherName"`
	Title       string           `json:"title"`
	Subject     string           `json:"subject"`
	Description string           `json:"description"`
	DueDate     string           `json:"dueDate"`
	Mark        int              `json:"mark"`
	Status      models.DueStatus `json:"status"`
}

// NewCourseworkResponse maps an assignment to its response shape,
// classifying it against the given day.
func NewCourseworkResponse(record models.Coursework, today models.Date) CourseworkResponse {
	return CourseworkResponse{
		ID:          record.ID,
		TeacherName: record.TeacherName,
		Title:       record.Title,
		Subject:     record.Subject,
		Description: record.Description,
		DueDate:     record.DueDate.String(),
		Mark:        record.Mark,
		Status:      models.ClassifyDue(record.DueDate, today),
	}
}
