package exam

import (
	"strings"

	"school-service/internal/calendar"

	"github.com/uptrace/bun"
)

// Schedule is one scheduled exam. Identical schedules may be stored more
// than once.
type Schedule struct {
	bun.BaseModel `bun:"table:exam_schedule,alias:e"`

	ID       int                `bun:"exam_id,pk,autoincrement" json:"exam_id"`
	Name     string             `bun:"exam_name,notnull" json:"exam_name"`
	Subject  string             `bun:"subject,notnull" json:"subject"`
	ExamDate calendar.Date      `bun:"exam_date,type:date,notnull" json:"exam_date"`
	ExamTime calendar.TimeOfDay `bun:"exam_time,type:time,notnull" json:"exam_time"`
}

type SaveRequest struct {
	Name     string `json:"exam_name" validate:"required,notblank"`
	Subject  string `json:"subject" validate:"required,notblank"`
	ExamDate string `json:"exam_date" validate:"required,notblank"`
	ExamTime string `json:"exam_time" validate:"required,notblank"`
}

func (r SaveRequest) toSchedule() (*Schedule, error) {
	date, err := calendar.ParseDate(r.ExamDate)
	if err != nil {
		return nil, err
	}
	tod, err := calendar.ParseTimeOfDay(r.ExamTime)
	if err != nil {
		return nil, err
	}
	return &Schedule{
		Name:     strings.TrimSpace(r.Name),
		Subject:  strings.TrimSpace(r.Subject),
		ExamDate: date,
		ExamTime: tod,
	}, nil
}

// ListFilter bounds exam_date. Nil bounds are not applied.
type ListFilter struct {
	StartDate *calendar.Date
	EndDate   *calendar.Date
}
