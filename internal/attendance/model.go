package attendance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"school-service/internal/calendar"

	"github.com/uptrace/bun"
)

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// Attendance is one student's status on one day. (student_id, date) is
// unique; saving the same pair again overwrites the status.
type Attendance struct {
	bun.BaseModel `bun:"table:attendance,alias:a"`

	ID        int           `bun:"attendance_id,pk,autoincrement" json:"attendance_id"`
	StudentID int           `bun:"student_id,notnull,unique:attendance_student_date" json:"student_id"`
	Date      calendar.Date `bun:"date,type:date,notnull,unique:attendance_student_date" json:"date"`
	Status    string        `bun:"status,notnull" json:"status"`
}

var _ bun.BeforeCreateTableHook = (*Attendance)(nil)

func (*Attendance) BeforeCreateTable(_ context.Context, query *bun.CreateTableQuery) error {
	query.ForeignKey(`("student_id") REFERENCES "student" ("student_id") ON DELETE CASCADE`)
	return nil
}

// Record is an attendance row with the student's display name attached.
type Record struct {
	bun.BaseModel `bun:"table:attendance,alias:a"`

	ID          int           `bun:"attendance_id" json:"attendance_id"`
	StudentID   int           `bun:"student_id" json:"student_id"`
	StudentName string        `bun:"student_name" json:"student_name"`
	Date        calendar.Date `bun:"date" json:"date"`
	Status      string        `bun:"status" json:"status"`
}

// StudentRef is a student id from a request body. Form-driven clients send
// it as a string, so numeric strings are accepted alongside JSON numbers.
// null and "" decode to zero and fail the required rule.
type StudentRef int

func (r *StudentRef) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*r = 0
			return nil
		}
		id, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid student_id %q", raw)
		}
		*r = StudentRef(id)
		return nil
	}

	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("invalid student_id %s", data)
	}
	*r = StudentRef(id)
	return nil
}

type SaveRequest struct {
	StudentID StudentRef `json:"student_id" validate:"required,gt=0"`
	Date      string     `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string     `json:"status" validate:"required,oneof=Present Absent"`
}

func (r SaveRequest) toAttendance() (*Attendance, error) {
	date, err := calendar.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}
	return &Attendance{
		StudentID: int(r.StudentID),
		Date:      date,
		Status:    r.Status,
	}, nil
}

// ListFilter narrows the attendance list. Nil fields are not filtered on.
type ListFilter struct {
	StudentID *int
	StartDate *calendar.Date
	EndDate   *calendar.Date
}

func validStatus(status string) bool {
	return status == StatusPresent || status == StatusAbsent
}
