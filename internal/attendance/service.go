package attendance

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"school-service/internal/events"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// StudentChecker reports whether a student id is known.
type StudentChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type Service interface {
	MarkAttendance(ctx context.Context, req SaveRequest) (*Attendance, error)
	ListAttendance(ctx context.Context, filter ListFilter) ([]Record, error)
}

type service struct {
	repo      Repository
	students  StudentChecker
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, students StudentChecker, publisher events.Publisher, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		students:  students,
		publisher: publisher,
		logger:    logger,
	}
}

// MarkAttendance validates the request, checks the student exists and then
// upserts the (student, date) row.
func (s *service) MarkAttendance(ctx context.Context, req SaveRequest) (*Attendance, error) {
	if req.StudentID <= 0 || !validStatus(req.Status) {
		return nil, ErrInvalidInput
	}
	attendance, err := req.toAttendance()
	if err != nil {
		return nil, ErrInvalidInput
	}

	exists, err := s.students.Exists(ctx, attendance.StudentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrStudentNotFound
	}

	// The FK still guards a student deleted between the check and the write.
	if err := s.repo.Upsert(ctx, attendance); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "attendance marked",
		"student_id", attendance.StudentID,
		"date", attendance.Date.String(),
		"status", attendance.Status,
	)
	s.publisher.Publish(ctx, events.TypeAttendanceMarked, strconv.Itoa(attendance.StudentID), *attendance)

	return attendance, nil
}

func (s *service) ListAttendance(ctx context.Context, filter ListFilter) ([]Record, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
