package exam

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"school-service/internal/events"
)

var (
	ErrMissingFields = errors.New("all fields are required")
	ErrInvalidInput  = errors.New("invalid exam date or time")
)

type Service interface {
	ScheduleExam(ctx context.Context, req SaveRequest) (*Schedule, error)
	ListSchedule(ctx context.Context, filter ListFilter) ([]Schedule, error)
}

type service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *service) ScheduleExam(ctx context.Context, req SaveRequest) (*Schedule, error) {
	schedule, err := req.toSchedule()
	if err != nil {
		return nil, ErrInvalidInput
	}
	if schedule.Name == "" || schedule.Subject == "" {
		return nil, ErrMissingFields
	}

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "exam scheduled",
		"exam_id", schedule.ID,
		"subject", schedule.Subject,
		"exam_date", schedule.ExamDate.String(),
	)
	s.publisher.Publish(ctx, events.TypeExamScheduled, strconv.Itoa(schedule.ID), *schedule)

	return schedule, nil
}

func (s *service) ListSchedule(ctx context.Context, filter ListFilter) ([]Schedule, error) {
	schedules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if schedules == nil {
		schedules = []Schedule{}
	}
	return schedules, nil
}
