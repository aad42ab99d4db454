package student

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"school-service/internal/events"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNameRequired  = errors.New("student name is required")
	ErrClassRequired = errors.New("student class is required")
)

type Service interface {
	SaveStudent(ctx context.Context, req SaveRequest) (*Student, error)
	ListStudents(ctx context.Context) ([]Record, error)
	Exists(ctx context.Context, id int) (bool, error)
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

// SaveStudent stores the student and its marks row. Name and class are
// stored trimmed; blank values are rejected before anything is written.
func (s *service) SaveStudent(ctx context.Context, req SaveRequest) (*Student, error) {
	student := &Student{
		Name:    strings.TrimSpace(req.Name),
		Class:   strings.TrimSpace(req.Class),
		Section: req.Section,
		Gender:  req.Gender,
	}
	if student.Name == "" {
		return nil, ErrNameRequired
	}
	if student.Class == "" {
		return nil, ErrClassRequired
	}

	marks := &Marks{
		Tamil:         req.Tamil,
		English:       req.English,
		Maths:         req.Maths,
		Science:       req.Science,
		SocialScience: req.SocialScience,
	}

	if err := s.repo.CreateWithMarks(ctx, student, marks); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "student saved", "student_id", student.ID)
	s.publisher.Publish(ctx, events.TypeStudentSaved, strconv.Itoa(student.ID), SavedEvent{
		Student: *student,
		Marks:   *marks,
	})

	return student, nil
}

func (s *service) ListStudents(ctx context.Context) ([]Record, error) {
	records, err := s.repo.ListWithMarks(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (s *service) Exists(ctx context.Context, id int) (bool, error) {
	if id <= 0 {
		return false, ErrInvalidInput
	}
	return s.repo.Exists(ctx, id)
}
