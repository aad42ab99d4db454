package attendance_test

import (
	"context"
	"errors"
	"testing"

	"school-service/internal/attendance"
	"school-service/internal/events"
	"school-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Upsert(ctx context.Context, a *attendance.Attendance) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockRepository) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Record, error) {
	args := m.Called(ctx, filter)
	records, _ := args.Get(0).([]attendance.Record)
	return records, args.Error(1)
}

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) Exists(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type recordingPublisher struct {
	events.Noop
	published []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, key string, _ interface{}) {
	p.published = append(p.published, eventType+":"+key)
}

func TestService_MarkAttendance(t *testing.T) {
	ctx := context.Background()
	valid := attendance.SaveRequest{StudentID: 1, Date: "2024-01-10", Status: "Present"}

	t.Run("Upserts", func(t *testing.T) {
		repo := new(mockRepository)
		checker := new(mockChecker)
		pub := &recordingPublisher{}
		svc := attendance.NewService(repo, checker, pub, logger.NewDiscard())

		checker.On("Exists", ctx, 1).Return(true, nil).Once()
		repo.On("Upsert", ctx, mock.MatchedBy(func(a *attendance.Attendance) bool {
			return a.StudentID == 1 && a.Date.String() == "2024-01-10" && a.Status == "Present"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*attendance.Attendance).ID = 9
		}).Return(nil).Once()

		got, err := svc.MarkAttendance(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, 9, got.ID)
		assert.Equal(t, []string{"attendance.marked:1"}, pub.published)

		repo.AssertExpectations(t)
		checker.AssertExpectations(t)
	})

	t.Run("UnknownStudent", func(t *testing.T) {
		repo := new(mockRepository)
		checker := new(mockChecker)
		pub := &recordingPublisher{}
		svc := attendance.NewService(repo, checker, pub, logger.NewDiscard())

		checker.On("Exists", ctx, 1).Return(false, nil).Once()

		_, err := svc.MarkAttendance(ctx, valid)
		assert.ErrorIs(t, err, attendance.ErrStudentNotFound)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		assert.Empty(t, pub.published)
	})

	t.Run("StudentDeletedBeforeWrite", func(t *testing.T) {
		repo := new(mockRepository)
		checker := new(mockChecker)
		svc := attendance.NewService(repo, checker, &recordingPublisher{}, logger.NewDiscard())

		checker.On("Exists", ctx, 1).Return(true, nil).Once()
		repo.On("Upsert", ctx, mock.Anything).Return(attendance.ErrStudentNotFound).Once()

		_, err := svc.MarkAttendance(ctx, valid)
		assert.ErrorIs(t, err, attendance.ErrStudentNotFound)
	})

	t.Run("InvalidStatusChecksNothing", func(t *testing.T) {
		repo := new(mockRepository)
		checker := new(mockChecker)
		svc := attendance.NewService(repo, checker, &recordingPublisher{}, logger.NewDiscard())

		_, err := svc.MarkAttendance(ctx, attendance.SaveRequest{StudentID: 1, Date: "2024-01-10", Status: "Late"})
		assert.ErrorIs(t, err, attendance.ErrInvalidInput)

		_, err = svc.MarkAttendance(ctx, attendance.SaveRequest{StudentID: 1, Date: "Jan 10", Status: "Absent"})
		assert.ErrorIs(t, err, attendance.ErrInvalidInput)

		checker.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	})

	t.Run("CheckerError", func(t *testing.T) {
		checker := new(mockChecker)
		svc := attendance.NewService(new(mockRepository), checker, &recordingPublisher{}, logger.NewDiscard())

		checker.On("Exists", ctx, 1).Return(false, errors.New("pool closed")).Once()

		_, err := svc.MarkAttendance(ctx, valid)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, attendance.ErrStudentNotFound)
	})
}

func TestService_ListAttendance(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	svc := attendance.NewService(repo, new(mockChecker), &recordingPublisher{}, logger.NewDiscard())

	repo.On("List", ctx, attendance.ListFilter{}).Return(nil, nil).Once()

	records, err := svc.ListAttendance(ctx, attendance.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
