package student_test

import (
	"context"
	"errors"
	"testing"

	"school-service/internal/logger"
	"school-service/internal/student"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateWithMarks(ctx context.Context, s *student.Student, marks *student.Marks) error {
	args := m.Called(ctx, s, marks)
	return args.Error(0)
}

func (m *mockRepository) ListWithMarks(ctx context.Context) ([]student.Record, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]student.Record)
	return records, args.Error(1)
}

func (m *mockRepository) Exists(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) {
	m.Called(ctx, eventType, key, payload)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

func TestService_SaveStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("TrimsAndPublishes", func(t *testing.T) {
		repo := new(mockRepository)
		pub := new(mockPublisher)
		svc := student.NewService(repo, pub, logger.NewDiscard())

		repo.On("CreateWithMarks", ctx,
			mock.MatchedBy(func(s *student.Student) bool {
				return s.Name == "Asha" && s.Class == "10"
			}),
			mock.MatchedBy(func(m *student.Marks) bool {
				return m.Tamil == student.NewScore(90) && !m.Maths.Valid
			}),
		).Run(func(args mock.Arguments) {
			args.Get(1).(*student.Student).ID = 42
			args.Get(2).(*student.Marks).StudentID = 42
		}).Return(nil).Once()
		pub.On("Publish", ctx, "student.saved", "42", mock.AnythingOfType("student.SavedEvent")).Once()

		saved, err := svc.SaveStudent(ctx, student.SaveRequest{
			Name:  "  Asha ",
			Class: "10\t",
			Tamil: student.NewScore(90),
		})
		require.NoError(t, err)
		assert.Equal(t, 42, saved.ID)
		assert.Equal(t, "Asha", saved.Name)

		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("BlankNameWritesNothing", func(t *testing.T) {
		repo := new(mockRepository)
		pub := new(mockPublisher)
		svc := student.NewService(repo, pub, logger.NewDiscard())

		_, err := svc.SaveStudent(ctx, student.SaveRequest{Name: "   ", Class: "10"})
		assert.ErrorIs(t, err, student.ErrNameRequired)

		repo.AssertNotCalled(t, "CreateWithMarks", mock.Anything, mock.Anything, mock.Anything)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BlankClass", func(t *testing.T) {
		repo := new(mockRepository)
		svc := student.NewService(repo, new(mockPublisher), logger.NewDiscard())

		_, err := svc.SaveStudent(ctx, student.SaveRequest{Name: "Ravi", Class: ""})
		assert.ErrorIs(t, err, student.ErrClassRequired)
		repo.AssertNotCalled(t, "CreateWithMarks", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StoreErrorSkipsPublish", func(t *testing.T) {
		repo := new(mockRepository)
		pub := new(mockPublisher)
		svc := student.NewService(repo, pub, logger.NewDiscard())

		storeErr := errors.New("connection reset")
		repo.On("CreateWithMarks", ctx, mock.Anything, mock.Anything).Return(storeErr).Once()

		_, err := svc.SaveStudent(ctx, student.SaveRequest{Name: "Ravi", Class: "9"})
		assert.ErrorIs(t, err, storeErr)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_ListStudents(t *testing.T) {
	ctx := context.Background()

	t.Run("NilBecomesEmpty", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("ListWithMarks", ctx).Return(nil, nil).Once()

		svc := student.NewService(repo, new(mockPublisher), logger.NewDiscard())
		records, err := svc.ListStudents(ctx)

		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("Error", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("ListWithMarks", ctx).Return(nil, errors.New("boom")).Once()

		svc := student.NewService(repo, new(mockPublisher), logger.NewDiscard())
		_, err := svc.ListStudents(ctx)
		assert.Error(t, err)
	})
}

func TestService_Exists(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	svc := student.NewService(repo, new(mockPublisher), logger.NewDiscard())

	_, err := svc.Exists(ctx, 0)
	assert.ErrorIs(t, err, student.ErrInvalidInput)

	repo.On("Exists", ctx, 7).Return(true, nil).Once()
	ok, err := svc.Exists(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	repo.AssertExpectations(t)
}
