package student_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"school-service/internal/logger"
	"school-service/internal/metrics"
	"school-service/internal/student"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) SaveStudent(ctx context.Context, req student.SaveRequest) (*student.Student, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(*student.Student)
	return s, args.Error(1)
}

func (m *mockService) ListStudents(ctx context.Context) ([]student.Record, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]student.Record)
	return records, args.Error(1)
}

func (m *mockService) Exists(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func newRouter(svc student.Service) chi.Router {
	handler := student.NewHandler(svc, logger.NewDiscard(), metrics.NewMock())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func TestHandler_SaveStudent(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setup    func(svc *mockService)
		wantCode int
		wantBody string
	}{
		{
			name: "Saved",
			body: `{"student_name":"Asha","student_class":"10","section":"A","gender":"F","tamil":"88","maths":92}`,
			setup: func(svc *mockService) {
				svc.On("SaveStudent", mock.Anything, mock.MatchedBy(func(req student.SaveRequest) bool {
					return req.Name == "Asha" && req.Tamil == student.NewScore(88) && req.Maths == student.NewScore(92)
				})).Return(&student.Student{ID: 1, Name: "Asha", Class: "10"}, nil).Once()
			},
			wantCode: http.StatusOK,
			wantBody: "Saved",
		},
		{
			name:     "BlankName",
			body:     `{"student_name":"   ","student_class":"10"}`,
			wantCode: http.StatusBadRequest,
			wantBody: "Name required",
		},
		{
			name:     "MissingName",
			body:     `{"student_class":"10"}`,
			wantCode: http.StatusBadRequest,
			wantBody: "Name required",
		},
		{
			name:     "BlankClass",
			body:     `{"student_name":"Asha","student_class":" "}`,
			wantCode: http.StatusBadRequest,
			wantBody: "Class required",
		},
		{
			name:     "MalformedJSON",
			body:     `{"student_name":`,
			wantCode: http.StatusBadRequest,
			wantBody: "Invalid request",
		},
		{
			name:     "NonNumericMark",
			body:     `{"student_name":"Asha","student_class":"10","tamil":"ninety"}`,
			wantCode: http.StatusBadRequest,
			wantBody: "Invalid request",
		},
		{
			name:     "MarkOutOfRange",
			body:     `{"student_name":"Asha","student_class":"10","maths":1000}`,
			wantCode: http.StatusBadRequest,
			wantBody: "Invalid request",
		},
		{
			name: "StoreFailure",
			body: `{"student_name":"Asha","student_class":"10"}`,
			setup: func(svc *mockService) {
				svc.On("SaveStudent", mock.Anything, mock.Anything).Return(nil, errors.New("insert marks: relation does not exist")).Once()
			},
			wantCode: http.StatusInternalServerError,
			wantBody: "Save error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			if tt.setup != nil {
				tt.setup(svc)
			}

			req := httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			newRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
			assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

			svc.AssertExpectations(t)
			if tt.setup == nil {
				svc.AssertNotCalled(t, "SaveStudent", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHandler_ListStudents(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		svc := new(mockService)
		svc.On("ListStudents", mock.Anything).Return([]student.Record{
			{StudentID: 1, Name: "Asha", Class: "10", Section: "A", Gender: "F", Tamil: student.NewScore(88)},
			{StudentID: 2, Name: "Ravi", Class: "9"},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body []map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		require.Len(t, body, 2)
		assert.Equal(t, float64(1), body[0]["student_id"])
		assert.Equal(t, "Asha", body[0]["student_name"])
		assert.Equal(t, float64(88), body[0]["tamil"])
		assert.Nil(t, body[1]["tamil"])
		assert.Contains(t, body[1], "social_science")
	})

	t.Run("Empty", func(t *testing.T) {
		svc := new(mockService)
		svc.On("ListStudents", mock.Anything).Return([]student.Record{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("FetchError", func(t *testing.T) {
		svc := new(mockService)
		svc.On("ListStudents", mock.Anything).Return(nil, errors.New("connection refused")).Once()

		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Fetch error", w.Body.String())
	})
}
