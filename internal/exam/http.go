package exam

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"school-service/internal/calendar"
	"school-service/internal/httputil"
	"school-service/internal/metrics"
	"school-service/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validation.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/exams", h.ScheduleExam)
	router.Get("/exams", h.ListSchedule)
}

func (h *Handler) ScheduleExam(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.logger.InfoContext(r.Context(), "incomplete exam schedule", "field", validation.FirstField(err))
		httputil.RespondWithError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	schedule, err := h.service.ScheduleExam(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			httputil.RespondWithError(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, ErrInvalidInput):
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid exam date or time")
		default:
			h.logger.ErrorContext(r.Context(), "failed to save exam schedule", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "Error saving exam schedule")
		}
		return
	}

	h.metrics.RecordExamScheduled(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, schedule)
}

func (h *Handler) ListSchedule(w http.ResponseWriter, r *http.Request) {
	var (
		filter ListFilter
		err    error
	)
	values := r.URL.Query()
	if filter.StartDate, err = calendar.ParseOptionalDate(values.Get("start_date")); err == nil {
		filter.EndDate, err = calendar.ParseOptionalDate(values.Get("end_date"))
	}
	if err != nil {
		h.logger.InfoContext(r.Context(), "invalid exam filter", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid filter")
		return
	}

	schedules, err := h.service.ListSchedule(r.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to fetch exam schedule", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Error fetching exam schedule")
		return
	}

	h.metrics.RecordListViewed(r.Context(), "exams")

	httputil.RespondWithJSON(w, http.StatusOK, schedules)
}
