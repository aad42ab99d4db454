package attendance

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

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
	router.Post("/attendance", h.MarkAttendance)
	router.Get("/attendance", h.ListAttendance)
}

func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.logger.InfoContext(r.Context(), "invalid attendance input", "field", validation.FirstField(err))
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	attendance, err := h.service.MarkAttendance(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		case errors.Is(err, ErrStudentNotFound):
			h.logger.InfoContext(r.Context(), "attendance for unknown student", "student_id", req.StudentID)
			httputil.RespondWithError(w, http.StatusNotFound, "Student not found")
		default:
			h.logger.ErrorContext(r.Context(), "failed to save attendance", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "Error saving attendance")
		}
		return
	}

	h.metrics.RecordAttendanceMarked(r.Context(), attendance.Status)

	httputil.RespondWithJSON(w, http.StatusCreated, attendance)
}

func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		h.logger.InfoContext(r.Context(), "invalid attendance filter", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid filter")
		return
	}

	records, err := h.service.ListAttendance(r.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to fetch attendance", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Error fetching attendance records")
		return
	}

	h.metrics.RecordListViewed(r.Context(), "attendance")

	httputil.RespondWithJSON(w, http.StatusOK, records)
}

// parseListFilter reads student_id, start_date and end_date. Missing or empty
// parameters leave the matching field nil.
func parseListFilter(values url.Values) (ListFilter, error) {
	var filter ListFilter

	if raw := strings.TrimSpace(values.Get("student_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return ListFilter{}, fmt.Errorf("invalid student_id %q", raw)
		}
		filter.StudentID = &id
	}

	var err error
	if filter.StartDate, err = calendar.ParseOptionalDate(values.Get("start_date")); err != nil {
		return ListFilter{}, err
	}
	if filter.EndDate, err = calendar.ParseOptionalDate(values.Get("end_date")); err != nil {
		return ListFilter{}, err
	}
	return filter, nil
}
