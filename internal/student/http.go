package student

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

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
	router.Post("/students", h.SaveStudent)
	router.Get("/students", h.ListStudents)
}

func (h *Handler) SaveStudent(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.InfoContext(r.Context(), "invalid student payload", "error", err)
		httputil.RespondWithText(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		switch validation.FirstField(err) {
		case "Name":
			httputil.RespondWithText(w, http.StatusBadRequest, "Name required")
		case "Class":
			httputil.RespondWithText(w, http.StatusBadRequest, "Class required")
		default:
			httputil.RespondWithText(w, http.StatusBadRequest, "Invalid request")
		}
		return
	}

	saved, err := h.service.SaveStudent(r.Context(), req)
	if err != nil {
		h.handleSaveError(w, r, err)
		return
	}

	h.metrics.RecordStudentSaved(r.Context())
	h.logger.InfoContext(r.Context(), "saved student", "student_id", saved.ID)

	httputil.RespondWithText(w, http.StatusOK, "Saved")
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListStudents(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to fetch students", "error", err)
		httputil.RespondWithText(w, http.StatusInternalServerError, "Fetch error")
		return
	}

	h.metrics.RecordListViewed(r.Context(), "students")

	httputil.RespondWithJSON(w, http.StatusOK, records)
}

func (h *Handler) handleSaveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNameRequired):
		httputil.RespondWithText(w, http.StatusBadRequest, "Name required")
	case errors.Is(err, ErrClassRequired):
		httputil.RespondWithText(w, http.StatusBadRequest, "Class required")
	default:
		h.logger.ErrorContext(r.Context(), "failed to save student", "error", err)
		httputil.RespondWithText(w, http.StatusInternalServerError, "Save error")
	}
}
