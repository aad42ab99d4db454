package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	studentsSaved    metric.Int64Counter
	attendanceMarked metric.Int64Counter
	examsScheduled   metric.Int64Counter
	listsViewed      metric.Int64Counter
	eventsPublished  metric.Int64Counter
	eventErrors      metric.Int64Counter

	Database *DatabaseMetrics
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.studentsSaved, err = meter.Int64Counter(
		"school_service.students.saved",
		metric.WithDescription("Total number of students saved with their marks"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.attendanceMarked, err = meter.Int64Counter(
		"school_service.attendance.marked",
		metric.WithDescription("Total number of attendance upserts by status"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	m.examsScheduled, err = meter.Int64Counter(
		"school_service.exams.scheduled",
		metric.WithDescription("Total number of exams scheduled"),
		metric.WithUnit("{exam}"),
	)
	if err != nil {
		return nil, err
	}

	m.listsViewed, err = meter.Int64Counter(
		"school_service.lists.viewed",
		metric.WithDescription("Total number of list requests by resource"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.eventsPublished, err = meter.Int64Counter(
		"school_service.events.published",
		metric.WithDescription("Total number of record events published"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	m.eventErrors, err = meter.Int64Counter(
		"school_service.events.errors",
		metric.WithDescription("Total number of record events that failed to publish"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	m.Database, err = NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordStudentSaved(ctx context.Context) {
	if m != nil && m.studentsSaved != nil {
		m.studentsSaved.Add(ctx, 1)
	}
}

func (m *Metrics) RecordAttendanceMarked(ctx context.Context, status string) {
	if m != nil && m.attendanceMarked != nil {
		m.attendanceMarked.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

func (m *Metrics) RecordExamScheduled(ctx context.Context) {
	if m != nil && m.examsScheduled != nil {
		m.examsScheduled.Add(ctx, 1)
	}
}

func (m *Metrics) RecordListViewed(ctx context.Context, resource string) {
	if m != nil && m.listsViewed != nil {
		m.listsViewed.Add(ctx, 1, metric.WithAttributes(attribute.String("resource", resource)))
	}
}

func (m *Metrics) RecordEventPublished(ctx context.Context, eventType string, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("type", eventType))
	if err != nil {
		if m.eventErrors != nil {
			m.eventErrors.Add(ctx, 1, attrs)
		}
		return
	}
	if m.eventsPublished != nil {
		m.eventsPublished.Add(ctx, 1, attrs)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}}
}
