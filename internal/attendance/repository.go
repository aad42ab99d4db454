package attendance

import (
	"context"
	"fmt"
	"time"

	"school-service/internal/db"
	"school-service/internal/metrics"
	"school-service/internal/query"

	"github.com/uptrace/bun"
)

type Repository interface {
	Upsert(ctx context.Context, attendance *Attendance) error
	List(ctx context.Context, filter ListFilter) ([]Record, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

// Upsert inserts the row or, when the (student_id, date) pair already
// exists, overwrites its status. attendance is filled from the stored row.
func (r *repository) Upsert(ctx context.Context, attendance *Attendance) error {
	start := time.Now()
	_, err := r.upsertQuery(attendance).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "upsert", "attendance", time.Since(start), err)

	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("upsert attendance for student %d: %w", attendance.StudentID, err)
	}
	return nil
}

func (r *repository) upsertQuery(attendance *Attendance) *bun.InsertQuery {
	return r.db.NewInsert().
		Model(attendance).
		On("CONFLICT (student_id, date) DO UPDATE").
		Set("status = EXCLUDED.status").
		Returning("*")
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	start := time.Now()
	records := make([]Record, 0)
	err := r.listQuery(&records, filter).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "attendance", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

func (r *repository) listQuery(records *[]Record, filter ListFilter) *bun.SelectQuery {
	q := r.db.NewSelect().
		Model(records).
		ColumnExpr("a.attendance_id, a.student_id, a.date, a.status").
		ColumnExpr("s.student_name").
		Join("JOIN student AS s ON s.student_id = a.student_id")

	q = query.NewFilter(
		query.When("a.student_id = ?", filter.StudentID),
		query.When("a.date >= ?", filter.StartDate),
		query.When("a.date <= ?", filter.EndDate),
	).Apply(q)

	return q.OrderExpr("a.date DESC, s.student_name ASC")
}
