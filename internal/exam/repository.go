package exam

import (
	"context"
	"fmt"
	"time"

	"school-service/internal/metrics"
	"school-service/internal/query"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, schedule *Schedule) error
	List(ctx context.Context, filter ListFilter) ([]Schedule, error)
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

func (r *repository) Create(ctx context.Context, schedule *Schedule) error {
	start := time.Now()
	_, err := r.db.NewInsert().
		Model(schedule).
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "exam_schedule", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("insert exam schedule: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Schedule, error) {
	start := time.Now()
	schedules := make([]Schedule, 0)
	err := r.listQuery(&schedules, filter).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "exam_schedule", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("list exam schedule: %w", err)
	}
	return schedules, nil
}

func (r *repository) listQuery(schedules *[]Schedule, filter ListFilter) *bun.SelectQuery {
	q := r.db.NewSelect().Model(schedules)

	q = query.NewFilter(
		query.When("e.exam_date >= ?", filter.StartDate),
		query.When("e.exam_date <= ?", filter.EndDate),
	).Apply(q)

	return q.OrderExpr("e.exam_date ASC, e.exam_time ASC")
}
