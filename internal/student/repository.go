package student

import (
	"context"
	"fmt"
	"time"

	"school-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	CreateWithMarks(ctx context.Context, student *Student, marks *Marks) error
	ListWithMarks(ctx context.Context) ([]Record, error)
	Exists(ctx context.Context, id int) (bool, error)
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

// CreateWithMarks inserts the student, then its marks row under the generated
// id. Both inserts share one transaction, so a failed marks insert leaves no
// student behind.
func (r *repository) CreateWithMarks(ctx context.Context, student *Student, marks *Marks) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		start := time.Now()
		_, err := tx.NewInsert().Model(student).Returning("student_id").Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "insert", "student", time.Since(start), err)
		if err != nil {
			return fmt.Errorf("insert student: %w", err)
		}

		marks.StudentID = student.ID

		start = time.Now()
		_, err = tx.NewInsert().Model(marks).Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "insert", "marks", time.Since(start), err)
		if err != nil {
			return fmt.Errorf("insert marks for student %d: %w", student.ID, err)
		}
		return nil
	})
}

// ListWithMarks inner-joins marks: a student without a marks row is not
// listed.
func (r *repository) ListWithMarks(ctx context.Context) ([]Record, error) {
	start := time.Now()
	records := make([]Record, 0)
	err := r.listQuery(&records).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "student", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return records, nil
}

func (r *repository) listQuery(records *[]Record) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(records).
		ColumnExpr("s.student_id, s.student_name, s.student_class, s.section, s.gender").
		ColumnExpr("m.tamil, m.english, m.maths, m.science, m.social_science").
		Join("JOIN marks AS m ON m.student_id = s.student_id").
		OrderExpr("s.student_id ASC")
}

func (r *repository) Exists(ctx context.Context, id int) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().
		Model((*Student)(nil)).
		Where("s.student_id = ?", id).
		Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "student", time.Since(start), err)

	if err != nil {
		return false, fmt.Errorf("check student %d: %w", id, err)
	}
	return exists, nil
}
