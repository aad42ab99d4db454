package student

import (
	"context"

	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:student,alias:s"`

	ID      int    `bun:"student_id,pk,autoincrement" json:"student_id"`
	Name    string `bun:"student_name,notnull" json:"student_name"`
	Class   string `bun:"student_class,notnull" json:"student_class"`
	Section string `bun:"section" json:"section"`
	Gender  string `bun:"gender" json:"gender"`
}

// Marks holds one student's subject scores. The row is keyed by the owning
// student's id and written in the same transaction as the student.
type Marks struct {
	bun.BaseModel `bun:"table:marks,alias:m"`

	StudentID     int   `bun:"student_id,pk" json:"student_id"`
	Tamil         Score `bun:"tamil,type:numeric(5,2)" json:"tamil"`
	English       Score `bun:"english,type:numeric(5,2)" json:"english"`
	Maths         Score `bun:"maths,type:numeric(5,2)" json:"maths"`
	Science       Score `bun:"science,type:numeric(5,2)" json:"science"`
	SocialScience Score `bun:"social_science,type:numeric(5,2)" json:"social_science"`
}

var _ bun.BeforeCreateTableHook = (*Marks)(nil)

func (*Marks) BeforeCreateTable(_ context.Context, query *bun.CreateTableQuery) error {
	query.ForeignKey(`("student_id") REFERENCES "student" ("student_id") ON DELETE CASCADE`)
	return nil
}

// Record is one row of the student list: a student joined with its marks.
type Record struct {
	bun.BaseModel `bun:"table:student,alias:s"`

	StudentID     int    `bun:"student_id" json:"student_id"`
	Name          string `bun:"student_name" json:"student_name"`
	Class         string `bun:"student_class" json:"student_class"`
	Section       string `bun:"section" json:"section"`
	Gender        string `bun:"gender" json:"gender"`
	Tamil         Score  `bun:"tamil" json:"tamil"`
	English       Score  `bun:"english" json:"english"`
	Maths         Score  `bun:"maths" json:"maths"`
	Science       Score  `bun:"science" json:"science"`
	SocialScience Score  `bun:"social_science" json:"social_science"`
}

type SaveRequest struct {
	Name          string `json:"student_name" validate:"required,notblank"`
	Class         string `json:"student_class" validate:"required,notblank"`
	Section       string `json:"section"`
	Gender        string `json:"gender"`
	Tamil         Score  `json:"tamil"`
	English       Score  `json:"english"`
	Maths         Score  `json:"maths"`
	Science       Score  `json:"science"`
	SocialScience Score  `json:"social_science"`
}

// SavedEvent is the payload published after a student is stored.
type SavedEvent struct {
	Student Student `json:"student"`
	Marks   Marks   `json:"marks"`
}
