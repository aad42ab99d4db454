// Package query composes optional list filters into parameterized WHERE
// clauses. A predicate whose value was not supplied is dropped entirely; it is
// never replaced by a default.
package query

import "github.com/uptrace/bun"

// Predicate is one "column op ?" condition with its bound value.
type Predicate struct {
	Cond  string
	Value interface{}
	ok    bool
}

// When returns a predicate for cond bound to *v, or an absent predicate when
// v is nil.
func When[T any](cond string, v *T) Predicate {
	if v == nil {
		return Predicate{}
	}
	return Predicate{Cond: cond, Value: *v, ok: true}
}

// Filter is the ordered set of present predicates, AND-combined on Apply.
type Filter struct {
	predicates []Predicate
}

func NewFilter(predicates ...Predicate) Filter {
	f := Filter{}
	for _, p := range predicates {
		if p.ok {
			f.predicates = append(f.predicates, p)
		}
	}
	return f
}

func (f Filter) Len() int {
	return len(f.predicates)
}

func (f Filter) Predicates() []Predicate {
	return f.predicates
}

// Apply adds one Where per predicate. bun joins consecutive Where calls
// with AND.
func (f Filter) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	for _, p := range f.predicates {
		q = q.Where(p.Cond, p.Value)
	}
	return q
}
