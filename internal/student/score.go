package student

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxScore is the exclusive bound of a numeric(5,2) column.
const maxScore = 1000

// Score is a nullable subject mark. Form-driven clients send marks as strings,
// so numeric strings are accepted and an empty string means "no mark".
type Score struct {
	sql.NullFloat64
}

func NewScore(v float64) Score {
	return Score{sql.NullFloat64{Float64: v, Valid: true}}
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Float64)
}

func (s *Score) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = Score{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*s = Score{}
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !storable(v) {
			return fmt.Errorf("invalid mark %q", raw)
		}
		*s = NewScore(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil || !storable(v) {
		return fmt.Errorf("invalid mark %s", data)
	}
	*s = NewScore(v)
	return nil
}

// storable reports whether v fits the marks columns once rounded to two
// decimal places.
func storable(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return math.Abs(math.Round(v*100)/100) < maxScore
}
