package student_test

import (
	"encoding/json"
	"testing"

	"school-service/internal/student"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  student.Score
	}{
		{name: "Number", input: `88.5`, want: student.NewScore(88.5)},
		{name: "NumericString", input: `"91"`, want: student.NewScore(91)},
		{name: "PaddedString", input: `" 70.25 "`, want: student.NewScore(70.25)},
		{name: "Null", input: `null`, want: student.Score{}},
		{name: "EmptyString", input: `""`, want: student.Score{}},
		{name: "UpperBound", input: `999.99`, want: student.NewScore(999.99)},
		{name: "Negative", input: `"-999.99"`, want: student.NewScore(-999.99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got student.Score
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_UnmarshalJSON_Rejects(t *testing.T) {
	for _, input := range []string{`"abc"`, `"NaN"`, `"Inf"`, `true`, `{}`, `1000`, `"1000"`, `999.999`, `-1000`, `1e6`} {
		t.Run(input, func(t *testing.T) {
			var got student.Score
			assert.Error(t, json.Unmarshal([]byte(input), &got))
		})
	}
}

func TestScore_MarshalJSON(t *testing.T) {
	body, err := json.Marshal(struct {
		Tamil student.Score `json:"tamil"`
		Maths student.Score `json:"maths"`
	}{Tamil: student.NewScore(95)})
	require.NoError(t, err)

	assert.JSONEq(t, `{"tamil":95,"maths":null}`, string(body))
}

func TestSaveRequest_DecodesFormStyleMarks(t *testing.T) {
	var req student.SaveRequest
	err := json.Unmarshal([]byte(`{
		"student_name": "Asha",
		"student_class": "10",
		"section": "A",
		"gender": "F",
		"tamil": "88",
		"english": 76,
		"maths": "",
		"science": null
	}`), &req)
	require.NoError(t, err)

	assert.Equal(t, "Asha", req.Name)
	assert.Equal(t, student.NewScore(88), req.Tamil)
	assert.Equal(t, student.NewScore(76), req.English)
	assert.False(t, req.Maths.Valid)
	assert.False(t, req.Science.Valid)
	assert.False(t, req.SocialScience.Valid)
}
