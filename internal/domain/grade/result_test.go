package grade

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "-", FormatNumber(math.NaN()))
	assert.Equal(t, "-", FormatNumber(math.Inf(1)))
	assert.Equal(t, "7.0", FormatNumber(7))
	assert.Equal(t, "7.1", FormatNumber(7.05))
	assert.Equal(t, "8.7", FormatNumber(8.67))
	assert.Equal(t, "8.5", FormatNumber(8.5))
	assert.Equal(t, "10.0", FormatNumber(10))
	assert.Equal(t, "0.0", FormatNumber(-0.01))
}

func TestMetric_Format(t *testing.T) {
	assert.Equal(t, "-", Absent().Format())
	assert.Equal(t, "-", Value(math.NaN()).Format())
	assert.Equal(t, "9.0", Value(9).Format())
}

func TestMetric_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw     string
		present bool
		want    float64
	}{
		{raw: `8.5`, present: true, want: 8.5},
		{raw: `0`, present: true, want: 0},
		{raw: `-1`, present: true, want: -1},
		{raw: `"7.25"`, present: true, want: 7.25},
		{raw: `null`},
		{raw: `"n/a"`},
		{raw: `true`},
		{raw: `{}`},
		{raw: `[1]`},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var m Metric
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &m))
			v, ok := m.Float64()
			assert.Equal(t, tt.present, ok)
			if tt.present {
				assert.Equal(t, tt.want, v)
			}
		})
	}
}

func TestCalculationResult_Subject(t *testing.T) {
	res := CalculationResult{
		Subjects: []SubjectResult{
			{Average: Value(8.5), Forecast: Value(9)},
			{Average: Absent(), Forecast: Absent()},
		},
		GlobalForecast: Value(8.67),
	}

	first, ok := res.Subject(1)
	require.True(t, ok)
	assert.Equal(t, "8.5", first.Average.Format())
	assert.Equal(t, "9.0", first.Forecast.Format())

	second, ok := res.Subject(2)
	require.True(t, ok)
	assert.Equal(t, "-", second.Average.Format())

	_, ok = res.Subject(3)
	assert.False(t, ok)

	assert.Equal(t, "8.7", res.GlobalForecast.Format())
	assert.Equal(t, "-", res.GlobalAverage.Format())
}

func TestMetric_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(map[string]Metric{"average": Value(8.5), "forecast": Absent()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"average":8.5,"forecast":null}`, string(out))
}
