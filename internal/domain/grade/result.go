package grade

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Placeholder is displayed for a missing or non-numeric value.
const Placeholder = "-"

// Metric is a number the calculation server may leave out.
type Metric struct {
	value float64
	valid bool
}

// Value returns a present metric.
func Value(v float64) Metric {
	return Metric{value: v, valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

// Absent returns a metric without a value.
func Absent() Metric {
	return Metric{}
}

// Float64 returns the value and whether it is present.
func (m Metric) Float64() (float64, bool) {
	return m.value, m.valid
}

// IsPresent reports whether the metric carries a finite number.
func (m Metric) IsPresent() bool {
	return m.valid
}

// Format renders the metric with one decimal, or Placeholder.
func (m Metric) Format() string {
	if !m.valid {
		return Placeholder
	}
	return FormatNumber(m.value)
}

// UnmarshalJSON accepts numbers and numeric strings. null and any other
// JSON value decode to an absent metric rather than an error.
func (m *Metric) UnmarshalJSON(data []byte) error {
	*m = Absent()

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*m = Value(f)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if f, err := strconv.ParseFloat(string(data), 64); err == nil {
			*m = Value(f)
		}
	}
	return nil
}

// MarshalJSON writes the number, or null when absent.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(m.value, 'f', -1, 64)), nil
}

// FormatNumber renders v with exactly one decimal, rounding half away from
// zero on the decimal value (7.05 -> "7.1"). NaN and infinities render as
// Placeholder.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	r := math.Round(v*10) / 10
	if r == 0 {
		r = 0 // drop the sign of negative zero
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

// SubjectResult holds the server's numbers for one subject.
type SubjectResult struct {
	Average  Metric
	Forecast Metric
}

// CalculationResult is what the calculation server returns on success.
// Subjects are positional: Subjects[0] belongs to subject 1.
type CalculationResult struct {
	Subjects       []SubjectResult
	GlobalAverage  Metric
	GlobalForecast Metric
}

// Subject returns the result of s and whether the server sent one.
func (r CalculationResult) Subject(s Subject) (SubjectResult, bool) {
	i := s.Index()
	if i < 0 || i >= len(r.Subjects) {
		return SubjectResult{}, false
	}
	return r.Subjects[i], true
}
