// Package calcapi implements the client of the grade calculation server.
// The server owns all averaging and forecast math; this package only
// ships a submission to POST /calculate and decodes the answer.
package calcapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gradecalc/gradeform/internal/domain/grade"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DTOs
// ══════════════════════════════════════════════════════════════════════════════

// CalculateRequestDTO is the body of POST /calculate.
type CalculateRequestDTO struct {
	StudentName string       `json:"student_name"`
	Subjects    []SubjectDTO `json:"subjects"`
}

// SubjectDTO carries the grades of one subject in form order.
type SubjectDTO struct {
	Name   string    `json:"name"`
	Grades []float64 `json:"grades"`
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE DTOs
// ══════════════════════════════════════════════════════════════════════════════

// CalculateResponseDTO is either an error or a result; the server never
// wraps it in an envelope.
type CalculateResponseDTO struct {
	Subjects       []SubjectResultDTO `json:"subjects"`
	GlobalAverage  grade.Metric       `json:"global_average"`
	GlobalForecast grade.Metric       `json:"global_forecast"`

	// Error is kept raw: the server sends a string, but anything truthy counts.
	Error json.RawMessage `json:"error,omitempty"`
}

// SubjectResultDTO holds the numbers of one subject.
type SubjectResultDTO struct {
	Average  grade.Metric `json:"average"`
	Forecast grade.Metric `json:"forecast"`
}

// ErrorMessage returns the server-reported error, or "" when the response
// carries none. null, false, 0 and "" mean no error.
func (r *CalculateResponseDTO) ErrorMessage() string {
	raw := bytes.TrimSpace(r.Error)
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	switch string(raw) {
	case "null", "false", "0":
		return ""
	}
	return strings.TrimSpace(string(raw))
}
