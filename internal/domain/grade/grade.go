package grade

import (
	"math"
	"strconv"
	"strings"

	"github.com/gradecalc/gradeform/internal/domain/shared"
)

// Grade is a single mark in the closed interval [MinGrade, MaxGrade].
type Grade float64

const (
	MinGrade Grade = 0
	MaxGrade Grade = 10
)

// IsValid reports whether the grade is a finite number inside the range.
func (g Grade) IsValid() bool {
	f := float64(g)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return g >= MinGrade && g <= MaxGrade
}

// Float64 returns the underlying value.
func (g Grade) Float64() float64 {
	return float64(g)
}

// ParseGrade parses raw input text into a Grade.
// Surrounding whitespace is ignored; the rest must be a complete decimal number.
func ParseGrade(raw string) (Grade, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, shared.ErrEmptyGrade
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, shared.ErrGradeNotNumeric
	}

	g := Grade(f)
	if !g.IsValid() {
		return 0, shared.ErrGradeOutOfRange
	}
	return g, nil
}

// ParseLoose parses raw input for extraction: the numeric value when the
// text is a number, NaN otherwise. Range is not checked.
func ParseLoose(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
