package calcapi

import (
	"github.com/gradecalc/gradeform/internal/domain/grade"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - Domain <-> DTO transformations
// ══════════════════════════════════════════════════════════════════════════════

// Mapper converts between the grade domain and the calculation server's wire format.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// RequestFromSubmission builds the POST /calculate body.
// Grade slices are never nil so they encode as [] rather than null.
func (m *Mapper) RequestFromSubmission(sub grade.Submission) CalculateRequestDTO {
	subjects := make([]SubjectDTO, len(sub.Subjects))
	for i, in := range sub.Subjects {
		grades := make([]float64, len(in.Grades))
		copy(grades, in.Grades)
		subjects[i] = SubjectDTO{Name: in.Name, Grades: grades}
	}
	return CalculateRequestDTO{
		StudentName: sub.StudentName,
		Subjects:    subjects,
	}
}

// ResultFromDTO converts a successful response into the domain result.
func (m *Mapper) ResultFromDTO(dto *CalculateResponseDTO) *grade.CalculationResult {
	if dto == nil {
		return &grade.CalculationResult{}
	}

	subjects := make([]grade.SubjectResult, len(dto.Subjects))
	for i, s := range dto.Subjects {
		subjects[i] = grade.SubjectResult{
			Average:  s.Average,
			Forecast: s.Forecast,
		}
	}

	return &grade.CalculationResult{
		Subjects:       subjects,
		GlobalAverage:  dto.GlobalAverage,
		GlobalForecast: dto.GlobalForecast,
	}
}
