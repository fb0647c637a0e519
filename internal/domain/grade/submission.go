package grade

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gradecalc/gradeform/internal/domain/shared"
)

var validate = validator.New()

// SubjectInput is one subject of a submission.
type SubjectInput struct {
	Name   string    `validate:"required"`
	Grades []float64 `validate:"dive,gte=0,lte=10"`
}

// Submission is the request for averages and forecasts of one student.
// Subjects are ordered by position on the form.
type Submission struct {
	StudentName string         `validate:"required"`
	Subjects    []SubjectInput `validate:"len=3,dive"`
}

// Validate checks the submission before it leaves the page.
// The page-level validator already rejected bad fields, so a failure here
// means the form and the payload disagree.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.StudentName) == "" {
		return shared.ErrEmptyStudentName
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
		}
		return shared.WrapError("grade", "Validate", shared.ErrValidation,
			"invalid submission: "+strings.Join(fields, ", "), err)
	}
	return shared.WrapError("grade", "Validate", shared.ErrValidation, "invalid submission", err)
}

// SubjectNames returns the subject names in order.
func (s Submission) SubjectNames() []string {
	names := make([]string, len(s.Subjects))
	for i, in := range s.Subjects {
		names[i] = in.Name
	}
	return names
}
