package grade

import (
	"strconv"

	"github.com/gradecalc/gradeform/internal/domain/shared"
)

// SubjectCount is the number of subjects on the form.
const SubjectCount = 3

// Subject is the 1-based position of a subject on the form.
type Subject int

// Subjects returns every subject in display order.
func Subjects() []Subject {
	out := make([]Subject, SubjectCount)
	for i := range out {
		out[i] = Subject(i + 1)
	}
	return out
}

// NewSubject validates a 1-based subject index.
func NewSubject(index int) (Subject, error) {
	s := Subject(index)
	if !s.IsValid() {
		return 0, shared.ErrInvalidSubject
	}
	return s, nil
}

// IsValid reports whether the index is between 1 and SubjectCount.
func (s Subject) IsValid() bool {
	return s >= 1 && s <= SubjectCount
}

// Index returns the 0-based slot of the subject.
func (s Subject) Index() int {
	return int(s) - 1
}

// String returns the index as used in data-subject attributes.
func (s Subject) String() string {
	return strconv.Itoa(int(s))
}

// DefaultName is shown when the user leaves the subject name empty.
func (s Subject) DefaultName() string {
	return "Materia " + s.String()
}

// DisplayName returns name, or the default name when name is empty.
func (s Subject) DisplayName(name string) string {
	if name == "" {
		return s.DefaultName()
	}
	return name
}
