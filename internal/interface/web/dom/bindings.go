package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gradecalc/gradeform/internal/domain/grade"
)

// ErrMissingElement is returned by Bind when the page lacks a required element.
var ErrMissingElement = errors.New("dom: missing element")

// Element IDs and selectors of the grade page.
const (
	IDGradeForm      = "gradeForm"
	IDStudentName    = "studentName"
	IDFormMessage    = "formMessage"
	IDClearButton    = "clearBtn"
	IDGlobalAverage  = "globalAverage"
	IDGlobalForecast = "globalForecast"
	IDFilterSubject  = "filterSubject"

	SelectorNavToggle  = ".nav-toggle"
	SelectorNav        = ".site-nav"
	SelectorGradeInput = ".grade-input"
	SelectorSubjectRow = "[data-subject-row]"

	AttrSubject    = "data-subject"
	AttrSubjectRow = "data-subject-row"
)

// SubjectNameID returns the ID of the editable name input of s.
func SubjectNameID(s grade.Subject) string { return fmt.Sprintf("subject%dName", int(s)) }

// CaptureLabelID returns the ID of the label next to the grade inputs of s.
func CaptureLabelID(s grade.Subject) string { return fmt.Sprintf("labelSubject%d", int(s)) }

// ResultLabelID returns the ID of the subject label in the results table.
func ResultLabelID(s grade.Subject) string { return fmt.Sprintf("resSubject%d", int(s)) }

// AverageID returns the ID of the average slot of s.
func AverageID(s grade.Subject) string { return fmt.Sprintf("avgSubject%d", int(s)) }

// ForecastID returns the ID of the forecast slot of s.
func ForecastID(s grade.Subject) string { return fmt.Sprintf("forecastSubject%d", int(s)) }

// SubjectGradeSelector selects the grade inputs of s.
func SubjectGradeSelector(s grade.Subject) string {
	return fmt.Sprintf(`%s[%s="%d"]`, SelectorGradeInput, AttrSubject, int(s))
}

// SubjectFields are the per-subject elements.
type SubjectFields struct {
	NameInput    Element
	CaptureLabel Element
	ResultLabel  Element
	Average      Element
	Forecast     Element
}

// Bindings holds every element the controller touches. Grade inputs and
// table rows are queried on demand because their number is up to the page.
type Bindings struct {
	doc Document

	Form           Element
	StudentName    Element
	Message        Element
	ClearButton    Element
	NavToggle      Element
	Nav            Element
	GlobalAverage  Element
	GlobalForecast Element
	Filter         Element

	subjects [grade.SubjectCount]SubjectFields
}

// Bind resolves the page's elements. When some are missing the returned
// error wraps ErrMissingElement and names all of them.
func Bind(doc Document) (*Bindings, error) {
	var missing []string

	byID := func(id string) Element {
		el := doc.ByID(id)
		if el == nil {
			missing = append(missing, "#"+id)
		}
		return el
	}
	query := func(sel string) Element {
		el := doc.Query(sel)
		if el == nil {
			missing = append(missing, sel)
		}
		return el
	}

	b := &Bindings{
		doc:            doc,
		Form:           byID(IDGradeForm),
		StudentName:    byID(IDStudentName),
		Message:        byID(IDFormMessage),
		ClearButton:    byID(IDClearButton),
		NavToggle:      query(SelectorNavToggle),
		Nav:            query(SelectorNav),
		GlobalAverage:  byID(IDGlobalAverage),
		GlobalForecast: byID(IDGlobalForecast),
		Filter:         byID(IDFilterSubject),
	}

	for _, s := range grade.Subjects() {
		b.subjects[s.Index()] = SubjectFields{
			NameInput:    byID(SubjectNameID(s)),
			CaptureLabel: byID(CaptureLabelID(s)),
			ResultLabel:  byID(ResultLabelID(s)),
			Average:      byID(AverageID(s)),
			Forecast:     byID(ForecastID(s)),
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingElement, strings.Join(missing, ", "))
	}
	return b, nil
}

// Subject returns the elements of s. s must be valid.
func (b *Bindings) Subject(s grade.Subject) SubjectFields {
	return b.subjects[s.Index()]
}

// GradeInputs returns every grade input in document order.
func (b *Bindings) GradeInputs() []Element {
	return b.doc.QueryAll(SelectorGradeInput)
}

// SubjectGradeInputs returns the grade inputs of s in document order.
func (b *Bindings) SubjectGradeInputs(s grade.Subject) []Element {
	return b.doc.QueryAll(SubjectGradeSelector(s))
}

// SubjectRows returns the filterable table rows.
func (b *Bindings) SubjectRows() []Element {
	return b.doc.QueryAll(SelectorSubjectRow)
}
