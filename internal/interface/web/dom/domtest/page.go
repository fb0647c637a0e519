package domtest

import (
	"github.com/gradecalc/gradeform/internal/domain/grade"
	"github.com/gradecalc/gradeform/internal/interface/web/dom"
)

// NewGradePage builds the grade page with gradesPerSubject grade inputs for
// each subject. Inputs are laid out subject by subject.
func NewGradePage(gradesPerSubject int) *Document {
	d := NewDocument()

	d.Add("button", Class("nav-toggle"), Attr("aria-expanded", "false"))
	nav := d.Add("nav", Class("site-nav"))
	d.Add("a", ID("navHome"), Attr("href", "#inicio"), Text("Inicio"), In(nav))
	d.Add("a", ID("navResults"), Attr("href", "#resultados"), Text("Resultados"), In(nav))
	d.Add("span", ID("navBrand"), Text("Promedios"), In(nav))

	form := d.Add("form", ID(dom.IDGradeForm))
	d.Add("input", ID(dom.IDStudentName), In(form))
	for _, s := range grade.Subjects() {
		d.Add("input", ID(dom.SubjectNameID(s)), In(form))
		d.Add("span", ID(dom.CaptureLabelID(s)), Text(s.DefaultName()), In(form))
		for i := 0; i < gradesPerSubject; i++ {
			d.Add("input",
				Class("grade-input"),
				Attr(dom.AttrSubject, s.String()),
				Attr("type", "number"),
				In(form),
			)
		}
	}
	d.Add("button", ID("calcBtn"), Attr("type", "submit"), In(form))
	d.Add("button", ID(dom.IDClearButton), Attr("type", "button"), In(form))
	d.Add("p", ID(dom.IDFormMessage))

	d.Add("select", ID(dom.IDFilterSubject), Value("all"))
	table := d.Add("table")
	for _, s := range grade.Subjects() {
		row := d.Add("tr", Attr(dom.AttrSubjectRow, s.String()), In(table))
		d.Add("td", ID(dom.ResultLabelID(s)), Text(s.DefaultName()), In(row))
		d.Add("td", ID(dom.AverageID(s)), Text(grade.Placeholder), In(row))
		d.Add("td", ID(dom.ForecastID(s)), Text(grade.Placeholder), In(row))
	}
	d.Add("td", ID(dom.IDGlobalAverage), Text(grade.Placeholder), In(table))
	d.Add("td", ID(dom.IDGlobalForecast), Text(grade.Placeholder), In(table))

	return d
}

// GradeInputs returns the concrete grade inputs of s.
func (d *Document) GradeInputs(s grade.Subject) []*Element {
	var out []*Element
	for _, e := range d.QueryAll(dom.SubjectGradeSelector(s)) {
		out = append(out, e.(*Element))
	}
	return out
}

// FillGrades types values into the grade inputs of s in order.
func (d *Document) FillGrades(s grade.Subject, values ...string) {
	for i, in := range d.GradeInputs(s) {
		if i < len(values) {
			in.SetValue(values[i])
		}
	}
}
