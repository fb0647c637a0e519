// Package grade contains the domain model of the grade-averaging form.
//
// The package defines:
//
//   - Value objects: Grade, Subject, Metric
//   - The request sent to the calculation server: Submission, SubjectInput
//   - The response rendered back to the page: CalculationResult, SubjectResult
//
// A student is graded in exactly three subjects. Grades are numbers in the
// closed interval [0, 10]. Averages and forecasts are computed by the
// calculation server; this package only validates what goes out and
// formats what comes back:
//
//	g, err := grade.ParseGrade(" 8.5 ")
//	if err != nil {
//	    // shared.ErrEmptyGrade, shared.ErrGradeNotNumeric or shared.ErrGradeOutOfRange
//	}
//
//	sub := grade.Submission{
//	    StudentName: "Ana",
//	    Subjects: []grade.SubjectInput{
//	        {Name: "Math", Grades: []float64{8, 9}},
//	        {Name: "Sci", Grades: []float64{7}},
//	        {Name: "Art", Grades: []float64{10}},
//	    },
//	}
//	err = sub.Validate()
//
//	res.GlobalForecast.Format() // "8.7" for 8.67, "-" when absent
package grade
