package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradecalc/gradeform/internal/domain/grade"
	"github.com/gradecalc/gradeform/internal/domain/shared"
	"github.com/gradecalc/gradeform/internal/infrastructure/external/calcapi"
	"github.com/gradecalc/gradeform/internal/interface/web/dom"
	"github.com/gradecalc/gradeform/internal/interface/web/dom/domtest"
	"github.com/gradecalc/gradeform/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

type fakeCalc struct {
	mu      sync.Mutex
	calls   []grade.Submission
	res     *grade.CalculationResult
	err     error
	release chan struct{}
}

func (f *fakeCalc) Calculate(ctx context.Context, sub grade.Submission) (*grade.CalculationResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sub)
	release := f.release
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	return f.res, f.err
}

func (f *fakeCalc) Calls() []grade.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]grade.Submission(nil), f.calls...)
}

func syncGo(f func()) { f() }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("sub-%d", n)
	}
}

func setup(t *testing.T, calc Calculator, opts Options) (*Controller, *domtest.Document) {
	t.Helper()

	doc := domtest.NewGradePage(2)
	ui, err := dom.Bind(doc)
	require.NoError(t, err)

	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Go == nil {
		opts.Go = syncGo
	}
	if opts.NewID == nil {
		opts.NewID = sequentialIDs()
	}

	c := New(ui, calc, opts)
	c.Attach(context.Background())
	t.Cleanup(c.Detach)
	return c, doc
}

func fillValid(doc *domtest.Document) {
	doc.MustElement(dom.IDStudentName).SetValue("Ana")
	for _, s := range grade.Subjects() {
		doc.FillGrades(s, "8", "9")
	}
}

func messageOf(doc *domtest.Document) (text, class string) {
	msg := doc.MustElement(dom.IDFormMessage)
	return msg.Text(), msg.ClassName()
}

func allGradeInputs(doc *domtest.Document) []*domtest.Element {
	var out []*domtest.Element
	for _, s := range grade.Subjects() {
		out = append(out, doc.GradeInputs(s)...)
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

func TestValidate_AcceptsWholeRange(t *testing.T) {
	c, doc := setup(t, &fakeCalc{}, Options{})
	doc.MustElement(dom.IDStudentName).SetValue("Ana")

	for v := 0.0; v <= 10.0; v += 0.25 {
		raw := fmt.Sprintf("%g", v)
		for _, in := range allGradeInputs(doc) {
			in.SetValue(raw)
		}
		assert.NoError(t, c.Validate(), "grade %s", raw)
	}
}

func TestValidate_RejectsBadGrade(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "empty", raw: "", wantErr: shared.ErrEmptyGrade},
		{name: "blank", raw: "   ", wantErr: shared.ErrEmptyGrade},
		{name: "below range", raw: "-0.1", wantErr: shared.ErrGradeOutOfRange},
		{name: "above range", raw: "10.01", wantErr: shared.ErrGradeOutOfRange},
		{name: "letters", raw: "abc", wantErr: shared.ErrGradeNotNumeric},
		{name: "trailing garbage", raw: "8abc", wantErr: shared.ErrGradeNotNumeric},
		{name: "not a number", raw: "NaN", wantErr: shared.ErrGradeNotNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, doc := setup(t, &fakeCalc{}, Options{})
			fillValid(doc)
			bad := doc.GradeInputs(grade.Subject(2))[1]
			bad.SetValue(tt.raw)

			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.True(t, shared.IsValidation(err))
			assert.True(t, bad.HasClass(ClassInvalid))

			text, class := messageOf(doc)
			assert.Equal(t, MsgGradeOutOfRange, text)
			assert.Equal(t, ClassError, class)
		})
	}
}

func TestValidate_NameCheckedFirst(t *testing.T) {
	c, doc := setup(t, &fakeCalc{}, Options{})
	doc.MustElement(dom.IDStudentName).SetValue("   ")
	doc.FillGrades(grade.Subject(1), "99", "abc")

	err := c.Validate()
	assert.True(t, errors.Is(err, shared.ErrEmptyStudentName))

	text, _ := messageOf(doc)
	assert.Equal(t, MsgStudentNameRequired, text)
	for _, in := range allGradeInputs(doc) {
		assert.False(t, in.HasClass(ClassInvalid))
	}
}

func TestValidate_MarksOnlyFirstFailure(t *testing.T) {
	c, doc := setup(t, &fakeCalc{}, Options{})
	fillValid(doc)
	inputs := allGradeInputs(doc)

	inputs[0].SetValue("11")
	require.Error(t, c.Validate())
	assert.True(t, inputs[0].HasClass(ClassInvalid))

	inputs[0].SetValue("5")
	inputs[2].SetValue("x")
	inputs[4].SetValue("-3")
	require.Error(t, c.Validate())

	assert.False(t, inputs[0].HasClass(ClassInvalid))
	assert.True(t, inputs[2].HasClass(ClassInvalid))
	assert.False(t, inputs[4].HasClass(ClassInvalid))
}

func TestSubjectGrades(t *testing.T) {
	c, doc := setup(t, &fakeCalc{}, Options{})
	doc.FillGrades(grade.Subject(3), " 7.5 ", "oops")

	got := c.SubjectGrades(grade.Subject(3))
	require.Len(t, got, 2)
	assert.Equal(t, 7.5, got[0])
	assert.True(t, math.IsNaN(got[1]))
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECT LABELS
// ══════════════════════════════════════════════════════════════════════════════

func TestSubjectLabels_SyncOnInput(t *testing.T) {
	c, doc := setup(t, &fakeCalc{}, Options{})

	doc.MustElement(dom.SubjectNameID(grade.Subject(2))).Type("Química")

	assert.Equal(t, "Química", doc.MustElement(dom.CaptureLabelID(grade.Subject(2))).Text())
	assert.Equal(t, "Química", doc.MustElement(dom.ResultLabelID(grade.Subject(2))).Text())
	for _, s := range []grade.Subject{1, 3} {
		assert.Equal(t, s.DefaultName(), doc.MustElement(dom.CaptureLabelID(s)).Text())
		assert.Equal(t, s.DefaultName(), doc.MustElement(dom.ResultLabelID(s)).Text())
	}
	assert.Equal(t, []string{"Materia 1", "Química", "Materia 3"}, c.SubjectNames())

	doc.MustElement(dom.SubjectNameID(grade.Subject(2))).Type("")
	assert.Equal(t, "Materia 2", doc.MustElement(dom.ResultLabelID(grade.Subject(2))).Text())
}

func TestAttach_SyncsLabelsOnce(t *testing.T) {
	doc := domtest.NewGradePage(1)
	doc.MustElement(dom.SubjectNameID(grade.Subject(1))).SetValue("Historia")
	doc.MustElement(dom.CaptureLabelID(grade.Subject(3))).SetText("stale")

	ui, err := dom.Bind(doc)
	require.NoError(t, err)
	c := New(ui, &fakeCalc{}, Options{Logger: logger.Discard()})
	c.Attach(context.Background())
	defer c.Detach()

	assert.Equal(t, "Historia", doc.MustElement(dom.CaptureLabelID(grade.Subject(1))).Text())
	assert.Equal(t, "Materia 3", doc.MustElement(dom.CaptureLabelID(grade.Subject(3))).Text())
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION
// ══════════════════════════════════════════════════════════════════════════════

func TestSubmit_EndToEnd(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calculate", r.URL.Path)
		assert.Equal(t, "sub-1", r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{
			"subjects": [
				{"average": 8.5, "forecast": 9.0},
				{"average": 7.0, "forecast": 7.0},
				{"average": 10.0, "forecast": 10.0}
			],
			"global_average": 8.5,
			"global_forecast": 8.67
		}`)
	}))
	defer srv.Close()

	cfg := calcapi.DefaultClientConfig(srv.URL)
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	c, doc := setup(t, calcapi.NewClient(cfg), Options{})

	doc.MustElement(dom.IDStudentName).SetValue("  Ana ")
	doc.MustElement(dom.SubjectNameID(grade.Subject(1))).Type("Math")
	doc.MustElement(dom.SubjectNameID(grade.Subject(2))).Type("Sci")
	doc.MustElement(dom.SubjectNameID(grade.Subject(3))).Type("Art")

	// the second input of subjects 2 and 3 belongs to no subject: it is
	// validated but not sent
	doc.FillGrades(grade.Subject(1), "8", "9")
	doc.FillGrades(grade.Subject(2), "7", "7")
	doc.FillGrades(grade.Subject(3), "10", "10")
	doc.GradeInputs(grade.Subject(2))[1].SetAttr(dom.AttrSubject, "x")
	doc.GradeInputs(grade.Subject(3))[1].SetAttr(dom.AttrSubject, "x")

	ev := doc.MustElement(dom.IDGradeForm).Submit()
	assert.True(t, ev.DefaultPrevented())

	assert.Equal(t, map[string]any{
		"student_name": "Ana",
		"subjects": []any{
			map[string]any{"name": "Math", "grades": []any{8.0, 9.0}},
			map[string]any{"name": "Sci", "grades": []any{7.0}},
			map[string]any{"name": "Art", "grades": []any{10.0}},
		},
	}, body)

	want := map[string]string{
		"avgSubject1": "8.5", "forecastSubject1": "9.0",
		"avgSubject2": "7.0", "forecastSubject2": "7.0",
		"avgSubject3": "10.0", "forecastSubject3": "10.0",
		"globalAverage": "8.5", "globalForecast": "8.7",
	}
	for id, text := range want {
		assert.Equal(t, text, doc.MustElement(id).Text(), id)
	}

	text, class := messageOf(doc)
	assert.Equal(t, MsgCalculationDone, text)
	assert.Equal(t, ClassSuccess, class)
	assert.Equal(t, Status{State: StateSucceeded, SubmissionID: "sub-1"}, c.State())
}

func TestSubmit_InvalidFormSendsNothing(t *testing.T) {
	calc := &fakeCalc{}
	c, doc := setup(t, calc, Options{})

	ev := doc.MustElement(dom.IDGradeForm).Submit()

	assert.True(t, ev.DefaultPrevented())
	assert.Empty(t, calc.Calls())
	assert.Equal(t, StateFailed, c.State().State)

	text, _ := messageOf(doc)
	assert.Equal(t, MsgStudentNameRequired, text)
}

func TestSubmit_ServerReportedError(t *testing.T) {
	calc := &fakeCalc{err: &calcapi.ServerError{StatusCode: 401, Message: "No autenticado."}}
	c, doc := setup(t, calc, Options{})
	fillValid(doc)

	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	text, class := messageOf(doc)
	assert.Equal(t, "Error desde el servidor: No autenticado.", text)
	assert.Equal(t, ClassError, class)
	assert.Equal(t, StateRequestFailed, c.State().State)
	assert.Equal(t, grade.Placeholder, doc.MustElement(dom.IDGlobalAverage).Text())
}

func TestSubmit_TransportError(t *testing.T) {
	calc := &fakeCalc{err: fmt.Errorf("calculate: %w", shared.ErrCalcUnavailable)}
	c, doc := setup(t, calc, Options{})
	fillValid(doc)

	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	text, class := messageOf(doc)
	assert.Equal(t, MsgTransportError, text)
	assert.Equal(t, ClassError, class)
	assert.Equal(t, StateRequestFailed, c.State().State)
}

func TestSubmit_RefusesWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	calc := &fakeCalc{
		release: release,
		res:     &grade.CalculationResult{GlobalAverage: grade.Value(8.5)},
	}
	c, doc := setup(t, calc, Options{Go: func(f func()) { go f() }})
	fillValid(doc)

	id, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Status{State: StateSubmitting, SubmissionID: id}, c.State())

	_, err = c.Submit(context.Background())
	assert.True(t, errors.Is(err, shared.ErrSubmissionInFlight))

	doc.MustElement(dom.IDGradeForm).Submit()

	text, _ := messageOf(doc)
	assert.Equal(t, MsgSubmissionInFlight, text)
	assert.Equal(t, id, c.State().SubmissionID)

	close(release)
	assert.Eventually(t, func() bool {
		return c.State().State == StateSucceeded
	}, time.Second, 5*time.Millisecond)

	assert.Len(t, calc.Calls(), 1)
	assert.Equal(t, "8.5", doc.MustElement(dom.IDGlobalAverage).Text())

	second, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, id, second)
}

// ══════════════════════════════════════════════════════════════════════════════
// RENDERING
// ══════════════════════════════════════════════════════════════════════════════

func TestRender_PositionalSlots(t *testing.T) {
	c, doc := setup(t, &fakeCalc{}, Options{})
	doc.MustElement(dom.AverageID(grade.Subject(3))).SetText("old")

	c.Render(&grade.CalculationResult{
		Subjects: []grade.SubjectResult{
			{Average: grade.Value(7.05), Forecast: grade.Absent()},
			{Average: grade.Value(0), Forecast: grade.Value(-0.04)},
		},
		GlobalForecast: grade.Value(6),
	})

	assert.Equal(t, "7.1", doc.MustElement("avgSubject1").Text())
	assert.Equal(t, "-", doc.MustElement("forecastSubject1").Text())
	assert.Equal(t, "0.0", doc.MustElement("avgSubject2").Text())
	assert.Equal(t, "0.0", doc.MustElement("forecastSubject2").Text())
	assert.Equal(t, "old", doc.MustElement("avgSubject3").Text())
	assert.Equal(t, "-", doc.MustElement(dom.IDGlobalAverage).Text())
	assert.Equal(t, "6.0", doc.MustElement(dom.IDGlobalForecast).Text())
}

func TestRender_IgnoresExtraSubjects(t *testing.T) {
	c, doc := setup(t, &fakeCalc{}, Options{})

	subjects := make([]grade.SubjectResult, 5)
	for i := range subjects {
		subjects[i] = grade.SubjectResult{Average: grade.Value(float64(i + 1)), Forecast: grade.Value(1)}
	}
	c.Render(&grade.CalculationResult{Subjects: subjects})

	assert.Equal(t, "3.0", doc.MustElement("avgSubject3").Text())
}

// ══════════════════════════════════════════════════════════════════════════════
// RESET, FILTER, NAVIGATION
// ══════════════════════════════════════════════════════════════════════════════

func TestReset(t *testing.T) {
	calc := &fakeCalc{res: &grade.CalculationResult{
		Subjects:      []grade.SubjectResult{{Average: grade.Value(9), Forecast: grade.Value(9)}},
		GlobalAverage: grade.Value(9),
	}}
	c, doc := setup(t, calc, Options{})
	fillValid(doc)
	doc.MustElement(dom.SubjectNameID(grade.Subject(1))).Type("Lengua")
	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	allGradeInputs(doc)[3].AddClass(ClassInvalid)

	doc.MustElement(dom.IDClearButton).Click()

	assert.Equal(t, "", doc.MustElement(dom.IDStudentName).Value())
	for _, s := range grade.Subjects() {
		assert.Equal(t, "", doc.MustElement(dom.SubjectNameID(s)).Value())
		assert.Equal(t, s.DefaultName(), doc.MustElement(dom.CaptureLabelID(s)).Text())
		assert.Equal(t, s.DefaultName(), doc.MustElement(dom.ResultLabelID(s)).Text())
		assert.Equal(t, "-", doc.MustElement(dom.AverageID(s)).Text())
		assert.Equal(t, "-", doc.MustElement(dom.ForecastID(s)).Text())
	}
	for _, in := range allGradeInputs(doc) {
		assert.Equal(t, "", in.Value())
		assert.False(t, in.HasClass(ClassInvalid))
	}
	assert.Equal(t, "-", doc.MustElement(dom.IDGlobalAverage).Text())
	assert.Equal(t, "-", doc.MustElement(dom.IDGlobalForecast).Text())

	text, class := messageOf(doc)
	assert.Equal(t, "", text)
	assert.Equal(t, "", class)
	assert.Equal(t, StateIdle, c.State().State)
}

func TestApplyFilter(t *testing.T) {
	_, doc := setup(t, &fakeCalc{}, Options{})
	filter := doc.MustElement(dom.IDFilterSubject)

	rows := func() map[string]string {
		out := map[string]string{}
		for _, e := range doc.QueryAll(dom.SelectorSubjectRow) {
			row := e.(*domtest.Element)
			marker, _ := row.Attr(dom.AttrSubjectRow)
			out[marker] = row.Display()
		}
		return out
	}

	filter.Select("2")
	assert.Equal(t, map[string]string{"1": "none", "2": "", "3": "none"}, rows())

	filter.Select("all")
	assert.Equal(t, map[string]string{"1": "", "2": "", "3": ""}, rows())

	filter.Select("9")
	assert.Equal(t, map[string]string{"1": "none", "2": "none", "3": "none"}, rows())
}

func TestNavigation(t *testing.T) {
	_, doc := setup(t, &fakeCalc{}, Options{})
	toggle := doc.Query(dom.SelectorNavToggle).(*domtest.Element)
	nav := doc.Query(dom.SelectorNav).(*domtest.Element)

	expanded := func() string {
		v, _ := toggle.Attr("aria-expanded")
		return v
	}

	toggle.Click()
	assert.True(t, nav.HasClass(ClassOpen))
	assert.Equal(t, "true", expanded())

	doc.MustElement("navBrand").Click()
	assert.True(t, nav.HasClass(ClassOpen), "non-link click keeps the menu open")

	doc.MustElement("navHome").Click()
	assert.False(t, nav.HasClass(ClassOpen))
	assert.Equal(t, "false", expanded())

	toggle.Click()
	toggle.Click()
	assert.False(t, nav.HasClass(ClassOpen))
	assert.Equal(t, "false", expanded())
}

func TestDetach(t *testing.T) {
	c, doc := setup(t, &fakeCalc{}, Options{})
	c.Detach()

	form := doc.MustElement(dom.IDGradeForm)
	assert.Equal(t, 0, form.Listeners(dom.EventSubmit))
	assert.False(t, form.Submit().DefaultPrevented())

	doc.MustElement(dom.SubjectNameID(grade.Subject(1))).Type("Arte")
	assert.Equal(t, "Materia 1", doc.MustElement(dom.CaptureLabelID(grade.Subject(1))).Text())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "request_failed", StateRequestFailed.String())
	assert.True(t, StateValidating.Busy())
	assert.False(t, StateFailed.Busy())
}
