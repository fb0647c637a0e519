// Package controller drives the grade page: it validates the form, sends
// the grades to the calculation server and renders what comes back.
//
// The controller only sees the page through dom.Bindings, so the same code
// runs in the browser (jsdom) and in tests (domtest).
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gradecalc/gradeform/internal/domain/grade"
	"github.com/gradecalc/gradeform/internal/domain/shared"
	"github.com/gradecalc/gradeform/internal/infrastructure/external/calcapi"
	"github.com/gradecalc/gradeform/internal/interface/web/dom"
	"github.com/gradecalc/gradeform/pkg/logger"
)

// Calculator computes averages and forecasts for a submission.
type Calculator interface {
	Calculate(ctx context.Context, sub grade.Submission) (*grade.CalculationResult, error)
}

// Options configures a Controller.
type Options struct {
	Logger *logger.Logger

	// Go runs the request of a submission. Defaults to a new goroutine;
	// event callbacks must return before the request completes.
	Go func(func())

	// NewID generates submission IDs. Defaults to uuid.NewString.
	NewID func() string
}

// Controller owns the grade page.
type Controller struct {
	ui    *dom.Bindings
	calc  Calculator
	log   *logger.Logger
	spawn func(func())
	newID func() string

	mu      sync.Mutex
	ctx     context.Context
	state   State
	current string
	names   [grade.SubjectCount]string
	detach  []func()
}

// New creates a controller. Nothing is wired to the page until Attach.
func New(ui *dom.Bindings, calc Calculator, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Go == nil {
		opts.Go = func(f func()) { go f() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	c := &Controller{
		ui:    ui,
		calc:  calc,
		log:   opts.Logger.With(logger.Component("form_controller")),
		spawn: opts.Go,
		newID: opts.NewID,
		ctx:   context.Background(),
	}
	for _, s := range grade.Subjects() {
		c.names[s.Index()] = s.DefaultName()
	}
	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Attach registers the page's event handlers and syncs the subject labels
// once. Requests started from page events use ctx.
func (c *Controller) Attach(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	on := func(el dom.Element, event string, h dom.Handler) {
		remove := el.On(event, h)
		c.mu.Lock()
		c.detach = append(c.detach, remove)
		c.mu.Unlock()
	}

	on(c.ui.NavToggle, dom.EventClick, func(dom.Event) { c.ToggleNav() })
	on(c.ui.Nav, dom.EventClick, c.HandleNavClick)

	for _, s := range grade.Subjects() {
		on(c.ui.Subject(s).NameInput, dom.EventInput, func(dom.Event) { c.syncSubject(s) })
	}

	on(c.ui.Form, dom.EventSubmit, c.handleSubmit)
	on(c.ui.ClearButton, dom.EventClick, func(dom.Event) { c.Reset() })
	on(c.ui.Filter, dom.EventChange, func(dom.Event) { c.ApplyFilter() })

	c.SyncSubjectLabels()
	c.log.Info("form controller attached")
}

// Detach removes every handler registered by Attach.
func (c *Controller) Detach() {
	c.mu.Lock()
	detach := c.detach
	c.detach = nil
	c.mu.Unlock()

	for _, remove := range detach {
		remove()
	}
}

// State returns the submission state and the latest submission ID.
func (c *Controller) State() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{State: c.state, SubmissionID: c.current}
}

// ══════════════════════════════════════════════════════════════════════════════
// NAVIGATION
// ══════════════════════════════════════════════════════════════════════════════

// ToggleNav opens or closes the navigation menu.
func (c *Controller) ToggleNav() {
	if c.ui.Nav.HasClass(ClassOpen) {
		c.log.Debug("closing navigation menu")
		c.closeNav()
		return
	}
	c.log.Debug("opening navigation menu")
	c.ui.Nav.AddClass(ClassOpen)
	c.ui.NavToggle.SetAttr("aria-expanded", "true")
}

// HandleNavClick closes the open menu when a link inside it is clicked.
func (c *Controller) HandleNavClick(ev dom.Event) {
	target := ev.Target()
	if target == nil || target.Tag() != "A" || !c.ui.Nav.HasClass(ClassOpen) {
		return
	}
	c.log.Debug("menu link clicked, closing navigation menu")
	c.closeNav()
}

func (c *Controller) closeNav() {
	c.ui.Nav.RemoveClass(ClassOpen)
	c.ui.NavToggle.SetAttr("aria-expanded", "false")
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECT NAMES
// ══════════════════════════════════════════════════════════════════════════════

// SyncSubjectLabels copies every subject name input to its two labels.
func (c *Controller) SyncSubjectLabels() {
	for _, s := range grade.Subjects() {
		c.syncSubject(s)
	}
}

// syncSubject stores the effective name of s and writes it to both labels.
func (c *Controller) syncSubject(s grade.Subject) {
	f := c.ui.Subject(s)
	name := s.DisplayName(f.NameInput.Value())

	c.mu.Lock()
	c.names[s.Index()] = name
	c.mu.Unlock()

	f.CaptureLabel.SetText(name)
	f.ResultLabel.SetText(name)
	c.log.Debug("subject renamed", logger.Subject(int(s)), logger.String("name", name))
}

// SubjectNames returns the stored effective subject names.
func (c *Controller) SubjectNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names[:]...)
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION & EXTRACTION
// ══════════════════════════════════════════════════════════════════════════════

// Validate checks the student name, then every grade input in page order,
// stopping at the first problem. The offending grade input is marked
// invalid and the marks of the inputs before it are cleared. On failure the
// error message is shown and the domain error returned.
func (c *Controller) Validate() error {
	if strings.TrimSpace(c.ui.StudentName.Value()) == "" {
		c.showError(MsgStudentNameRequired)
		return shared.ErrEmptyStudentName
	}

	for i, in := range c.ui.GradeInputs() {
		if _, err := grade.ParseGrade(in.Value()); err != nil {
			c.log.Debug("invalid grade", logger.Int("position", i), logger.String("value", in.Value()))
			in.AddClass(ClassInvalid)
			c.showError(MsgGradeOutOfRange)
			return err
		}
		in.RemoveClass(ClassInvalid)
	}
	return nil
}

// SubjectGrades returns the values of the grade inputs of s in page order.
// Unparsable values come back as NaN; callers validate first.
func (c *Controller) SubjectGrades(s grade.Subject) []float64 {
	inputs := c.ui.SubjectGradeInputs(s)
	grades := make([]float64, len(inputs))
	for i, in := range inputs {
		grades[i] = grade.ParseLoose(in.Value())
	}
	return grades
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION
// ══════════════════════════════════════════════════════════════════════════════

func (c *Controller) handleSubmit(ev dom.Event) {
	ev.PreventDefault()

	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()

	if _, err := c.Submit(ctx); err != nil {
		c.log.Debug("submission not sent", logger.Err(err))
	}
}

// Submit validates the form and, when it is valid, sends it to the
// calculation server through Options.Go. It returns the submission ID.
//
// A submission is refused with shared.ErrSubmissionInFlight while another
// one is being validated or is waiting for the server.
func (c *Controller) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state.Busy() {
		inFlight := c.current
		c.mu.Unlock()
		c.log.Warn("submission refused, another one is in flight", logger.SubmissionID(inFlight))
		c.showError(MsgSubmissionInFlight)
		return "", shared.ErrSubmissionInFlight
	}
	c.state = StateValidating
	c.mu.Unlock()

	c.log.Info("calculate requested")

	if err := c.Validate(); err != nil {
		c.setState(StateFailed)
		return "", err
	}

	c.SyncSubjectLabels()

	sub := grade.Submission{
		StudentName: strings.TrimSpace(c.ui.StudentName.Value()),
		Subjects:    make([]grade.SubjectInput, 0, grade.SubjectCount),
	}
	names := c.SubjectNames()
	for _, s := range grade.Subjects() {
		sub.Subjects = append(sub.Subjects, grade.SubjectInput{
			Name:   names[s.Index()],
			Grades: c.SubjectGrades(s),
		})
	}

	id := c.newID()
	c.mu.Lock()
	c.state = StateSubmitting
	c.current = id
	c.mu.Unlock()

	c.log.Info("sending grades to calculation server",
		logger.SubmissionID(id),
		logger.StudentName(sub.StudentName),
	)

	c.spawn(func() { c.send(ctx, id, sub) })
	return id, nil
}

// send performs the request of submission id and renders its outcome.
// DOM writes happen before the state leaves Submitting so no other
// submission can interleave with them.
func (c *Controller) send(ctx context.Context, id string, sub grade.Submission) {
	log := c.log.With(logger.SubmissionID(id))
	start := time.Now()

	res, err := c.calc.Calculate(calcapi.WithRequestID(ctx, id), sub)

	var serverErr *calcapi.ServerError
	switch {
	case err == nil:
		c.Render(res)
		c.showSuccess(MsgCalculationDone)
		log.Info("calculation rendered", logger.Latency(time.Since(start)))
		c.finish(id, StateSucceeded)

	case errors.As(err, &serverErr):
		log.Warn("calculation server reported an error",
			logger.Int("status", serverErr.StatusCode),
			logger.String("message", serverErr.Message),
		)
		c.showError(MsgServerErrorPrefix + serverErr.Message)
		c.finish(id, StateRequestFailed)

	default:
		log.Error("request to calculation server failed", logger.Err(err), logger.Latency(time.Since(start)))
		c.showError(MsgTransportError)
		c.finish(id, StateRequestFailed)
	}
}

func (c *Controller) finish(id string, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == id {
		c.state = state
	}
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// ══════════════════════════════════════════════════════════════════════════════
// RENDERING
// ══════════════════════════════════════════════════════════════════════════════

// Render writes the server's numbers to the result slots. Results are
// matched to subjects by position; extra entries are ignored and missing
// ones leave their slots as they are. The global values are always written.
func (c *Controller) Render(res *grade.CalculationResult) {
	if res == nil {
		res = &grade.CalculationResult{}
	}

	for _, s := range grade.Subjects() {
		r, ok := res.Subject(s)
		if !ok {
			continue
		}
		f := c.ui.Subject(s)
		f.Average.SetText(r.Average.Format())
		f.Forecast.SetText(r.Forecast.Format())
	}

	c.ui.GlobalAverage.SetText(res.GlobalAverage.Format())
	c.ui.GlobalForecast.SetText(res.GlobalForecast.Format())
}

func (c *Controller) showError(msg string) {
	c.ui.Message.SetText(msg)
	c.ui.Message.AddClass(ClassError)
	c.ui.Message.RemoveClass(ClassSuccess)
}

func (c *Controller) showSuccess(msg string) {
	c.ui.Message.SetText(msg)
	c.ui.Message.AddClass(ClassSuccess)
	c.ui.Message.RemoveClass(ClassError)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESET & FILTER
// ══════════════════════════════════════════════════════════════════════════════

// Reset clears the form, restores the default subject labels and empties
// every result slot and the message area. A request already in flight is
// left alone and still renders when it completes.
func (c *Controller) Reset() {
	c.log.Info("resetting form")

	c.ui.Form.Reset()
	for _, in := range c.ui.GradeInputs() {
		in.RemoveClass(ClassInvalid)
	}
	c.SyncSubjectLabels()

	for _, s := range grade.Subjects() {
		f := c.ui.Subject(s)
		f.Average.SetText(grade.Placeholder)
		f.Forecast.SetText(grade.Placeholder)
	}
	c.ui.GlobalAverage.SetText(grade.Placeholder)
	c.ui.GlobalForecast.SetText(grade.Placeholder)

	c.ui.Message.SetText("")
	c.ui.Message.SetClassName("")

	c.mu.Lock()
	if !c.state.Busy() {
		c.state = StateIdle
	}
	c.mu.Unlock()
}

// ApplyFilter shows the table rows of the selected subject, or every row
// when FilterAll is selected.
func (c *Controller) ApplyFilter() {
	value := c.ui.Filter.Value()
	c.log.Debug("filter changed", logger.String("value", value))

	for _, row := range c.ui.SubjectRows() {
		marker, _ := row.Attr(dom.AttrSubjectRow)
		if value == FilterAll || value == marker {
			row.SetDisplay("")
		} else {
			row.SetDisplay("none")
		}
	}
}
