// Package domtest provides an in-memory dom.Document for tests.
//
// Elements form a tree; queries walk it in document order and events bubble
// from the target up to the root, which is enough to drive the controller
// without a browser.
package domtest

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gradecalc/gradeform/internal/interface/web/dom"
)

var (
	_ dom.Document = (*Document)(nil)
	_ dom.Element  = (*Element)(nil)
	_ dom.Event    = (*Event)(nil)
)

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENT
// ══════════════════════════════════════════════════════════════════════════════

// Document is a fake page. It is safe for concurrent use.
type Document struct {
	mu   sync.Mutex
	root *Element
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	d := &Document{}
	d.root = &Element{doc: d, tag: "BODY"}
	return d
}

// Option configures an element created by Add.
type Option func(*Element)

// ID sets the element ID.
func ID(id string) Option {
	return func(e *Element) { e.id = id }
}

// Class adds CSS classes.
func Class(names ...string) Option {
	return func(e *Element) { e.classes = append(e.classes, names...) }
}

// Attr sets an attribute.
func Attr(name, value string) Option {
	return func(e *Element) { e.attrs[name] = value }
}

// Value sets both the current and the default value of a form control.
func Value(v string) Option {
	return func(e *Element) {
		e.value = v
		e.defaultValue = v
	}
}

// Text sets the text content.
func Text(s string) Option {
	return func(e *Element) { e.text = s }
}

// In places the element under parent instead of the document body.
func In(parent *Element) Option {
	return func(e *Element) { e.parent = parent }
}

// Add creates an element and appends it to its parent.
func (d *Document) Add(tag string, opts ...Option) *Element {
	e := &Element{
		doc:      d,
		tag:      strings.ToUpper(tag),
		attrs:    make(map[string]string),
		handlers: make(map[string][]*listener),
	}
	for _, opt := range opts {
		opt(e)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if e.parent == nil {
		e.parent = d.root
	}
	e.parent.children = append(e.parent.children, e)
	return e
}

// ByID returns the first element with the given ID, or nil.
func (d *Document) ByID(id string) dom.Element {
	if e := d.Element(id); e != nil {
		return e
	}
	return nil
}

// Element is ByID returning the concrete type.
func (d *Document) Element(id string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	var found *Element
	d.walk(func(e *Element) bool {
		if e.id == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// MustElement is Element that panics when the ID is unknown.
func (d *Document) MustElement(id string) *Element {
	e := d.Element(id)
	if e == nil {
		panic("domtest: no element #" + id)
	}
	return e
}

// Query returns the first element matching selector, or nil.
func (d *Document) Query(selector string) dom.Element {
	if all := d.QueryAll(selector); len(all) > 0 {
		return all[0]
	}
	return nil
}

// QueryAll returns the elements matching selector in document order.
// Only compound selectors are supported: tag, #id, .class, [attr] and
// [attr="value"], e.g. `.grade-input[data-subject="2"]`.
func (d *Document) QueryAll(selector string) []dom.Element {
	sel, err := parseSelector(selector)
	if err != nil {
		panic(fmt.Sprintf("domtest: %v", err))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var out []dom.Element
	d.walk(func(e *Element) bool {
		if sel.matches(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// walk visits every element below the root in document order until fn
// returns false. Callers hold d.mu.
func (d *Document) walk(fn func(*Element) bool) {
	var visit func(*Element) bool
	visit = func(e *Element) bool {
		for _, c := range e.children {
			if !fn(c) || !visit(c) {
				return false
			}
		}
		return true
	}
	visit(d.root)
}

// ══════════════════════════════════════════════════════════════════════════════
// ELEMENT
// ══════════════════════════════════════════════════════════════════════════════

type listener struct {
	h dom.Handler
}

// Element is a fake DOM node.
type Element struct {
	doc *Document

	tag          string
	id           string
	value        string
	defaultValue string
	text         string
	display      string
	classes      []string
	attrs        map[string]string

	parent   *Element
	children []*Element
	handlers map[string][]*listener
}

func (e *Element) Tag() string { return e.tag }

// ID returns the element ID.
func (e *Element) ID() string { return e.id }

func (e *Element) Value() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.value
}

func (e *Element) SetValue(v string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.value = v
}

func (e *Element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.text
}

func (e *Element) SetText(s string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.text = s
}

func (e *Element) HasClass(name string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return slices.Contains(e.classes, name)
}

func (e *Element) AddClass(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if !slices.Contains(e.classes, name) {
		e.classes = append(e.classes, name)
	}
}

func (e *Element) RemoveClass(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.classes = slices.DeleteFunc(e.classes, func(c string) bool { return c == name })
}

func (e *Element) SetClassName(s string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.classes = strings.Fields(s)
}

// ClassName returns the class list joined by spaces.
func (e *Element) ClassName() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return strings.Join(e.classes, " ")
}

func (e *Element) Attr(name string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	v, ok := e.attrs[name]
	return v, ok
}

func (e *Element) SetAttr(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.attrs[name] = value
}

func (e *Element) SetDisplay(v string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.display = v
}

// Display returns the inline style.display value.
func (e *Element) Display() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.display
}

// Reset restores the default value of every descendant.
func (e *Element) Reset() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var visit func(*Element)
	visit = func(n *Element) {
		for _, c := range n.children {
			c.value = c.defaultValue
			visit(c)
		}
	}
	visit(e)
}

func (e *Element) On(event string, h dom.Handler) func() {
	l := &listener{h: h}

	e.doc.mu.Lock()
	e.handlers[event] = append(e.handlers[event], l)
	e.doc.mu.Unlock()

	return func() {
		e.doc.mu.Lock()
		defer e.doc.mu.Unlock()
		e.handlers[event] = slices.DeleteFunc(e.handlers[event], func(x *listener) bool { return x == l })
	}
}

// Listeners returns how many handlers are registered for event.
func (e *Element) Listeners(event string) int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return len(e.handlers[event])
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// Event is a dispatched fake event.
type Event struct {
	target    *Element
	mu        sync.Mutex
	prevented bool
}

func (ev *Event) Target() dom.Element {
	if ev.target == nil {
		return nil
	}
	return ev.target
}

func (ev *Event) PreventDefault() {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.prevented = true
}

// DefaultPrevented reports whether a handler called PreventDefault.
func (ev *Event) DefaultPrevented() bool {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.prevented
}

// Dispatch fires event at e and bubbles it to the root. Handlers run on the
// calling goroutine, outside the document lock.
func (e *Element) Dispatch(event string) *Event {
	ev := &Event{target: e}

	e.doc.mu.Lock()
	var chain []*listener
	for n := e; n != nil; n = n.parent {
		chain = append(chain, n.handlers[event]...)
	}
	e.doc.mu.Unlock()

	for _, l := range chain {
		l.h(ev)
	}
	return ev
}

// Click dispatches a click.
func (e *Element) Click() *Event { return e.Dispatch(dom.EventClick) }

// Type sets the value and dispatches input, as typing does.
func (e *Element) Type(v string) *Event {
	e.SetValue(v)
	return e.Dispatch(dom.EventInput)
}

// Select sets the value and dispatches change.
func (e *Element) Select(v string) *Event {
	e.SetValue(v)
	return e.Dispatch(dom.EventChange)
}

// Submit dispatches submit.
func (e *Element) Submit() *Event { return e.Dispatch(dom.EventSubmit) }
