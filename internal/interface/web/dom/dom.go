// Package dom is the typed view of the grade page.
//
// The controller never talks to the browser directly. It works against the
// Document and Element capabilities below, which jsdom implements on top of
// syscall/js and domtest implements in memory for tests.
//
// All string-keyed lookups live in Bind, so a page that lacks an element
// fails once at startup instead of at the first event that touches it.
package dom

// ══════════════════════════════════════════════════════════════════════════════
// CAPABILITIES
// ══════════════════════════════════════════════════════════════════════════════

// Handler receives DOM events.
type Handler func(Event)

// Event is the part of a DOM event the controller uses.
type Event interface {
	// Target is the element the event was dispatched to. May be nil.
	Target() Element
	PreventDefault()
}

// Element is a single DOM node.
type Element interface {
	// Tag returns the upper-case tag name ("A", "INPUT", ...).
	Tag() string

	Value() string
	SetValue(v string)

	Text() string
	SetText(s string)

	HasClass(name string) bool
	AddClass(name string)
	RemoveClass(name string)
	// SetClassName replaces the whole class list.
	SetClassName(s string)

	Attr(name string) (string, bool)
	SetAttr(name, value string)

	// SetDisplay sets style.display; "" restores the stylesheet value.
	SetDisplay(v string)

	// Reset restores the form controls under a form element to their
	// default values.
	Reset()

	// On registers h for event and returns a function that removes it.
	On(event string, h Handler) (remove func())
}

// Document finds elements. ByID and Query return nil when nothing matches.
type Document interface {
	ByID(id string) Element
	Query(selector string) Element
	QueryAll(selector string) []Element
}

// Events used by the page.
const (
	EventClick  = "click"
	EventInput  = "input"
	EventSubmit = "submit"
	EventChange = "change"
)
