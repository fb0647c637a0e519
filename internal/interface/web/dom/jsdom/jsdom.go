//go:build js && wasm

// Package jsdom implements dom.Document on top of syscall/js.
package jsdom

import (
	"strings"
	"syscall/js"

	"github.com/gradecalc/gradeform/internal/interface/web/dom"
)

var (
	_ dom.Document = Document{}
	_ dom.Element  = (*Element)(nil)
	_ dom.Event    = event{}
)

// Document wraps the browser document.
type Document struct {
	v js.Value
}

// New returns the global document.
func New() Document {
	return Document{v: js.Global().Get("document")}
}

func (d Document) ByID(id string) dom.Element {
	return wrap(d.v.Call("getElementById", id))
}

func (d Document) Query(selector string) dom.Element {
	return wrap(d.v.Call("querySelector", selector))
}

func (d Document) QueryAll(selector string) []dom.Element {
	list := d.v.Call("querySelectorAll", selector)
	n := list.Length()
	out := make([]dom.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &Element{v: list.Index(i)})
	}
	return out
}

// wrap returns an untyped nil for null so callers can compare with nil.
func wrap(v js.Value) dom.Element {
	if !v.Truthy() {
		return nil
	}
	return &Element{v: v}
}

// Element wraps an HTMLElement.
type Element struct {
	v js.Value
}

func (e *Element) Tag() string { return strings.ToUpper(e.v.Get("tagName").String()) }

func (e *Element) Value() string     { return e.v.Get("value").String() }
func (e *Element) SetValue(v string) { e.v.Set("value", v) }

func (e *Element) Text() string     { return e.v.Get("textContent").String() }
func (e *Element) SetText(s string) { e.v.Set("textContent", s) }

func (e *Element) HasClass(name string) bool {
	return e.v.Get("classList").Call("contains", name).Bool()
}

func (e *Element) AddClass(name string)    { e.v.Get("classList").Call("add", name) }
func (e *Element) RemoveClass(name string) { e.v.Get("classList").Call("remove", name) }
func (e *Element) SetClassName(s string)   { e.v.Set("className", s) }

func (e *Element) Attr(name string) (string, bool) {
	v := e.v.Call("getAttribute", name)
	if v.IsNull() {
		return "", false
	}
	return v.String(), true
}

func (e *Element) SetAttr(name, value string) { e.v.Call("setAttribute", name, value) }

func (e *Element) SetDisplay(v string) { e.v.Get("style").Set("display", v) }

func (e *Element) Reset() {
	if fn := e.v.Get("reset"); fn.Type() == js.TypeFunction {
		e.v.Call("reset")
	}
}

// On wraps h in a js.Func. The returned function detaches the listener and
// releases the js.Func.
func (e *Element) On(name string, h dom.Handler) func() {
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			h(event{v: args[0]})
		}
		return nil
	})
	e.v.Call("addEventListener", name, fn)

	return func() {
		e.v.Call("removeEventListener", name, fn)
		fn.Release()
	}
}

type event struct {
	v js.Value
}

func (ev event) Target() dom.Element { return wrap(ev.v.Get("target")) }

func (ev event) PreventDefault() { ev.v.Call("preventDefault") }
