package browser

import (
	"fmt"
	"sync"

	"go-keyword-radar/internal/dom"

	"github.com/playwright-community/playwright-go"
)

// Document exposes a live playwright page as a dom.Document. Every element
// pins an ElementHandle in the browser; query through Scope so the handles
// are disposed once the caller is done with them.
type Document struct {
	page  playwright.Page
	scope *handleScope
}

func NewDocument(page playwright.Page) *Document {
	return &Document{page: page}
}

func (d *Document) URL() string {
	return d.page.URL()
}

// Scope implements dom.Scoper.
func (d *Document) Scope() (dom.Document, func()) {
	s := &handleScope{}
	return &Document{page: d.page, scope: s}, s.release
}

func (d *Document) QueryAll(selector string) ([]dom.Element, error) {
	handles, err := d.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	out := make([]dom.Element, len(handles))
	for i, h := range handles {
		out[i] = d.scope.track(h)
	}
	return out, nil
}

func (d *Document) Query(selector string) (dom.Element, error) {
	h, err := d.page.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	if h == nil {
		return nil, nil
	}
	return d.scope.track(h), nil
}

// handleScope collects the handles created through one scoped Document.
// A nil scope tracks nothing.
type handleScope struct {
	mu       sync.Mutex
	elements []*element
}

func (s *handleScope) track(h playwright.ElementHandle) *element {
	el := &element{handle: h, scope: s}
	if s == nil {
		return el
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = append(s.elements, el)
	return el
}

func (s *handleScope) keep(el *element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el.kept = true
}

// release disposes every handle of the scope that was not kept.
func (s *handleScope) release() {
	s.mu.Lock()
	var dispose []playwright.ElementHandle
	for _, el := range s.elements {
		if !el.kept {
			dispose = append(dispose, el.handle)
		}
	}
	s.elements = nil
	s.mu.Unlock()

	for _, h := range dispose {
		// fails only when the page is already gone
		_ = h.Dispose()
	}
}

// element reads through the handle on every call; the node may have been
// re-rendered since it was queried. Read errors degrade to zero values.
type element struct {
	handle playwright.ElementHandle
	scope  *handleScope
	kept   bool
}

// Keep implements dom.Keeper.
func (e *element) Keep() {
	if e.scope != nil {
		e.scope.keep(e)
	}
}

func (e *element) eval(script string, arg any) (any, error) {
	if arg == nil {
		return e.handle.Evaluate(script)
	}
	return e.handle.Evaluate(script, arg)
}

func (e *element) evalString(script string) string {
	v, err := e.eval(script, nil)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (e *element) Text() string {
	text, err := e.handle.TextContent()
	if err != nil {
		return ""
	}
	return text
}

func (e *element) Tag() string {
	return e.evalString("el => el.tagName.toLowerCase()")
}

func (e *element) ID() string {
	return e.evalString("el => el.id")
}

func (e *element) Parent() dom.Element {
	h, err := e.handle.EvaluateHandle("el => el.parentElement")
	if err != nil {
		return nil
	}
	parent := h.AsElement()
	if parent == nil {
		h.Dispose()
		return nil
	}
	return e.scope.track(parent)
}

func (e *element) Attr(name string) (string, bool) {
	v, err := e.eval("(el, name) => el.getAttribute(name)", name)
	if err != nil || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (e *element) HasClass(class string) bool {
	v, err := e.eval("(el, c) => el.classList.contains(c)", class)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

func (e *element) AddClass(classes ...string) error {
	if _, err := e.eval("(el, cs) => el.classList.add(...cs)", classes); err != nil {
		return fmt.Errorf("add class %v: %w", classes, err)
	}
	return nil
}

func (e *element) RemoveClass(classes ...string) error {
	if _, err := e.eval("(el, cs) => el.classList.remove(...cs)", classes); err != nil {
		return fmt.Errorf("remove class %v: %w", classes, err)
	}
	return nil
}

func (e *element) SetAttr(name, value string) error {
	if _, err := e.eval("(el, [n, v]) => el.setAttribute(n, v)", []string{name, value}); err != nil {
		return fmt.Errorf("set attribute %s: %w", name, err)
	}
	return nil
}
