// Package dom is the small slice of the page DOM the radar reads and paints.
// It is implemented over a live playwright page and over goquery snapshots.
package dom

import "strings"

// Document is a page that can be queried with CSS selectors.
type Document interface {
	// QueryAll returns every element matching selector, in document order.
	QueryAll(selector string) ([]Element, error)
	// Query returns the first element matching selector, or nil.
	Query(selector string) (Element, error)
}

// Element is a single DOM element.
type Element interface {
	// Text is the element's textContent.
	Text() string
	// Tag is the lower-case tag name.
	Tag() string
	// Parent returns the parent element, or nil at the root.
	Parent() Element
	Attr(name string) (string, bool)
	ID() string
	HasClass(class string) bool
	AddClass(classes ...string) error
	RemoveClass(classes ...string) error
	SetAttr(name, value string) error
}

// Scoper is implemented by documents whose elements pin resources in the
// browser. Elements queried through the scoped view, and their parents, stay
// usable until release runs.
type Scoper interface {
	Scope() (doc Document, release func())
}

// Keeper is implemented by elements that should survive the release of the
// scope they were queried in.
type Keeper interface {
	Keep()
}

// Scope returns a scoped view of doc and its release function. Documents
// that pin nothing are returned as they are, with a no-op release.
func Scope(doc Document) (Document, func()) {
	if s, ok := doc.(Scoper); ok {
		return s.Scope()
	}
	return doc, func() {}
}

// Keep exempts el from the release of its scope.
func Keep(el Element) {
	if k, ok := el.(Keeper); ok {
		k.Keep()
	}
}

// Ancestor walks depth parent levels up from el. It returns nil when the
// chain ends before depth levels.
func Ancestor(el Element, depth int) Element {
	cur := el
	for i := 0; i < depth; i++ {
		if cur == nil {
			return nil
		}
		cur = cur.Parent()
	}
	return cur
}

// TrimmedText returns the element text with surrounding whitespace removed.
func TrimmedText(el Element) string {
	return strings.TrimSpace(el.Text())
}

// Texts returns the text of each element.
func Texts(els []Element) []string {
	out := make([]string, len(els))
	for i, el := range els {
		out[i] = el.Text()
	}
	return out
}
