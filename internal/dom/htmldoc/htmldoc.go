// Package htmldoc implements dom.Document over an in-memory goquery document.
// It is used to replay saved pages and in tests.
package htmldoc

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go-keyword-radar/internal/dom"

	"github.com/PuerkitoBio/goquery"
)

// Document is safe for one writer (Mutate) and concurrent readers.
type Document struct {
	mu  sync.RWMutex
	doc *goquery.Document
}

func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Document{doc: doc}, nil
}

func MustParse(html string) *Document {
	d, err := Parse(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	return d
}

// Mutate runs fn with exclusive access to the underlying document.
func (d *Document) Mutate(fn func(doc *goquery.Document)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.doc)
}

// HTML renders the current document.
func (d *Document) HTML() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	html, _ := d.doc.Html()
	return html
}

func (d *Document) QueryAll(selector string) ([]dom.Element, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []dom.Element
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &element{owner: d, sel: s})
	})
	return out, nil
}

func (d *Document) Query(selector string) (dom.Element, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := d.doc.Find(selector).First()
	if s.Length() == 0 {
		return nil, nil
	}
	return &element{owner: d, sel: s}, nil
}

type element struct {
	owner *Document
	sel   *goquery.Selection
}

func (e *element) Text() string {
	e.owner.mu.RLock()
	defer e.owner.mu.RUnlock()
	return e.sel.Text()
}

func (e *element) Tag() string {
	e.owner.mu.RLock()
	defer e.owner.mu.RUnlock()
	return goquery.NodeName(e.sel)
}

func (e *element) Parent() dom.Element {
	e.owner.mu.RLock()
	defer e.owner.mu.RUnlock()
	p := e.sel.Parent()
	if p.Length() == 0 {
		return nil
	}
	return &element{owner: e.owner, sel: p}
}

func (e *element) Attr(name string) (string, bool) {
	e.owner.mu.RLock()
	defer e.owner.mu.RUnlock()
	return e.sel.Attr(name)
}

func (e *element) ID() string {
	id, _ := e.Attr("id")
	return id
}

func (e *element) HasClass(class string) bool {
	e.owner.mu.RLock()
	defer e.owner.mu.RUnlock()
	return e.sel.HasClass(class)
}

func (e *element) AddClass(classes ...string) error {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	e.sel.AddClass(classes...)
	return nil
}

func (e *element) RemoveClass(classes ...string) error {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	e.sel.RemoveClass(classes...)
	return nil
}

func (e *element) SetAttr(name, value string) error {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	e.sel.SetAttr(name, value)
	return nil
}
