// Package annotate paints match / no-match markers on job cards.
package annotate

import (
	"fmt"
	"log"
	"strings"

	"go-keyword-radar/internal/dom"
)

// Status is the verdict for one job title.
type Status string

const (
	StatusMatch   Status = "match"
	StatusNoMatch Status = "no-match"
)

// Marker class pairs. Exactly one class of each pair is present after painting.
const (
	HeaderMatch      = "is-match"
	HeaderNoMatch    = "is-not-match"
	CardMatch        = "job-card-match"
	CardNoMatch      = "job-card-no-match"
	SecondaryMatch   = "strong-match"
	SecondaryNoMatch = "strong-no-match"
)

const (
	// DefaultDepth is how many parents separate the card title from its card
	// container in the current list markup.
	DefaultDepth = 7

	secondarySelector = "strong"
	containerTag      = "div"
)

// Card is a job card in the list pane: the node holding the title text and
// the container painted around it.
type Card struct {
	Title     dom.Element
	Container dom.Element
}

// Lookup resolves the cached verdict of a title.
type Lookup interface {
	Status(title string) (Status, bool)
}

// Engine locates cards and applies markers.
type Engine struct {
	depth int
}

func NewEngine(depth int) *Engine {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Engine{depth: depth}
}

// Container returns the card container of a secondary title node, or nil
// when the node does not sit depth levels under a div.
func (e *Engine) Container(secondary dom.Element) dom.Element {
	c := dom.Ancestor(secondary, e.depth)
	if c == nil || !strings.EqualFold(c.Tag(), containerTag) {
		return nil
	}
	return c
}

// Locate finds the first card whose title node text equals title.
// ok is false when no such card exists in the current DOM.
func (e *Engine) Locate(doc dom.Document, title string) (Card, bool, error) {
	nodes, err := doc.QueryAll(secondarySelector)
	if err != nil {
		return Card{}, false, fmt.Errorf("failed to query card titles: %w", err)
	}
	for _, n := range nodes {
		if dom.TrimmedText(n) != title {
			continue
		}
		if c := e.Container(n); c != nil {
			return Card{Title: n, Container: c}, true, nil
		}
	}
	return Card{}, false, nil
}

// PaintHeader sets the header marker pair.
func PaintHeader(header dom.Element, status Status) error {
	return paint(header, status, HeaderMatch, HeaderNoMatch)
}

// PaintCard sets the container and title node marker pairs.
func PaintCard(card Card, status Status) error {
	if err := paint(card.Container, status, CardMatch, CardNoMatch); err != nil {
		return err
	}
	return paint(card.Title, status, SecondaryMatch, SecondaryNoMatch)
}

// ClearHeader removes both header markers.
func ClearHeader(header dom.Element) error {
	return header.RemoveClass(HeaderMatch, HeaderNoMatch)
}

func paint(el dom.Element, status Status, match, noMatch string) error {
	add, remove := match, noMatch
	if status != StatusMatch {
		add, remove = noMatch, match
	}
	if err := el.RemoveClass(remove); err != nil {
		return fmt.Errorf("failed to remove %s: %w", remove, err)
	}
	if err := el.AddClass(add); err != nil {
		return fmt.Errorf("failed to add %s: %w", add, err)
	}
	return nil
}

// ReapplyAll repaints every card whose title has a cached verdict. Virtualized
// lists recycle card nodes and drop the classes painted on them earlier.
// It returns the number of cards painted.
func (e *Engine) ReapplyAll(doc dom.Document, lookup Lookup) int {
	nodes, err := doc.QueryAll(secondarySelector)
	if err != nil {
		log.Printf("⚠️ Failed to list cards for repaint: %v", err)
		return 0
	}

	painted := 0
	for _, n := range nodes {
		status, ok := lookup.Status(dom.TrimmedText(n))
		if !ok {
			continue
		}
		c := e.Container(n)
		if c == nil {
			continue
		}
		if err := PaintCard(Card{Title: n, Container: c}, status); err != nil {
			log.Printf("⚠️ Failed to repaint card: %v", err)
			continue
		}
		painted++
	}
	return painted
}
