package watcher

import (
	"context"
	"log"
	"time"

	"go-keyword-radar/internal/annotate"
	"go-keyword-radar/internal/dom"
	"go-keyword-radar/internal/entry"
	"go-keyword-radar/internal/filter"
	"go-keyword-radar/internal/scraper/linkedin"
)

// DetailState is the lifecycle of a job detail page watcher.
type DetailState int

const (
	DetailWaiting DetailState = iota
	DetailFound
	DetailDone
	DetailGaveUp
)

func (s DetailState) String() string {
	switch s {
	case DetailWaiting:
		return "WAITING"
	case DetailFound:
		return "FOUND"
	case DetailDone:
		return "DONE"
	default:
		return "GAVE_UP"
	}
}

const styledAttr = "data-keyword-styled"

// DetailWatcher evaluates a single job view page exactly once.
type DetailWatcher struct {
	doc      dom.Document
	jobURL   string
	keywords []string
	sink     Sink
	timing   Timing
	now      func() time.Time

	state DetailState

	// OnGiveUp runs when the page never showed a description.
	OnGiveUp func()
}

func NewDetailWatcher(doc dom.Document, jobURL string, keywords []string, sink Sink, timing Timing) *DetailWatcher {
	return &DetailWatcher{
		doc:      doc,
		jobURL:   jobURL,
		keywords: keywords,
		sink:     sink,
		timing:   timing,
		now:      time.Now,
		state:    DetailWaiting,
	}
}

func (w *DetailWatcher) State() DetailState {
	return w.state
}

// Evaluate is the single transition function fed by both the poll timer and
// mutation events. It returns true once the page has been handled; calls
// after that are no-ops.
func (w *DetailWatcher) Evaluate() bool {
	if w.state != DetailWaiting {
		return true
	}
	doc, release := dom.Scope(w.doc)
	defer release()

	text, ready, err := readDescription(doc)
	if err != nil {
		log.Printf("⚠️ Failed to read job description: %v", err)
		return false
	}
	if !ready {
		return false
	}
	w.state = DetailFound

	found := filter.Matches(text, w.keywords)
	h1, err := doc.Query(linkedin.TitleSelector)
	if err != nil {
		log.Printf("⚠️ Failed to query job title: %v", err)
	}

	status := annotate.StatusNoMatch
	if len(found) > 0 {
		status = annotate.StatusMatch
		title := "Unknown"
		if h1 != nil {
			title = dom.TrimmedText(h1)
		}
		w.sink.Submit(entry.Format(title, w.jobURL, found, w.now()))
		log.Printf("✅ Match on %s: %v", w.jobURL, found)
	}

	if h1 != nil {
		w.paintHeader(h1, status)
	}
	w.state = DetailDone
	return true
}

// paintHeader paints the title once per page; a header already styled by an
// earlier injection is left alone.
func (w *DetailWatcher) paintHeader(h1 dom.Element, status annotate.Status) {
	if _, styled := h1.Attr(styledAttr); styled {
		return
	}
	if err := annotate.ClearHeader(h1); err != nil {
		log.Printf("⚠️ Failed to clear title markers: %v", err)
		return
	}
	if err := annotate.PaintHeader(h1, status); err != nil {
		log.Printf("⚠️ Failed to paint title: %v", err)
		return
	}
	if err := h1.SetAttr(styledAttr, "true"); err != nil {
		log.Printf("⚠️ Failed to mark title as styled: %v", err)
	}
}

// Run drives Evaluate from a poll ticker and from mutations until the page is
// handled, MaxWait plus the grace period runs out, or ctx ends.
func (w *DetailWatcher) Run(ctx context.Context, mutations <-chan struct{}) DetailState {
	if w.Evaluate() {
		return w.state
	}

	ticker := time.NewTicker(w.timing.PollInterval)
	defer ticker.Stop()
	poll := ticker.C

	deadline := time.NewTimer(w.timing.MaxWait)
	defer deadline.Stop()

	var grace <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return w.state
		case <-poll:
			if w.Evaluate() {
				return w.state
			}
		case _, ok := <-mutations:
			if !ok {
				mutations = nil
				continue
			}
			if w.Evaluate() {
				return w.state
			}
		case <-deadline.C:
			// polling stops, mutations keep the watcher alive a little longer
			ticker.Stop()
			poll = nil
			grace = time.After(w.timing.MutationGrace)
		case <-grace:
			w.state = DetailGaveUp
			log.Printf("⌛ No job description on %s, giving up", w.jobURL)
			if w.OnGiveUp != nil {
				w.OnGiveUp()
			}
			return w.state
		}
	}
}
