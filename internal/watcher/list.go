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

// ListPhase is the lifecycle of a job list page watcher.
type ListPhase int

const (
	// ListWaiting waits, within MaxWait, for the detail pane to load.
	ListWaiting ListPhase = iota
	// ListWatching re-evaluates on every mutation for the life of the page.
	ListWatching
	ListStopped
)

// ListWatcher follows the detail pane of a job list page as the user clicks
// through cards, and keeps every card it has a verdict for painted.
type ListWatcher struct {
	doc      dom.Document
	pageURL  func() string
	keywords []string
	sink     Sink
	engine   *annotate.Engine
	cache    *Cache
	timing   Timing
	now      func() time.Time

	phase     ListPhase
	lastTitle string
}

// NewListWatcher builds a watcher over doc. pageURL is read on every new
// title because the list page changes its URL without reloading.
func NewListWatcher(doc dom.Document, pageURL func() string, keywords []string, sink Sink, engine *annotate.Engine, cache *Cache, timing Timing) *ListWatcher {
	return &ListWatcher{
		doc:      doc,
		pageURL:  pageURL,
		keywords: keywords,
		sink:     sink,
		engine:   engine,
		cache:    cache,
		timing:   timing,
		now:      time.Now,
		phase:    ListWaiting,
	}
}

func (w *ListWatcher) Phase() ListPhase {
	return w.phase
}

// LastTitle is the title handled by the latest evaluation.
func (w *ListWatcher) LastTitle() string {
	return w.lastTitle
}

// Evaluate handles the job currently shown in the detail pane. It returns
// false only while the description has not loaded yet.
func (w *ListWatcher) Evaluate() bool {
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

	h1, err := doc.Query(linkedin.TitleSelector)
	if err != nil {
		log.Printf("⚠️ Failed to query job title: %v", err)
		return true
	}
	if h1 == nil {
		return true
	}

	title := dom.TrimmedText(h1)
	if title == w.lastTitle {
		return true
	}
	log.Printf("🔎 New job in detail pane: %q", title)

	if err := annotate.ClearHeader(h1); err != nil {
		log.Printf("⚠️ Failed to clear title markers: %v", err)
	}

	card, ok, err := w.engine.Locate(doc, title)
	if err != nil {
		log.Printf("⚠️ %v", err)
	}
	if !ok {
		log.Printf("⚠️ No card found for %q, skipping styling", title)
		w.lastTitle = title
		return true
	}

	cached, hit := w.cache.Get(title)
	if !hit {
		found := filter.Matches(text, w.keywords)
		cached = CacheEntry{Status: annotate.StatusNoMatch, Keywords: found, Title: card.Title}
		dom.Keep(card.Title)
		if len(found) > 0 {
			cached.Status = annotate.StatusMatch
		}
		w.cache.Put(title, cached)

		if cached.Status == annotate.StatusMatch {
			jobURL := linkedin.CurrentJobURL(w.pageURL())
			w.sink.Submit(entry.Format(title, jobURL, found, w.now()))
			log.Printf("✅ Match on %q: %v", title, found)
		}
	}

	if err := annotate.PaintHeader(h1, cached.Status); err != nil {
		log.Printf("⚠️ Failed to paint title: %v", err)
	}
	if err := annotate.PaintCard(card, cached.Status); err != nil {
		log.Printf("⚠️ Failed to paint card: %v", err)
	}

	w.lastTitle = title
	w.engine.ReapplyAll(doc, w.cache)
	return true
}

// Run waits for the detail pane within MaxWait, then keeps
// evaluating on every mutation until ctx ends or mutations closes.
func (w *ListWatcher) Run(ctx context.Context, mutations <-chan struct{}) {
	defer func() { w.phase = ListStopped }()

	if !w.Evaluate() && !w.waitForContent(ctx, mutations) {
		return
	}

	if !w.hasTitle() {
		log.Printf("⚠️ No job title on the list page, content watcher not started")
		return
	}

	w.phase = ListWatching
	log.Printf("👀 Content watcher started")
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-mutations:
			if !ok {
				return
			}
			w.Evaluate()
		}
	}
}

func (w *ListWatcher) hasTitle() bool {
	doc, release := dom.Scope(w.doc)
	defer release()
	h1, err := doc.Query(linkedin.TitleSelector)
	return err == nil && h1 != nil
}

// waitForContent is the first phase. It returns false when the watcher
// should stop without entering the second phase.
func (w *ListWatcher) waitForContent(ctx context.Context, mutations <-chan struct{}) bool {
	deadline := time.NewTimer(w.timing.MaxWait)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-mutations:
			if !ok {
				return false
			}
			if w.Evaluate() {
				return true
			}
		case <-deadline.C:
			// the content watcher still starts if a title is on the page
			log.Printf("⌛ Detail pane not ready after %v", w.timing.MaxWait)
			return true
		}
	}
}
