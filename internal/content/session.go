// Package content runs the radar inside one loaded page: it picks the
// watcher for the page kind, reports the job count of list pages and
// answers the popup's requests addressed to the tab.
package content

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go-keyword-radar/internal/annotate"
	"go-keyword-radar/internal/dom"
	"go-keyword-radar/internal/messaging"
	"go-keyword-radar/internal/scraper/linkedin"
	"go-keyword-radar/internal/watcher"
)

// Page is the loaded document plus its current address. List pages change
// their URL in place, so URL is read on demand.
type Page interface {
	dom.Document
	URL() string
}

// Settings is the part of the persisted settings a session reads once at
// start.
type Settings interface {
	Enabled(ctx context.Context) (bool, error)
	Keywords(ctx context.Context) ([]string, error)
}

// Prompter shows blocking dialogs in the page.
type Prompter interface {
	Confirm(ctx context.Context, text string) (bool, error)
	Alert(ctx context.Context, text string) error
}

// Scroller loads lazily rendered list items before job ids are read.
type Scroller interface {
	Scroll(ctx context.Context) error
}

type Options struct {
	Timing        watcher.Timing
	CardDepth     int
	CountDelay    time.Duration
	CountFallback time.Duration

	// OnGiveUp runs when a detail page never shows its description.
	OnGiveUp func()
}

// DefaultOptions mirrors the content script constants.
var DefaultOptions = Options{
	Timing:        watcher.DefaultTiming,
	CardDepth:     annotate.DefaultDepth,
	CountDelay:    time.Second,
	CountFallback: 3 * time.Second,
}

// Session lives as long as one page load.
type Session struct {
	page      Page
	mutations <-chan struct{}
	runtime   *messaging.Bus
	tab       *messaging.Bus
	settings  Settings
	prompter  Prompter
	scroller  Scroller
	opts      Options

	kind    linkedin.PageKind
	counter *watcher.Counter
	cache   *watcher.Cache

	wg sync.WaitGroup
}

// NewSession prepares a session for page. runtime reaches the background
// service; tab is the per-tab bus the popup sends to. scroller may be nil.
func NewSession(page Page, mutations <-chan struct{}, runtime, tab *messaging.Bus, settings Settings, prompter Prompter, scroller Scroller, opts Options) *Session {
	if opts.CardDepth <= 0 {
		opts.CardDepth = annotate.DefaultDepth
	}
	return &Session{
		page:      page,
		mutations: mutations,
		runtime:   runtime,
		tab:       tab,
		settings:  settings,
		prompter:  prompter,
		scroller:  scroller,
		opts:      opts,
		kind:      linkedin.Classify(page.URL()),
		cache:     watcher.NewCache(),
	}
}

func (s *Session) Kind() linkedin.PageKind {
	return s.kind
}

// Cache exposes the verdicts of a list page session.
func (s *Session) Cache() *watcher.Cache {
	return s.cache
}

// Run serves the page until ctx is cancelled, which happens on the next
// navigation or when the tab closes.
func (s *Session) Run(ctx context.Context) error {
	s.registerHandlers()
	defer s.removeHandlers()

	switch s.kind {
	case linkedin.PageList:
		s.counter = watcher.NewCounter(s.page, func(count int) {
			s.notify(messaging.UpdateJobCount(count))
		})
		s.tab.Handle(messaging.TypeGetJobCount, s.handleGetJobCount)
		defer s.tab.Remove(messaging.TypeGetJobCount)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.counter.Run(ctx, s.opts.CountDelay, s.opts.CountFallback)
		}()
	case linkedin.PageOther:
		<-ctx.Done()
		s.wg.Wait()
		return nil
	}

	keywords, enabled, err := s.loadSettings(ctx)
	if err != nil {
		s.wg.Wait()
		return err
	}
	if enabled {
		log.Printf("🔎 Radar on %s page, keywords: %v", s.kind, keywords)
		s.watch(ctx, keywords)
	}

	<-ctx.Done()
	s.wg.Wait()
	return nil
}

func (s *Session) loadSettings(ctx context.Context) ([]string, bool, error) {
	enabled, err := s.settings.Enabled(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read radar state: %w", err)
	}
	if !enabled {
		log.Printf("⏸️ Radar disabled, %s page left untouched", s.kind)
		return nil, false, nil
	}
	keywords, err := s.settings.Keywords(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read keywords: %w", err)
	}
	return keywords, true, nil
}

func (s *Session) watch(ctx context.Context, keywords []string) {
	sink := watcher.SinkFunc(s.submit)

	switch s.kind {
	case linkedin.PageDetail:
		w := watcher.NewDetailWatcher(s.page, linkedin.DetailURL(s.page.URL()), keywords, sink, s.opts.Timing)
		w.OnGiveUp = s.opts.OnGiveUp
		w.Run(ctx, s.mutations)
	case linkedin.PageList:
		engine := annotate.NewEngine(s.opts.CardDepth)
		w := watcher.NewListWatcher(s.page, s.page.URL, keywords, sink, engine, s.cache, s.opts.Timing)
		w.Run(ctx, s.mutations)
	}
}

// submit hands a match to the background service. Failures are only logged.
func (s *Session) submit(record string) {
	if _, err := s.runtime.Send(context.Background(), messaging.AddMatch(record)); err != nil {
		log.Printf("⚠️ Failed to submit match: %v", err)
	}
}

// notify is best effort: the popup is usually closed.
func (s *Session) notify(msg messaging.Message) {
	_ = s.runtime.Notify(msg)
}

func (s *Session) registerHandlers() {
	s.tab.Handle(messaging.TypeShowErrorAlert, s.handleShowErrorAlert)
	s.tab.Handle(messaging.TypeExtractJobIDs, s.handleExtractJobIDs)
}

func (s *Session) removeHandlers() {
	s.tab.Remove(messaging.TypeShowErrorAlert)
	s.tab.Remove(messaging.TypeExtractJobIDs)
}

func (s *Session) handleGetJobCount(context.Context, messaging.Message) (any, error) {
	return messaging.CountResponse{Count: s.counter.Saved()}, nil
}

func (s *Session) handleShowErrorAlert(ctx context.Context, msg messaging.Message) (any, error) {
	if err := s.prompter.Alert(ctx, msg.Message); err != nil {
		return nil, fmt.Errorf("failed to show alert: %w", err)
	}
	return nil, nil
}

// handleExtractJobIDs collects the job URLs of the list, asks for
// confirmation and dispatches the batch without waiting for it.
func (s *Session) handleExtractJobIDs(ctx context.Context, _ messaging.Message) (any, error) {
	if s.scroller != nil {
		if err := s.scroller.Scroll(ctx); err != nil {
			log.Printf("⚠️ Failed to scroll job list: %v", err)
		}
	}

	doc, release := dom.Scope(s.page)
	urls, err := linkedin.JobURLs(doc)
	release()
	if err != nil {
		return nil, err
	}

	confirmed, err := s.prompter.Confirm(ctx, linkedin.ConfirmOpenMessage(len(urls)))
	if err != nil {
		return nil, fmt.Errorf("failed to ask for confirmation: %w", err)
	}
	if !confirmed || len(urls) == 0 {
		log.Printf("🚫 Opening %d jobs declined", len(urls))
		return messaging.CountResponse{Count: 0}, nil
	}

	log.Printf("🗂️ Opening %d jobs in new tabs", len(urls))
	// the batch outlives the page that started it
	go func() {
		if _, err := s.runtime.Send(context.WithoutCancel(ctx), messaging.OpenJobTabs(urls)); err != nil {
			log.Printf("⚠️ Failed to dispatch job tabs: %v", err)
		}
	}()
	return messaging.CountResponse{Count: len(urls)}, nil
}
