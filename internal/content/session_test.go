package content

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go-keyword-radar/internal/dom/htmldoc"
	"go-keyword-radar/internal/messaging"
	"go-keyword-radar/internal/scraper/linkedin"
	"go-keyword-radar/internal/watcher"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	*htmldoc.Document
	url string
}

func (p *page) URL() string {
	return p.url
}

type fakeSettings struct {
	enabled  bool
	keywords []string
}

func (s fakeSettings) Enabled(context.Context) (bool, error) {
	return s.enabled, nil
}

func (s fakeSettings) Keywords(context.Context) ([]string, error) {
	return s.keywords, nil
}

type fakePrompter struct {
	mu       sync.Mutex
	answer   bool
	confirms []string
	alerts   []string
}

func (p *fakePrompter) Confirm(_ context.Context, text string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirms = append(p.confirms, text)
	return p.answer, nil
}

func (p *fakePrompter) Alert(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, text)
	return nil
}

type countingScroller struct{ calls int }

func (s *countingScroller) Scroll(context.Context) error {
	s.calls++
	return nil
}

var fastOptions = Options{
	Timing: watcher.Timing{
		PollInterval:  10 * time.Millisecond,
		MaxWait:       200 * time.Millisecond,
		MutationGrace: 50 * time.Millisecond,
	},
	CountDelay:    10 * time.Millisecond,
	CountFallback: 30 * time.Millisecond,
}

// runtimeBus records every message the session sends to the background.
type runtimeBus struct {
	*messaging.Bus
	mu   sync.Mutex
	sent []messaging.Message
}

func newRuntimeBus() *runtimeBus {
	r := &runtimeBus{Bus: messaging.NewBus()}
	r.HandleDefault(func(_ context.Context, msg messaging.Message) (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.sent = append(r.sent, msg)
		return messaging.StatusResponse{Status: messaging.StatusOK}, nil
	})
	return r
}

func (r *runtimeBus) ofType(t messaging.Type) []messaging.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []messaging.Message
	for _, m := range r.sent {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

type harness struct {
	session   *Session
	runtime   *runtimeBus
	tab       *messaging.Bus
	prompter  *fakePrompter
	mutations chan struct{}
	events    <-chan messaging.Message
	cancel    context.CancelFunc
	done      chan error
}

func start(t *testing.T, p *page, settings fakeSettings, scroller Scroller) *harness {
	t.Helper()
	h := &harness{
		runtime:   newRuntimeBus(),
		tab:       messaging.NewBus(),
		prompter:  &fakePrompter{answer: true},
		mutations: make(chan struct{}, 16),
		done:      make(chan error, 1),
	}
	events, unsubscribe := h.runtime.Subscribe(8)
	h.events = events
	t.Cleanup(unsubscribe)
	h.session = NewSession(p, h.mutations, h.runtime.Bus, h.tab, settings, h.prompter, scroller, fastOptions)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.session.Run(ctx) }()
	t.Cleanup(h.stop)
	return h
}

func (h *harness) mutate(doc *htmldoc.Document, fn func(d *goquery.Document)) {
	doc.Mutate(fn)
	h.mutations <- struct{}{}
}

func (h *harness) stop() {
	h.cancel()
	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
	}
}

const (
	detailPageURL = "https://www.linkedin.com/jobs/view/4012345678/"
	listPageURL   = "https://www.linkedin.com/jobs/search/?currentJobId=42&keywords=go"
)

func TestDetailPageSubmitsMatch(t *testing.T) {
	doc := htmldoc.MustParse(`<html><body><h1>Go Developer</h1><p dir="ltr">Fully remote team.</p></body></html>`)
	h := start(t, &page{doc, detailPageURL}, fakeSettings{enabled: true, keywords: []string{"Remote"}}, nil)

	assert.Equal(t, linkedin.PageDetail, h.session.Kind())
	require.Eventually(t, func() bool {
		return len(h.runtime.ofType(messaging.TypeAddMatch)) == 1
	}, time.Second, 10*time.Millisecond)

	record := h.runtime.ofType(messaging.TypeAddMatch)[0].Data
	assert.Contains(t, record, "Title: Go Developer")
	assert.Contains(t, record, "URL: "+detailPageURL)
	assert.Contains(t, record, "Keywords: Remote")

	require.Eventually(t, func() bool {
		return strings.Contains(doc.HTML(), `class="is-match"`)
	}, time.Second, 10*time.Millisecond)
}

func TestDisabledRadarLeavesPageAlone(t *testing.T) {
	doc := htmldoc.MustParse(`<html><body><h1>Go Developer</h1><p dir="ltr">Fully remote team.</p></body></html>`)
	h := start(t, &page{doc, detailPageURL}, fakeSettings{enabled: false}, nil)

	// handlers are still served while the watchers are off
	require.Eventually(t, func() bool {
		_, err := h.tab.Send(context.Background(), messaging.ShowErrorAlert("hello"))
		return err == nil
	}, time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, h.runtime.ofType(messaging.TypeAddMatch))
	assert.NotContains(t, doc.HTML(), "is-match")
}

func listDoc() *htmldoc.Document {
	return htmldoc.MustParse(`<html><body><ul id="jobs">
		<li id="ember101" data-occludable-job-id="111"></li>
		<li id="ember102" data-occludable-job-id="222"></li>
		<li id="ember-x" data-occludable-job-id="333"></li>
		<li id="ember103"></li>
	</ul>
	<div id="card"><div><div><div><div><div><span><strong>Data Engineer</strong></span></div></div></div></div></div></div>
	<div id="pane"></div></body></html>`)
}

func TestListPageReportsJobCount(t *testing.T) {
	doc := listDoc()
	h := start(t, &page{doc, listPageURL}, fakeSettings{enabled: false}, nil)

	select {
	case msg := <-h.events:
		assert.Equal(t, messaging.TypeUpdateJobCount, msg.Type)
		assert.Equal(t, 2, msg.Count)
	case <-time.After(time.Second):
		t.Fatal("job count was not reported")
	}

	resp, err := h.tab.Send(context.Background(), messaging.GetJobCount())
	require.NoError(t, err)
	assert.Equal(t, messaging.CountResponse{Count: 2}, resp)
}

func TestListPagePaintsCurrentJob(t *testing.T) {
	doc := listDoc()
	h := start(t, &page{doc, listPageURL}, fakeSettings{enabled: true, keywords: []string{"Kafka"}}, nil)

	h.mutate(doc, func(d *goquery.Document) {
		d.Find("#pane").SetHtml(`<h1>Data Engineer</h1><p dir="ltr">Kafka and Spark.</p>`)
	})

	require.Eventually(t, func() bool {
		return len(h.runtime.ofType(messaging.TypeAddMatch)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, h.runtime.ofType(messaging.TypeAddMatch)[0].Data, "URL: https://www.linkedin.com/jobs/view/42/")

	status, ok := h.session.Cache().Status("Data Engineer")
	require.True(t, ok)
	assert.Equal(t, "match", string(status))
	assert.Contains(t, doc.HTML(), `<div id="card" class="job-card-match">`)
}

func TestExtractJobIDs(t *testing.T) {
	tests := []struct {
		name     string
		answer   bool
		wantOpen bool
	}{
		{name: "confirmed", answer: true, wantOpen: true},
		{name: "declined", answer: false, wantOpen: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scroller := &countingScroller{}
			h := start(t, &page{listDoc(), listPageURL}, fakeSettings{enabled: false}, scroller)
			h.prompter.answer = tt.answer

			var resp any
			require.Eventually(t, func() bool {
				var err error
				resp, err = h.tab.Send(context.Background(), messaging.ExtractJobIDs())
				return err == nil
			}, time.Second, 10*time.Millisecond)

			assert.Equal(t, 1, scroller.calls)
			require.Len(t, h.prompter.confirms, 1)
			assert.Contains(t, h.prompter.confirms[0], "open all the 2 matches")

			if !tt.wantOpen {
				assert.Equal(t, messaging.CountResponse{Count: 0}, resp)
				time.Sleep(50 * time.Millisecond)
				assert.Empty(t, h.runtime.ofType(messaging.TypeOpenJobTabs))
				return
			}

			assert.Equal(t, messaging.CountResponse{Count: 2}, resp)
			require.Eventually(t, func() bool {
				return len(h.runtime.ofType(messaging.TypeOpenJobTabs)) == 1
			}, time.Second, 10*time.Millisecond)
			assert.Equal(t, []string{
				"https://www.linkedin.com/jobs/view/111/",
				"https://www.linkedin.com/jobs/view/222/",
			}, h.runtime.ofType(messaging.TypeOpenJobTabs)[0].URLs)
		})
	}
}

func TestOtherPageHandlers(t *testing.T) {
	doc := htmldoc.MustParse(`<html><body><h1>Feed</h1></body></html>`)
	h := start(t, &page{doc, "https://www.linkedin.com/feed/"}, fakeSettings{enabled: true}, nil)
	assert.Equal(t, linkedin.PageOther, h.session.Kind())

	require.Eventually(t, func() bool {
		_, err := h.tab.Send(context.Background(), messaging.ShowErrorAlert(linkedin.WrongPageMessage))
		return err == nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{linkedin.WrongPageMessage}, h.prompter.alerts)

	_, err := h.tab.Send(context.Background(), messaging.GetJobCount())
	assert.True(t, errors.Is(err, messaging.ErrNoListener))

	h.stop()
	_, err = h.tab.Send(context.Background(), messaging.ExtractJobIDs())
	assert.True(t, errors.Is(err, messaging.ErrNoListener), "handlers must go away with the page")
}
