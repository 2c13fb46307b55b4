package browser

import (
	"context"
	"fmt"
	"log"
	"sync"

	"go-keyword-radar/internal/messaging"

	"github.com/playwright-community/playwright-go"
)

const bindingName = "__radarNotify"

// initScript runs in every document of the context. It reports DOM
// mutations (at most one per animation frame burst) and tab focus back to
// Go, and ships the marker styles.
const initScript = `(() => {
	if (window.top !== window) return;
	const notify = (kind) => { try { window.` + bindingName + `(kind); } catch (e) {} };
	let scheduled = false;
	const observe = () => {
		const style = document.createElement("style");
		style.textContent = ` + "`" + `
			.is-match { color: #0a7a2f !important; }
			.is-not-match { color: #b3261e !important; }
			.job-card-match { box-shadow: inset 4px 0 0 #0a7a2f; }
			.job-card-no-match { box-shadow: inset 4px 0 0 #b3261e; opacity: .75; }
			.strong-match { color: #0a7a2f; }
			.strong-no-match { color: #b3261e; }
			.radar-dialog { position: fixed; inset: 0; z-index: 2147483647; background: rgba(0,0,0,.4); display: flex; align-items: center; justify-content: center; }
			.radar-dialog > div { background: #fff; padding: 16px; border-radius: 8px; max-width: 480px; }
			.radar-dialog pre { white-space: pre-wrap; font-family: inherit; }
			.radar-dialog button { margin-right: 8px; }
		` + "`" + `;
		document.head.appendChild(style);
		new MutationObserver(() => {
			if (scheduled) return;
			scheduled = true;
			requestAnimationFrame(() => { scheduled = false; notify("mutation"); });
		}).observe(document.documentElement, { childList: true, subtree: true, characterData: true });
	};
	if (document.readyState === "loading") {
		document.addEventListener("DOMContentLoaded", observe);
	} else {
		observe();
	}
	window.addEventListener("focus", () => notify("focus"));
	document.addEventListener("visibilitychange", () => {
		if (document.visibilityState === "visible") notify("focus");
	});
})();`

// SessionFunc serves one page load of tab until ctx is cancelled.
type SessionFunc func(ctx context.Context, tab *Tab, mutations <-chan struct{})

// Tab is a browser page plus the message bus the popup uses to reach it.
type Tab struct {
	id   int
	page playwright.Page
	doc  *Document
	bus  *messaging.Bus

	// lifecycle serializes session replacement
	lifecycle sync.Mutex

	mu        sync.Mutex
	mutations chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
}

func (t *Tab) ID() int {
	return t.id
}

func (t *Tab) Page() playwright.Page {
	return t.page
}

func (t *Tab) Document() *Document {
	return t.doc
}

func (t *Tab) Bus() *messaging.Bus {
	return t.bus
}

func (t *Tab) URL() string {
	return t.page.URL()
}

// signal records a mutation without blocking; pending signals coalesce.
func (t *Tab) signal() {
	t.mu.Lock()
	ch := t.mutations
	t.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Host attaches a session to every page load of a browser context.
type Host struct {
	base context.Context
	bctx playwright.BrowserContext
	run  SessionFunc

	mu     sync.Mutex
	tabs   map[playwright.Page]*Tab
	active *Tab
	nextID int

	wg sync.WaitGroup
}

func NewHost(ctx context.Context, bctx playwright.BrowserContext, run SessionFunc) (*Host, error) {
	h := &Host{
		base: ctx,
		bctx: bctx,
		run:  run,
		tabs: make(map[playwright.Page]*Tab),
	}

	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(initScript)}); err != nil {
		return nil, fmt.Errorf("failed to add init script: %w", err)
	}
	if err := bctx.ExposeBinding(bindingName, h.onBinding); err != nil {
		return nil, fmt.Errorf("failed to expose %s: %w", bindingName, err)
	}

	bctx.OnPage(func(page playwright.Page) {
		h.attach(page)
	})
	for _, page := range bctx.Pages() {
		h.attach(page)
	}
	return h, nil
}

// onBinding runs on the playwright dispatcher and must not block.
func (h *Host) onBinding(source *playwright.BindingSource, args ...any) any {
	if source == nil || source.Page == nil || len(args) == 0 {
		return nil
	}
	tab := h.lookup(source.Page)
	if tab == nil {
		return nil
	}

	switch kind, _ := args[0].(string); kind {
	case "mutation":
		tab.signal()
	case "focus":
		h.setActive(tab)
	}
	return nil
}

func (h *Host) lookup(page playwright.Page) *Tab {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tabs[page]
}

func (h *Host) attach(page playwright.Page) *Tab {
	h.mu.Lock()
	if tab, ok := h.tabs[page]; ok {
		h.mu.Unlock()
		return tab
	}
	h.nextID++
	tab := &Tab{
		id:   h.nextID,
		page: page,
		doc:  NewDocument(page),
		bus:  messaging.NewBus(),
	}
	h.tabs[page] = tab
	if h.active == nil {
		h.active = tab
	}
	h.mu.Unlock()

	page.OnLoad(func(playwright.Page) {
		go h.startSession(tab)
	})
	page.OnClose(func(playwright.Page) {
		go h.detach(tab)
	})
	log.Printf("🗂️ Tab %d attached", tab.id)
	return tab
}

func (h *Host) detach(tab *Tab) {
	h.stopSession(tab)

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.tabs, tab.page)
	if h.active == tab {
		h.active = nil
		for _, other := range h.tabs {
			h.active = other
			break
		}
	}
	log.Printf("🗑️ Tab %d closed", tab.id)
}

// stopSession cancels the running session of tab and waits for it.
func (h *Host) stopSession(tab *Tab) {
	tab.lifecycle.Lock()
	defer tab.lifecycle.Unlock()
	h.stopLocked(tab)
}

func (h *Host) stopLocked(tab *Tab) {
	tab.mu.Lock()
	cancel, done := tab.cancel, tab.done
	tab.cancel, tab.done, tab.mutations = nil, nil, nil
	tab.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// startSession replaces the session of tab with a fresh one for the page
// that just loaded.
func (h *Host) startSession(tab *Tab) {
	tab.lifecycle.Lock()
	defer tab.lifecycle.Unlock()

	h.stopLocked(tab)
	if h.base.Err() != nil {
		return
	}

	ctx, cancel := context.WithCancel(h.base)
	mutations := make(chan struct{}, 1)
	done := make(chan struct{})

	tab.mu.Lock()
	tab.mutations, tab.cancel, tab.done = mutations, cancel, done
	tab.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer close(done)
		h.run(ctx, tab, mutations)
	}()
}

func (h *Host) setActive(tab *Tab) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.tabs[tab.page]; ok {
		h.active = tab
	}
}

// Active returns the tab the user looked at last, or nil.
func (h *Host) Active() *Tab {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Open navigates the given tab, or a new one when tab is nil.
func (h *Host) Open(tab *Tab, url string) (*Tab, error) {
	if tab == nil {
		page, err := h.bctx.NewPage()
		if err != nil {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
		tab = h.attach(page)
	}
	if _, err := tab.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return tab, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return tab, nil
}

// Create opens url in a background tab: the new page loads, then the tab
// that was in front gets the focus back.
func (h *Host) Create(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	origin := h.Active()

	page, err := h.bctx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}
	h.attach(page)

	_, gotoErr := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateCommit,
	})

	if origin != nil {
		if err := origin.page.BringToFront(); err != nil {
			log.Printf("⚠️ Failed to refocus tab %d: %v", origin.id, err)
		}
		h.setActive(origin)
	}
	if gotoErr != nil {
		return fmt.Errorf("failed to load %s: %w", url, gotoErr)
	}
	return nil
}

// Close stops every session. Pages are closed with the browser.
func (h *Host) Close() {
	h.mu.Lock()
	tabs := make([]*Tab, 0, len(h.tabs))
	for _, tab := range h.tabs {
		tabs = append(tabs, tab)
	}
	h.mu.Unlock()

	for _, tab := range tabs {
		h.stopSession(tab)
	}
	h.wg.Wait()
}
