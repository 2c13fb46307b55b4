package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go-keyword-radar/internal/background"
	"go-keyword-radar/internal/dedup"
	"go-keyword-radar/internal/entry"
	"go-keyword-radar/internal/filter"
	"go-keyword-radar/internal/messaging"
	"go-keyword-radar/internal/scraper/linkedin"
	"go-keyword-radar/internal/tabs"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memSettings struct {
	mu       sync.Mutex
	enabled  bool
	keywords []string
}

func (m *memSettings) Enabled(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled, nil
}

func (m *memSettings) Toggle(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = !m.enabled
	return m.enabled, nil
}

func (m *memSettings) StoredKeywords(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keywords, nil
}

func (m *memSettings) Keywords(ctx context.Context) ([]string, error) {
	stored, _ := m.StoredKeywords(ctx)
	return filter.Resolve(stored, filter.DefaultKeywords), nil
}

func (m *memSettings) SetKeywords(_ context.Context, keywords []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keywords = keywords
	return nil
}

type fakeTab struct {
	url string
	bus *messaging.Bus
}

func (t *fakeTab) URL() string {
	return t.url
}

func (t *fakeTab) Bus() *messaging.Bus {
	return t.bus
}

type fakeTabs struct{ tab *fakeTab }

func (f fakeTabs) ActiveTab() (Tab, bool) {
	if f.tab == nil {
		return nil, false
	}
	return f.tab, true
}

type fixture struct {
	server   *Server
	store    *dedup.MatchStore
	settings *memSettings
	runtime  *messaging.Bus
	tab      *fakeTab
}

func newFixture(tabURL string) *fixture {
	f := &fixture{
		store:    dedup.NewMatchStore(),
		settings: &memSettings{enabled: true},
		runtime:  messaging.NewBus(),
	}
	opener := tabs.NewOpener(tabs.CreatorFunc(func(context.Context, string) error { return nil }), nil, 0, 0)
	background.NewService(f.store, opener, nil).Register(f.runtime)

	var source fakeTabs
	if tabURL != "" {
		f.tab = &fakeTab{url: tabURL, bus: messaging.NewBus()}
		source.tab = f.tab
	}
	f.server = New(f.runtime, f.settings, source)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func record(id string) string {
	return entry.Format("Job "+id, entry.CanonicalURL(id), []string{"Go"}, time.Now())
}

func TestStatusAndToggle(t *testing.T) {
	f := newFixture("")
	f.store.Add(record("1"))

	rec := f.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["enabled"])
	assert.Equal(t, float64(1), body["matchCount"])
	assert.Len(t, body["keywords"], len(filter.DefaultKeywords))

	events, unsubscribe := f.runtime.Subscribe(1)
	defer unsubscribe()

	rec = f.do(t, http.MethodPost, "/api/radar/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["enabled"])

	select {
	case msg := <-events:
		assert.Equal(t, messaging.TypeUpdateIcon, msg.Type)
		assert.False(t, msg.Enabled)
	default:
		t.Fatal("toggle was not broadcast")
	}
}

func TestKeywords(t *testing.T) {
	f := newFixture("")

	rec := f.do(t, http.MethodGet, "/api/keywords", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Empty(t, body["stored"])
	assert.Len(t, body["effective"], 4)

	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "raw text", body: `{"raw": " Go, Kafka ,, "}`, want: []string{"Go", "Kafka"}},
		{name: "list", body: `{"keywords": ["Rust", "  "]}`, want: []string{"Rust"}},
		{name: "empty raw", body: `{"raw": ""}`, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPut, "/api/keywords", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			stored, _ := f.settings.StoredKeywords(context.Background())
			assert.Equal(t, tt.want, stored)
		})
	}

	rec = f.do(t, http.MethodPut, "/api/keywords", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportDownloadsThenClears(t *testing.T) {
	f := newFixture("")

	rec := f.do(t, http.MethodGet, "/api/matches/export", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	first, second := record("1"), record("2")
	f.store.Add(first)
	f.store.Add(second)

	rec = f.do(t, http.MethodGet, "/api/matches/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="matches_found.txt"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, entry.Export([]string{first, second}), rec.Body.String())
	assert.Equal(t, 0, f.store.Count())

	rec = f.do(t, http.MethodGet, "/api/matches/count", "")
	assert.JSONEq(t, `{"count": 0}`, rec.Body.String())
}

func TestExportKeepsMatchesStoredDuringExport(t *testing.T) {
	f := newFixture("")
	first, late := record("1"), record("2")
	f.store.Add(first)

	// a page session stores a match right after the export took the list
	f.runtime.Handle(messaging.TypeTakeAllMatches, func(context.Context, messaging.Message) (any, error) {
		resp := messaging.MatchesResponse{Matches: f.store.Drain()}
		f.store.Add(late)
		return resp, nil
	})

	rec := f.do(t, http.MethodGet, "/api/matches/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entry.Export([]string{first}), rec.Body.String())
	assert.Equal(t, []string{late}, f.store.All())
}

func TestClearMatches(t *testing.T) {
	f := newFixture("")
	f.store.Add(record("1"))

	rec := f.do(t, http.MethodDelete, "/api/matches", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "cleared"}`, rec.Body.String())
	assert.Equal(t, 0, f.store.Count())
}

func TestJobCount(t *testing.T) {
	f := newFixture("")
	rec := f.do(t, http.MethodGet, "/api/jobs/count", "")
	assert.JSONEq(t, `{"count": 0}`, rec.Body.String())

	f = newFixture("https://www.linkedin.com/jobs/search/?keywords=go")
	rec = f.do(t, http.MethodGet, "/api/jobs/count", "")
	assert.JSONEq(t, `{"count": 0}`, rec.Body.String(), "tab without a list session counts zero")

	f.tab.bus.Handle(messaging.TypeGetJobCount, func(context.Context, messaging.Message) (any, error) {
		return messaging.CountResponse{Count: 25}, nil
	})
	rec = f.do(t, http.MethodGet, "/api/jobs/count", "")
	assert.JSONEq(t, `{"count": 25}`, rec.Body.String())
}

func TestOpenJobs(t *testing.T) {
	t.Run("no tab", func(t *testing.T) {
		f := newFixture("")
		rec := f.do(t, http.MethodPost, "/api/jobs/open", "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("wrong page", func(t *testing.T) {
		f := newFixture("https://www.linkedin.com/jobs/view/123/")
		alerts := make(chan string, 1)
		f.tab.bus.Handle(messaging.TypeShowErrorAlert, func(_ context.Context, msg messaging.Message) (any, error) {
			alerts <- msg.Message
			return nil, nil
		})

		rec := f.do(t, http.MethodPost, "/api/jobs/open", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, linkedin.WrongPageMessage, decode(t, rec)["error"])

		select {
		case got := <-alerts:
			assert.Equal(t, linkedin.WrongPageMessage, got)
		case <-time.After(time.Second):
			t.Fatal("alert not shown")
		}
	})

	t.Run("list page", func(t *testing.T) {
		f := newFixture("https://www.linkedin.com/jobs/collections/recommended/")
		requested := make(chan struct{}, 1)
		f.tab.bus.Handle(messaging.TypeExtractJobIDs, func(context.Context, messaging.Message) (any, error) {
			requested <- struct{}{}
			return nil, nil
		})

		rec := f.do(t, http.MethodPost, "/api/jobs/open", "")
		assert.Equal(t, http.StatusAccepted, rec.Code)
		select {
		case <-requested:
		case <-time.After(time.Second):
			t.Fatal("EXTRACT_JOB_IDS not sent")
		}
	})
}

func TestPopupPage(t *testing.T) {
	f := newFixture("")
	rec := f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Keyword Radar")
}

func TestWebsocketBroadcast(t *testing.T) {
	f := newFixture("")
	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.server.Clients() == 1 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan messaging.Message, 1)
	go f.server.Broadcast(ctx, events)
	events <- messaging.UpdateJobCount(7)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got messaging.Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, messaging.UpdateJobCount(7), got)

	conn.Close()
	assert.Eventually(t, func() bool { return f.server.Clients() == 0 }, time.Second, 10*time.Millisecond)
}
