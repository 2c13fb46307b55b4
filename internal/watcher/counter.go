package watcher

import (
	"context"
	"log"
	"sync"
	"time"

	"go-keyword-radar/internal/dom"
	"go-keyword-radar/internal/scraper/linkedin"
)

// Counter reports the number of jobs on a list page once, and remembers the
// last computed count for later queries.
type Counter struct {
	doc    dom.Document
	notify func(count int)

	mu    sync.Mutex
	saved int
	sent  bool
}

func NewCounter(doc dom.Document, notify func(count int)) *Counter {
	return &Counter{doc: doc, notify: notify}
}

// SendOnce counts the jobs and notifies if the count is positive and no count
// was sent before.
func (c *Counter) SendOnce() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sent {
		return
	}

	doc, release := dom.Scope(c.doc)
	defer release()
	n, err := linkedin.CountJobs(doc)
	if err != nil {
		log.Printf("⚠️ Failed to count jobs: %v", err)
		return
	}
	c.saved = n
	if n > 0 {
		c.notify(n)
		c.sent = true
		log.Printf("📊 Job count sent: %d", n)
	}
}

// Saved is the last computed count, 0 before the first count.
func (c *Counter) Saved() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved
}

func (c *Counter) Sent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

// Run counts after delay, and once more at fallback if nothing was sent yet.
func (c *Counter) Run(ctx context.Context, delay, fallback time.Duration) {
	first := time.NewTimer(delay)
	defer first.Stop()
	second := time.NewTimer(fallback)
	defer second.Stop()

	for pending := 2; pending > 0; pending-- {
		select {
		case <-ctx.Done():
			return
		case <-first.C:
			c.SendOnce()
		case <-second.C:
			c.SendOnce()
		}
	}
}
