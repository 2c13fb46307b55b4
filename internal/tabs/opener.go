// Package tabs opens batches of job pages one tab at a time with a random
// pause between tabs, so a large batch does not look like a bot.
package tabs

import (
	"context"
	"log"
	"math/rand"
	"time"
)

const (
	DefaultMinDelay = 3 * time.Second
	DefaultMaxDelay = 5 * time.Second
)

// Creator opens url in a new tab that does not take focus.
type Creator interface {
	Create(ctx context.Context, url string) error
}

// CreatorFunc adapts a function to Creator.
type CreatorFunc func(ctx context.Context, url string) error

func (f CreatorFunc) Create(ctx context.Context, url string) error {
	return f(ctx, url)
}

// Event is a progress notification of a batch.
type Event struct {
	Status string // started, progress or finished
	Opened int
	Total  int
}

const (
	StatusStarted  = "started"
	StatusProgress = "progress"
	StatusFinished = "finished"
)

// Notifier receives progress events. Delivery is best-effort.
type Notifier interface {
	Notify(ev Event) error
}

// Summary is the result of a batch.
type Summary struct {
	Opened int
}

// Opener opens URLs sequentially.
type Opener struct {
	creator  Creator
	notifier Notifier
	minDelay time.Duration
	maxDelay time.Duration

	// Jitter returns the pause before the next tab.
	Jitter func() time.Duration
	// Sleep waits for d; it returns early only when ctx ends.
	Sleep func(ctx context.Context, d time.Duration)
}

func NewOpener(creator Creator, notifier Notifier, minDelay, maxDelay time.Duration) *Opener {
	if minDelay <= 0 {
		minDelay = DefaultMinDelay
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	o := &Opener{
		creator:  creator,
		notifier: notifier,
		minDelay: minDelay,
		maxDelay: maxDelay,
		Sleep:    sleep,
	}
	o.Jitter = o.randomDelay
	return o
}

// randomDelay is uniform over [minDelay, maxDelay] at millisecond granularity.
func (o *Opener) randomDelay() time.Duration {
	minMs := o.minDelay.Milliseconds()
	maxMs := o.maxDelay.Milliseconds()
	return time.Duration(rand.Int63n(maxMs-minMs+1)+minMs) * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// OpenAll opens every URL in order, pausing between tabs but not after the
// last one. A failing URL is logged and skipped; Summary.Opened counts only
// the tabs that opened. Once started, a batch runs to the end.
func (o *Opener) OpenAll(ctx context.Context, urls []string) Summary {
	if len(urls) == 0 {
		return Summary{}
	}
	// the batch outlives the request that started it
	ctx = context.WithoutCancel(ctx)

	total := len(urls)
	o.notify(Event{Status: StatusStarted, Total: total})
	log.Printf("🗂️ Opening %d job tabs", total)

	opened := 0
	for i, url := range urls {
		if err := o.creator.Create(ctx, url); err != nil {
			log.Printf("⚠️ Failed to open tab %s: %v", url, err)
		} else {
			opened++
			o.notify(Event{Status: StatusProgress, Opened: opened, Total: total})
		}

		if i < total-1 {
			o.Sleep(ctx, o.Jitter())
		}
	}

	o.notify(Event{Status: StatusFinished, Opened: opened})
	log.Printf("✅ Opened %d/%d job tabs", opened, total)
	return Summary{Opened: opened}
}

func (o *Opener) notify(ev Event) {
	if o.notifier == nil {
		return
	}
	// nobody listening is fine
	_ = o.notifier.Notify(ev)
}
