package browser

import (
	"context"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// RandomDelay waits for a random duration in [min, max], or until ctx ends.
func RandomDelay(ctx context.Context, min, max time.Duration) {
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min + 1)))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// HumanScroll scrolls a container (or the window when selector matches
// nothing) down in uneven steps so lazily rendered items get loaded, then
// nudges back up a little.
func HumanScroll(ctx context.Context, page playwright.Page, selector string, steps int) error {
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := page.Evaluate(`(sel) => {
			const el = sel && document.querySelector(sel);
			if (el && el.scrollHeight > el.clientHeight) {
				el.scrollBy(0, el.clientHeight / 2);
			} else {
				window.scrollBy(0, window.innerHeight / 2);
			}
		}`, selector)
		if err != nil {
			return err
		}
		RandomDelay(ctx, 300*time.Millisecond, 900*time.Millisecond)
	}

	_, err := page.Evaluate("window.scrollBy(0, -200)")
	return err
}

// Scroller loads the whole job list of a page before ids are read.
type Scroller struct {
	Page     playwright.Page
	Selector string
	Steps    int
}

func (s Scroller) Scroll(ctx context.Context) error {
	steps := s.Steps
	if steps <= 0 {
		steps = 5
	}
	return HumanScroll(ctx, s.Page, s.Selector, steps)
}
