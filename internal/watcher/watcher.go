// Package watcher reacts to page mutations, decides when job content is ready,
// matches it against the keywords and paints the result.
package watcher

import (
	"time"

	"go-keyword-radar/internal/dom"
	"go-keyword-radar/internal/filter"
	"go-keyword-radar/internal/scraper/linkedin"
)

// Timing bounds how long a watcher waits for job content.
type Timing struct {
	// PollInterval is the detail page polling period.
	PollInterval time.Duration
	// MaxWait bounds the wait for content to first appear.
	MaxWait time.Duration
	// MutationGrace keeps the detail page mutation path alive after MaxWait.
	MutationGrace time.Duration
}

// DefaultTiming mirrors the content script timings.
var DefaultTiming = Timing{
	PollInterval:  500 * time.Millisecond,
	MaxWait:       10 * time.Second,
	MutationGrace: 2 * time.Second,
}

// Sink receives rendered match records.
type Sink interface {
	Submit(record string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(record string)

func (f SinkFunc) Submit(record string) {
	f(record)
}

// readDescription returns the combined description text. ok is false while
// the description paragraphs are not in the DOM yet.
func readDescription(doc dom.Document) (text string, ok bool, err error) {
	paragraphs, err := doc.QueryAll(linkedin.DescriptionSelector)
	if err != nil {
		return "", false, err
	}
	if len(paragraphs) == 0 {
		return "", false, nil
	}
	return filter.CombineParagraphs(dom.Texts(paragraphs)), true, nil
}
