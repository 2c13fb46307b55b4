// Package ui prints what the radar does for the operator watching the
// terminal.
package ui

import (
	"context"
	"io"

	"go-keyword-radar/internal/entry"
	"go-keyword-radar/internal/messaging"
	"go-keyword-radar/internal/tabs"

	"github.com/cheggaaa/pb/v3"
	"github.com/pterm/pterm"
)

const barTemplate = `{{ green "Opening jobs" }} {{ counters . }} {{ bar . "[" "=" ">" "_" "]" }} {{ percent . }} {{ etime . }}`

// Reporter renders runtime notifications: a progress bar while job tabs
// open, and one line per job count or match.
type Reporter struct {
	out   io.Writer
	bar   *pb.ProgressBar
	total int

	info *pterm.PrefixPrinter
	ok   *pterm.PrefixPrinter
	warn *pterm.PrefixPrinter
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{
		out:  out,
		info: pterm.Info.WithWriter(out),
		ok:   pterm.Success.WithWriter(out),
		warn: pterm.Warning.WithWriter(out),
	}
}

// Run handles events until ctx ends or the channel closes.
func (r *Reporter) Run(ctx context.Context, events <-chan messaging.Message) {
	defer r.finishBar()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			r.Handle(msg)
		}
	}
}

func (r *Reporter) Handle(msg messaging.Message) {
	switch msg.Type {
	case messaging.TypeOpenJobTabsStatus:
		r.handleTabs(msg)
	case messaging.TypeUpdateJobCount:
		r.info.Printfln("%d jobs on the current list", msg.Count)
	case messaging.TypeAddMatch:
		if e, ok := entry.Parse(msg.Data); ok {
			r.ok.Printfln("Match: %s %v", e.Title, e.Keywords)
			r.info.Printfln("  %s", e.URL)
		}
	case messaging.TypeUpdateIcon:
		if msg.Enabled {
			r.ok.Println("Keyword radar ON")
		} else {
			r.warn.Println("Keyword radar OFF")
		}
	}
}

func (r *Reporter) handleTabs(msg messaging.Message) {
	switch msg.Status {
	case tabs.StatusStarted:
		r.finishBar()
		r.total = msg.Total
		r.bar = pb.New(msg.Total)
		r.bar.SetWriter(r.out)
		r.bar.SetTemplateString(barTemplate)
		r.bar.Start()
	case tabs.StatusProgress:
		if r.bar != nil {
			r.bar.SetCurrent(int64(msg.Opened))
		}
	case tabs.StatusFinished:
		if r.bar != nil {
			r.bar.SetCurrent(int64(msg.Opened))
		}
		r.finishBar()
		// the finished event only carries the opened count
		if msg.Opened == r.total {
			r.ok.Printfln("Opened %d/%d job tabs", msg.Opened, r.total)
		} else {
			r.warn.Printfln("Opened %d/%d job tabs", msg.Opened, r.total)
		}
	}
}

func (r *Reporter) finishBar() {
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}
