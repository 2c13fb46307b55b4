package browser

import (
	"context"
	"fmt"
	"log"

	"github.com/playwright-community/playwright-go"
)

// dialogScript renders a modal in the page and resolves once the user
// clicks a button. Native dialogs are auto-dismissed under playwright.
const dialogScript = `([text, withCancel]) => new Promise((resolve) => {
	const overlay = document.createElement("div");
	overlay.className = "radar-dialog";
	const box = document.createElement("div");
	const message = document.createElement("pre");
	message.textContent = text;
	box.appendChild(message);
	const done = (value) => { overlay.remove(); resolve(value); };
	const ok = document.createElement("button");
	ok.textContent = "OK";
	ok.onclick = () => done(true);
	box.appendChild(ok);
	if (withCancel) {
		const cancel = document.createElement("button");
		cancel.textContent = "Cancel";
		cancel.onclick = () => done(false);
		box.appendChild(cancel);
	}
	overlay.appendChild(box);
	document.body.appendChild(overlay);
	ok.focus();
})`

// Prompter shows confirm and alert dialogs in a page. With AutoAccept set
// (headless runs) nothing is shown and every confirmation is accepted.
type Prompter struct {
	Page       playwright.Page
	AutoAccept bool
}

func (p Prompter) Confirm(ctx context.Context, text string) (bool, error) {
	if p.AutoAccept {
		log.Printf("🤖 Auto-confirming: %s", firstLine(text))
		return true, nil
	}
	v, err := p.show(ctx, text, true)
	if err != nil {
		return false, err
	}
	ok, _ := v.(bool)
	return ok, nil
}

func (p Prompter) Alert(ctx context.Context, text string) error {
	if p.AutoAccept {
		log.Printf("🔔 %s", firstLine(text))
		return nil
	}
	_, err := p.show(ctx, text, false)
	return err
}

func (p Prompter) show(ctx context.Context, text string, withCancel bool) (any, error) {
	type result struct {
		v   any
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := p.Page.Evaluate(dialogScript, []any{text, withCancel})
		ch <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("dialog failed: %w", r.err)
		}
		return r.v, nil
	}
}

func firstLine(text string) string {
	for i, r := range text {
		if r == '\n' {
			return text[:i]
		}
	}
	return text
}
