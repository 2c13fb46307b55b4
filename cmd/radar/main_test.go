package main

import (
	"bytes"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
)

type fakeShots struct {
	calls []string
	path  string
	err   error
}

func (f *fakeShots) CaptureAndLog(_ playwright.Page, name, message string) (string, error) {
	f.calls = append(f.calls, name+": "+message)
	return f.path, f.err
}

type fakeTab struct {
	id  int
	url string
}

func (t fakeTab) ID() int {
	return t.id
}

func (t fakeTab) Page() playwright.Page {
	return nil
}

func (t fakeTab) URL() string {
	return t.url
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestGiveUpScreenshot(t *testing.T) {
	tab := fakeTab{id: 3, url: "https://www.linkedin.com/jobs/view/123/"}

	t.Run("Failure is logged", func(t *testing.T) {
		out := captureLog(t)
		shots := &fakeShots{err: errors.New("failed to capture screenshot: target closed")}

		giveUpScreenshot(shots, tab)()

		assert.Equal(t, []string{"no-description: Job description never loaded on https://www.linkedin.com/jobs/view/123/"}, shots.calls)
		assert.Contains(t, out.String(), "⚠️ Tab 3: failed to capture screenshot: target closed")
	})

	t.Run("Success logs nothing more", func(t *testing.T) {
		out := captureLog(t)
		shots := &fakeShots{path: "shot.png"}

		giveUpScreenshot(shots, tab)()

		assert.Len(t, shots.calls, 1)
		assert.Empty(t, out.String())
	})
}
