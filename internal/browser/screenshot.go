package browser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/playwright-community/playwright-go"
)

// ScreenshotDebugger saves full-page screenshots of pages the radar could
// not read.
type ScreenshotDebugger struct {
	outputDir string
}

func NewScreenshotDebugger(dir string) (*ScreenshotDebugger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	return &ScreenshotDebugger{outputDir: dir}, nil
}

func (s *ScreenshotDebugger) CaptureAndLog(page playwright.Page, name, message string) (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	log.Printf("📸 %s", message)

	data, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}

	log.Printf("   Screenshot saved: %s (%s)", path, humanize.Bytes(uint64(len(data))))
	return path, nil
}
