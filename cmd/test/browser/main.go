package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go-keyword-radar/internal/browser"
	"go-keyword-radar/internal/config"
)

func main() {
	fmt.Println("🌐 Testing Browser Manager...")

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	ctx := context.Background()

	//create playwright manager
	pm, err := browser.NewPlaywright(ctx, cfg.Headless)
	if err != nil {
		log.Fatalf("Failed to create Playwright: %v", err)
	}
	defer pm.Close()

	fmt.Println("✅ Playwright started")

	cookies, err := browser.LoadCookies(cfg.CookiesPath)
	if err != nil {
		log.Fatalf("Failed to load cookies: %v", err)
	}
	fmt.Printf("✅ Loaded %d cookies\n", len(cookies))

	browserCtx, err := pm.NewContext(cookies)
	if err != nil {
		log.Fatalf("Failed to create context: %v", err)
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		log.Fatalf("Failed to create page: %v", err)
	}

	fmt.Printf("🔍 Navigating to %s...\n", cfg.StartURL)
	if _, err := page.Goto(cfg.StartURL); err != nil {
		log.Fatalf("Failed to navigate: %v", err)
	}

	//LinkedIn bounces logged out visitors to the login wall
	if strings.Contains(page.URL(), "/login") || strings.Contains(page.URL(), "/authwall") {
		fmt.Printf("❌ Not logged in, landed on %s\n", page.URL())
	} else {
		title, _ := page.Title()
		fmt.Printf("✅ Logged in, page title: %s\n", title)
	}

	shots, err := browser.NewScreenshotDebugger("logs/screenshots")
	if err != nil {
		log.Fatalf("Failed to prepare screenshots: %v", err)
	}
	if _, err := shots.CaptureAndLog(page, "browser-test", "Capturing start page"); err != nil {
		log.Fatalf("Failed to take screenshot: %v", err)
	}
}
