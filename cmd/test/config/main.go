package main

import (
	"fmt"
	"log"

	"go-keyword-radar/internal/config"
)

func main() {
	fmt.Println("🔧 Testing config loading...")
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Keywords: %v\n", cfg.Keywords)
	fmt.Printf("   Start URL: %s\n", cfg.StartURL)
	fmt.Printf("   Listen Addr: %s\n", cfg.ListenAddr)
	fmt.Printf("   Headless: %t\n", cfg.Headless)
	fmt.Printf("   Cookies Path: %s\n", cfg.CookiesPath)
	fmt.Printf("   Data Dir: %s\n", cfg.DataDir)
	fmt.Printf("   Watch: poll %s, max wait %s, grace %s, card depth %d\n",
		cfg.Watch.PollInterval, cfg.Watch.MaxWait, cfg.Watch.MutationGrace, cfg.Watch.CardDepth)
	fmt.Printf("   Tabs: %s - %s between tabs\n", cfg.Tabs.MinDelay, cfg.Tabs.MaxDelay)
	fmt.Printf("   Telegram: %t\n", cfg.TelegramEnabled())
}
