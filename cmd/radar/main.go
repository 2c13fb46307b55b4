package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go-keyword-radar/internal/background"
	"go-keyword-radar/internal/browser"
	"go-keyword-radar/internal/config"
	"go-keyword-radar/internal/content"
	"go-keyword-radar/internal/dedup"
	"go-keyword-radar/internal/messaging"
	"go-keyword-radar/internal/server"
	"go-keyword-radar/internal/settings"
	"go-keyword-radar/internal/tabs"
	"go-keyword-radar/internal/telegram"
	"go-keyword-radar/internal/ui"
	"go-keyword-radar/internal/watcher"

	"github.com/playwright-community/playwright-go"
)

// listSelector is the scrollable job list of search and collection pages.
const listSelector = ".jobs-search-results-list, .scaffold-layout__list"

// screenshotter captures a page for later debugging.
type screenshotter interface {
	CaptureAndLog(page playwright.Page, name, message string) (string, error)
}

// pageTab is the part of a browser tab a screenshot needs.
type pageTab interface {
	ID() int
	Page() playwright.Page
	URL() string
}

// giveUpScreenshot returns the callback run when a detail page never shows
// its description.
func giveUpScreenshot(shots screenshotter, tab pageTab) func() {
	return func() {
		if _, err := shots.CaptureAndLog(tab.Page(), "no-description", "Job description never loaded on "+tab.URL()); err != nil {
			log.Printf("⚠️ Tab %d: %v", tab.ID(), err)
		}
	}
}

// activeTabs exposes the host's focused tab to the popup.
type activeTabs struct {
	host *browser.Host
}

func (a activeTabs) ActiveTab() (server.Tab, bool) {
	tab := a.host.Active()
	if tab == nil {
		return nil, false
	}
	return tab, true
}

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the yaml config")
	quiet := flag.Bool("quiet", false, "hide the banner")
	flag.Parse()

	ui.PrintBanner(*quiet)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("🚀 Starting Keyword Radar...")

	store, err := settings.Open(cfg.DataDir, cfg.Keywords)
	if err != nil {
		log.Fatalf("❌ Failed to open settings: %v", err)
	}
	defer store.Close()

	go func() {
		err := config.Watch(ctx, *configPath, func(c *config.Config) {
			store.SetDefaults(c.Keywords)
			log.Printf("📝 Default keywords now %v", c.Keywords)
		})
		if err != nil {
			log.Printf("⚠️ Config watcher stopped: %v", err)
		}
	}()

	//init playwright manager
	pwManager, err := browser.NewPlaywright(ctx, cfg.Headless)
	if err != nil {
		log.Fatalf("❌ Failed to init Playwright: %v", err)
	}
	defer pwManager.Close()

	cookies, err := browser.LoadCookies(cfg.CookiesPath)
	if err != nil {
		log.Printf("⚠️ Could not load LinkedIn cookies: %v. Continuing logged out.", err)
	} else {
		log.Printf("🍪 Loaded LinkedIn cookies (%d)", len(cookies))
	}

	browserCtx, err := pwManager.NewContext(cookies)
	if err != nil {
		log.Fatalf("❌ Failed to create browser context: %v", err)
	}

	var shots *browser.ScreenshotDebugger
	if cfg.Debug {
		shots, err = browser.NewScreenshotDebugger(filepath.Join(cfg.DataDir, "screenshots"))
		if err != nil {
			log.Printf("⚠️ Screenshots disabled: %v", err)
		}
	}

	runtime := messaging.NewBus()
	opts := content.Options{
		Timing: watcher.Timing{
			PollInterval:  cfg.Watch.PollInterval,
			MaxWait:       cfg.Watch.MaxWait,
			MutationGrace: cfg.Watch.MutationGrace,
		},
		CardDepth:     cfg.Watch.CardDepth,
		CountDelay:    cfg.Watch.CountDelay,
		CountFallback: cfg.Watch.CountFallback,
	}

	host, err := browser.NewHost(ctx, browserCtx, func(ctx context.Context, tab *browser.Tab, mutations <-chan struct{}) {
		o := opts
		if shots != nil {
			o.OnGiveUp = giveUpScreenshot(shots, tab)
		}
		session := content.NewSession(tab.Document(), mutations, runtime, tab.Bus(), store,
			browser.Prompter{Page: tab.Page(), AutoAccept: cfg.Headless},
			browser.Scroller{Page: tab.Page(), Selector: listSelector},
			o)
		if err := session.Run(ctx); err != nil {
			log.Printf("⚠️ Tab %d session ended: %v", tab.ID(), err)
		}
	})
	if err != nil {
		log.Fatalf("❌ Failed to attach to browser: %v", err)
	}
	defer host.Close()

	notifiers := background.Notifiers{background.BusNotifier{Bus: runtime}}
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Telegram disabled: %v", err)
		} else {
			notifiers = append(notifiers, bot)
			log.Println("📨 Telegram notifications enabled")
		}
	}

	opener := tabs.NewOpener(host, background.BusNotifier{Bus: runtime}, cfg.Tabs.MinDelay, cfg.Tabs.MaxDelay)
	background.NewService(dedup.NewMatchStore(), opener, notifiers).Register(runtime)

	reporterEvents, unsubscribeReporter := runtime.Subscribe(64)
	defer unsubscribeReporter()
	go ui.NewReporter(os.Stdout).Run(ctx, reporterEvents)

	popup := server.New(runtime, store, activeTabs{host: host})
	popupEvents, unsubscribePopup := runtime.Subscribe(64)
	defer unsubscribePopup()
	go popup.Broadcast(ctx, popupEvents)
	go func() {
		if err := popup.Run(ctx, cfg.ListenAddr); err != nil {
			log.Printf("❌ %v", err)
			stop()
		}
	}()

	if _, err := host.Open(nil, cfg.StartURL); err != nil {
		log.Printf("⚠️ %v", err)
	}
	log.Printf("✅ Radar running, popup on %s", cfg.ListenAddr)

	<-ctx.Done()
	log.Println("👋 Shutting down...")
}
