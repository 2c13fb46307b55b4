// Package server is the popup: a small HTTP API over the settings, the
// background service and the active tab, plus a websocket feed of runtime
// notifications.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"go-keyword-radar/internal/messaging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

//go:embed static/popup.html
var static embed.FS

// Settings is the persisted radar state the popup edits.
type Settings interface {
	Enabled(ctx context.Context) (bool, error)
	Toggle(ctx context.Context) (bool, error)
	StoredKeywords(ctx context.Context) ([]string, error)
	Keywords(ctx context.Context) ([]string, error)
	SetKeywords(ctx context.Context, keywords []string) error
}

// Tab is a browser tab the popup can message.
type Tab interface {
	URL() string
	Bus() *messaging.Bus
}

// TabSource finds the tab the user is looking at.
type TabSource interface {
	ActiveTab() (Tab, bool)
}

type Server struct {
	runtime  *messaging.Bus
	settings Settings
	tabs     TabSource
	router   *gin.Engine

	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[string]*client
}

func New(runtime *messaging.Bus, settings Settings, tabs TabSource) *Server {
	s := &Server{
		runtime:  runtime,
		settings: settings,
		tabs:     tabs,
		clients:  make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the popup is served from localhost only
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	r.Use(cors.New(config))

	r.GET("/", s.popup)
	r.GET("/ws", s.serveWS)

	api := r.Group("/api")
	{
		api.GET("/status", s.status)
		api.POST("/radar/toggle", s.toggle)

		api.GET("/keywords", s.getKeywords)
		api.PUT("/keywords", s.putKeywords)

		api.GET("/matches/count", s.matchCount)
		api.GET("/matches/export", s.exportMatches)
		api.DELETE("/matches", s.clearMatches)

		api.GET("/jobs/count", s.jobCount)
		api.POST("/jobs/open", s.openJobs)
	}
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx ends.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Popup listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("popup server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeClients()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("popup server shutdown: %w", err)
	}
	return nil
}

func (s *Server) popup(c *gin.Context) {
	page, err := static.ReadFile("static/popup.html")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
