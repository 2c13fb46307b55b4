package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"go-keyword-radar/internal/entry"
	"go-keyword-radar/internal/filter"
	"go-keyword-radar/internal/messaging"
	"go-keyword-radar/internal/scraper/linkedin"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

type keywordsRequest struct {
	// Raw is the comma separated text typed in the keywords modal.
	Raw      *string  `json:"raw"`
	Keywords []string `json:"keywords"`
}

func fail(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}

func (s *Server) status(c *gin.Context) {
	ctx := c.Request.Context()
	enabled, err := s.settings.Enabled(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	keywords, err := s.settings.Keywords(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	count, err := s.count(c)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled":    enabled,
		"keywords":   keywords,
		"matchCount": count,
	})
}

func (s *Server) toggle(c *gin.Context) {
	ctx := c.Request.Context()
	enabled, err := s.settings.Toggle(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if _, err := s.runtime.Send(ctx, messaging.UpdateIcon(enabled)); err != nil {
		log.Printf("⚠️ Failed to update radar icon: %v", err)
	}
	_ = s.runtime.Notify(messaging.UpdateIcon(enabled))
	c.JSON(http.StatusOK, gin.H{"enabled": enabled})
}

func (s *Server) getKeywords(c *gin.Context) {
	ctx := c.Request.Context()
	stored, err := s.settings.StoredKeywords(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	effective, err := s.settings.Keywords(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if stored == nil {
		stored = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"stored": stored, "effective": effective})
}

func (s *Server) putKeywords(c *gin.Context) {
	var req keywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid JSON format: %w", err))
		return
	}

	var keywords []string
	if req.Raw != nil {
		keywords = filter.ParseKeywords(*req.Raw)
	} else {
		keywords = filter.CleanKeywords(req.Keywords)
	}

	if err := s.settings.SetKeywords(c.Request.Context(), keywords); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	log.Printf("📝 Keywords saved: %v", keywords)
	c.JSON(http.StatusOK, gin.H{"stored": keywords})
}

func (s *Server) count(c *gin.Context) (int, error) {
	resp, err := s.runtime.Send(c.Request.Context(), messaging.GetMatchCount())
	if err != nil {
		return 0, err
	}
	r, ok := resp.(messaging.CountResponse)
	if !ok {
		return 0, fmt.Errorf("unexpected match count response %T", resp)
	}
	return r.Count, nil
}

func (s *Server) matchCount(c *gin.Context) {
	count, err := s.count(c)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, messaging.CountResponse{Count: count})
}

// exportMatches downloads every stored match. The store is emptied in the
// same step, so matches stored during the download stay for the next export.
func (s *Server) exportMatches(c *gin.Context) {
	resp, err := s.runtime.Send(c.Request.Context(), messaging.TakeAllMatches())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	matches, ok := resp.(messaging.MatchesResponse)
	if !ok {
		fail(c, http.StatusInternalServerError, fmt.Errorf("unexpected matches response %T", resp))
		return
	}
	if len(matches.Matches) == 0 {
		fail(c, http.StatusNotFound, errors.New("no matches to export"))
		return
	}

	content := entry.Export(matches.Matches)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, entry.ExportFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
	log.Printf("📦 Exported %d matches (%s)", len(matches.Matches), humanize.Bytes(uint64(len(content))))
}

func (s *Server) clearMatches(c *gin.Context) {
	resp, err := s.runtime.Send(c.Request.Context(), messaging.ClearMatches())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// jobCount asks the active tab for its last computed job count. Tabs that
// are not job lists count zero.
func (s *Server) jobCount(c *gin.Context) {
	tab, ok := s.tabs.ActiveTab()
	if !ok {
		c.JSON(http.StatusOK, messaging.CountResponse{Count: 0})
		return
	}
	resp, err := tab.Bus().Send(c.Request.Context(), messaging.GetJobCount())
	if errors.Is(err, messaging.ErrNoListener) {
		c.JSON(http.StatusOK, messaging.CountResponse{Count: 0})
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// openJobs starts the batch-open workflow on the active tab. The tab asks
// the user for confirmation, so the request returns before that happens.
func (s *Server) openJobs(c *gin.Context) {
	tab, ok := s.tabs.ActiveTab()
	if !ok {
		fail(c, http.StatusConflict, errors.New("no active tab"))
		return
	}

	if !linkedin.CanBatchOpen(tab.URL()) {
		go func() {
			if _, err := tab.Bus().Send(context.Background(), messaging.ShowErrorAlert(linkedin.WrongPageMessage)); err != nil {
				log.Printf("⚠️ Failed to show error alert: %v", err)
			}
		}()
		fail(c, http.StatusBadRequest, errors.New(linkedin.WrongPageMessage))
		return
	}

	go func() {
		if _, err := tab.Bus().Send(context.Background(), messaging.ExtractJobIDs()); err != nil {
			log.Printf("⚠️ Failed to request job ids: %v", err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "requested"})
}
