// Package background owns the match store and batch tab opening, and answers
// runtime messages for them.
package background

import (
	"context"
	"errors"
	"log"

	"go-keyword-radar/internal/dedup"
	"go-keyword-radar/internal/messaging"
	"go-keyword-radar/internal/tabs"
)

// MatchNotifier is told about every newly stored match.
type MatchNotifier interface {
	SendMatch(record string) error
}

// Notifiers fans a match out to several notifiers.
type Notifiers []MatchNotifier

func (n Notifiers) SendMatch(record string) error {
	var errs []error
	for _, notifier := range n {
		if err := notifier.SendMatch(record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TabOpener opens a batch of URLs.
type TabOpener interface {
	OpenAll(ctx context.Context, urls []string) tabs.Summary
}

type Service struct {
	store    *dedup.MatchStore
	opener   TabOpener
	notifier MatchNotifier
}

// NewService builds the service. notifier may be nil.
func NewService(store *dedup.MatchStore, opener TabOpener, notifier MatchNotifier) *Service {
	return &Service{store: store, opener: opener, notifier: notifier}
}

// Register installs the service handlers on bus.
func (s *Service) Register(bus *messaging.Bus) {
	bus.Handle(messaging.TypeAddMatch, s.handleAddMatch)
	bus.Handle(messaging.TypeGetMatchCount, s.handleGetMatchCount)
	bus.Handle(messaging.TypeGetAllMatches, s.handleGetAllMatches)
	bus.Handle(messaging.TypeClearMatches, s.handleClearMatches)
	bus.Handle(messaging.TypeTakeAllMatches, s.handleTakeAllMatches)
	bus.Handle(messaging.TypeOpenJobTabs, s.handleOpenJobTabs)
	bus.Handle(messaging.TypeUpdateIcon, s.handleUpdateIcon)
	bus.HandleDefault(func(_ context.Context, msg messaging.Message) (any, error) {
		return messaging.StatusResponse{Status: messaging.StatusUnknownType}, nil
	})
}

func (s *Service) handleAddMatch(_ context.Context, msg messaging.Message) (any, error) {
	if s.store.Add(msg.Data) {
		log.Printf("💾 Stored match #%d", s.store.Count())
		if s.notifier != nil {
			if err := s.notifier.SendMatch(msg.Data); err != nil {
				log.Printf("⚠️ Failed to forward match: %v", err)
			}
		}
	}
	return messaging.StatusResponse{Status: messaging.StatusOK}, nil
}

func (s *Service) handleGetMatchCount(context.Context, messaging.Message) (any, error) {
	return messaging.CountResponse{Count: s.store.Count()}, nil
}

func (s *Service) handleGetAllMatches(context.Context, messaging.Message) (any, error) {
	return messaging.MatchesResponse{Matches: s.store.All()}, nil
}

func (s *Service) handleClearMatches(context.Context, messaging.Message) (any, error) {
	s.store.Clear()
	return messaging.StatusResponse{Status: messaging.StatusCleared}, nil
}

func (s *Service) handleTakeAllMatches(context.Context, messaging.Message) (any, error) {
	matches := s.store.Drain()
	log.Printf("📤 Handed out %d stored matches", len(matches))
	return messaging.MatchesResponse{Matches: matches}, nil
}

func (s *Service) handleOpenJobTabs(ctx context.Context, msg messaging.Message) (any, error) {
	summary := s.opener.OpenAll(ctx, msg.URLs)
	return messaging.OpenTabsResponse{Status: messaging.StatusOK, Opened: summary.Opened}, nil
}

func (s *Service) handleUpdateIcon(_ context.Context, msg messaging.Message) (any, error) {
	state := "OFF"
	if msg.Enabled {
		state = "ON"
	}
	log.Printf("📡 Keyword radar %s", state)
	return nil, nil
}

// BusNotifier forwards batch progress to runtime subscribers as
// OPEN_JOB_TABS_STATUS notifications.
type BusNotifier struct {
	Bus *messaging.Bus
}

func (n BusNotifier) Notify(ev tabs.Event) error {
	return n.Bus.Notify(messaging.OpenJobTabsStatus(ev.Status, ev.Opened, ev.Total))
}

// SendMatch announces a newly stored match to runtime subscribers.
func (n BusNotifier) SendMatch(record string) error {
	// nobody listening is fine
	_ = n.Bus.Notify(messaging.AddMatch(record))
	return nil
}
