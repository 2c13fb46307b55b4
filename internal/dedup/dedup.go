package dedup

import (
	"log"
	"sync"

	"go-keyword-radar/internal/entry"
)

// MatchStore keeps the matched job records for the lifetime of the process.
// A record is stored at most once per job URL, where the URL is read back out
// of the record text.
type MatchStore struct {
	mu      sync.Mutex
	records []string
	seen    map[string]struct{}
}

func NewMatchStore() *MatchStore {
	return &MatchStore{seen: make(map[string]struct{})}
}

// Add stores record unless its URL cannot be extracted or is already stored.
// It reports whether the record was appended.
func (s *MatchStore) Add(record string) bool {
	url := entry.ExtractURL(record)
	if url == "" {
		log.Printf("⚠️ Ignoring match without a job URL")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	s.records = append(s.records, record)
	return true
}

func (s *MatchStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// All returns a copy of the stored records in insertion order.
func (s *MatchStore) All() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.records))
	copy(out, s.records)
	return out
}

// Drain returns the stored records and empties the store in one step, so a
// record added meanwhile is either returned or kept.
func (s *MatchStore) Drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.records
	if out == nil {
		out = []string{}
	}
	s.records = nil
	s.seen = make(map[string]struct{})
	return out
}

func (s *MatchStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.records)
	s.records = nil
	s.seen = make(map[string]struct{})
	log.Printf("🧹 Cleared %d stored matches", n)
}
