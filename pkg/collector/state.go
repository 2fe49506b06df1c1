package collector

import (
	"sync"

	"emojiscraper/pkg/models"
)

// State is the accumulated result of every scan. The zero value is not
// usable; create one with NewState.
type State struct {
	mu          sync.RWMutex
	seenIDs     map[string]struct{}
	seenServers map[string]struct{}
	servers     []string
	records     []models.EmojiRecord
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		seenIDs:     make(map[string]struct{}),
		seenServers: make(map[string]struct{}),
		servers:     []string{},
		records:     []models.EmojiRecord{},
	}
}

// Register adds rec unless its id was already registered. It reports whether
// the record was added.
func (s *State) Register(rec models.EmojiRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seenIDs[rec.ID]; ok {
		return false
	}
	s.seenIDs[rec.ID] = struct{}{}
	s.records = append(s.records, rec)
	if _, ok := s.seenServers[rec.Server]; !ok {
		s.seenServers[rec.Server] = struct{}{}
		s.servers = append(s.servers, rec.Server)
	}
	return true
}

// Has reports whether id has been registered.
func (s *State) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seenIDs[id]
	return ok
}

// Records returns a copy of the records in discovery order.
func (s *State) Records() []models.EmojiRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EmojiRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Servers returns a copy of the distinct server names in first-seen order.
func (s *State) Servers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.servers))
	copy(out, s.servers)
	return out
}

// Snapshot returns servers and records taken under one lock.
func (s *State) Snapshot() models.EmojiData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data := models.EmojiData{
		Servers: make([]string, len(s.servers)),
		Emojis:  make([]models.EmojiRecord, len(s.records)),
	}
	copy(data.Servers, s.servers)
	copy(data.Emojis, s.records)
	return data
}

// Len returns the number of registered records.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// ServerCount returns the number of distinct servers.
func (s *State) ServerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.servers)
}
