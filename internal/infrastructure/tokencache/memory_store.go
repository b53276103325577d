package tokencache

import (
	"github.com/alalapi-0/WeDraftSync/internal/domain"
	"github.com/alalapi-0/WeDraftSync/internal/ports"
)

// MemoryStore keeps token entries in a map. It backs tests and any caller
// that wants caching without touching disk.
type MemoryStore struct {
	entries map[string]domain.TokenEntry
}

var _ ports.TokenStore = (*MemoryStore)(nil)

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]domain.TokenEntry{}}
}

// Get returns the entry for appid when one is present.
func (s *MemoryStore) Get(appid string) (domain.TokenEntry, bool, error) {
	entry, ok := s.entries[appid]
	return entry, ok, nil
}

// Put stores the entry, replacing any previous one for the same appid.
func (s *MemoryStore) Put(appid string, entry domain.TokenEntry) error {
	if s.entries == nil {
		s.entries = map[string]domain.TokenEntry{}
	}
	s.entries[appid] = entry
	return nil
}
