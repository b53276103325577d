package tokencache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alalapi-0/WeDraftSync/internal/domain"
	"github.com/alalapi-0/WeDraftSync/internal/ports"
)

// FileStore persists token entries as a JSON object keyed by appid. Corrupt
// or non-mapping content reads as an empty cache and is overwritten on the
// next successful Put, so the file self-heals.
type FileStore struct {
	path   string
	logger *slog.Logger
}

var _ ports.TokenStore = (*FileStore)(nil)

// NewFileStore wires a store around the given cache file path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Get returns the entry for appid when one is present.
func (s *FileStore) Get(appid string) (domain.TokenEntry, bool, error) {
	cache := s.load()
	entry, ok := cache[appid]
	return entry, ok, nil
}

// Put merges the entry into the cache file, preserving other appids.
func (s *FileStore) Put(appid string, entry domain.TokenEntry) error {
	cache := s.load()
	cache[appid] = entry

	raw, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token cache: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write token cache %s: %w", s.path, err)
	}

	return nil
}

func (s *FileStore) load() map[string]domain.TokenEntry {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.warn("cannot read token cache", "path", s.path, "error", err)
		}
		return map[string]domain.TokenEntry{}
	}

	var cache map[string]domain.TokenEntry
	if err := json.Unmarshal(raw, &cache); err != nil {
		s.warn("token cache is not a valid mapping, ignoring", "path", s.path, "error", err)
		return map[string]domain.TokenEntry{}
	}
	if cache == nil {
		return map[string]domain.TokenEntry{}
	}

	return cache
}

func (s *FileStore) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
