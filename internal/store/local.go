package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/davoli/staticms/internal/content"
	"github.com/davoli/staticms/internal/logger"
)

// Storage keys of the four content documents in the local data file.
const (
	keyNews     = "news-items"
	keySettings = "site-settings"
	keySocial   = "social-links"
	keyAdmin    = "admin-settings"
)

// LocalStore is the fallback backend: documents live in memory, keyed per
// kind, and are flushed to a single JSON file on disk. Accessors never fail;
// a missing or unreadable key yields the kind's built-in default.
type LocalStore struct {
	mu    sync.RWMutex
	docs  map[string]json.RawMessage
	dirty bool

	path string
	dir  string
	base string
}

// NewLocalStore creates a store backed by the given data file. A missing or
// unreadable file is not an error: the store starts empty and defaults apply.
func NewLocalStore(path string) (*LocalStore, error) {
	if path == "" {
		return nil, errors.New("local data file path is required")
	}

	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}

	s := &LocalStore{
		docs: map[string]json.RawMessage{},
		path: path,
		dir:  dir,
		base: filepath.Base(path),
	}
	s.loadFromDisk()
	return s, nil
}

// Name identifies the backend.
func (s *LocalStore) Name() string { return BackendLocal }

func (s *LocalStore) GetNewsItems(_ context.Context) ([]content.NewsItem, error) {
	var decoded []content.NewsItem
	if !s.loadKey(keyNews, &decoded) {
		return content.SampleNewsItems(), nil
	}
	for i := range decoded {
		decoded[i].ApplyDefaults()
	}
	return decoded, nil
}

func (s *LocalStore) SaveNewsItems(_ context.Context, items []content.NewsItem) error {
	return s.saveKey(keyNews, items)
}

func (s *LocalStore) GetSiteSettings(_ context.Context) (content.SiteSettings, error) {
	var decoded content.SiteSettings
	if !s.loadKey(keySettings, &decoded) {
		return content.DefaultSiteSettings(), nil
	}
	return decoded, nil
}

func (s *LocalStore) SaveSiteSettings(_ context.Context, settings content.SiteSettings) error {
	return s.saveKey(keySettings, settings)
}

func (s *LocalStore) GetSocialLinks(_ context.Context) (content.SocialLinks, error) {
	var decoded content.SocialLinks
	if !s.loadKey(keySocial, &decoded) {
		return content.DefaultSocialLinks(), nil
	}
	return decoded, nil
}

func (s *LocalStore) SaveSocialLinks(_ context.Context, links content.SocialLinks) error {
	return s.saveKey(keySocial, links)
}

func (s *LocalStore) GetAdminSettings(_ context.Context) (content.AdminSettings, error) {
	var decoded content.AdminSettings
	if !s.loadKey(keyAdmin, &decoded) {
		return content.DefaultAdminSettings(), nil
	}
	return decoded, nil
}

func (s *LocalStore) SaveAdminSettings(_ context.Context, settings content.AdminSettings) error {
	return s.saveKey(keyAdmin, settings)
}

// IsDirty returns true if the store has changes not yet flushed to disk.
func (s *LocalStore) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Flush writes the current documents to the data file atomically and clears
// the dirty flag. A clean store is a no-op.
func (s *LocalStore) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	payload, err := json.MarshalIndent(s.docs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.dir, s.base+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), s.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}

	s.dirty = false
	return nil
}

// Reload re-reads the data file, replacing in-memory documents. A dirty
// store skips the reload so unflushed writes are not lost.
func (s *LocalStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dirty {
		logger.WithComponent("local-store").Warn("data file changed on disk but store is dirty; skipping reload")
		return
	}

	docs, err := readDataFile(s.path)
	if err != nil {
		logger.WithComponent("local-store").Warnf("reload failed: %v", err)
		return
	}
	s.docs = docs
	logger.WithComponent("local-store").Info("reloaded data file from disk")
}

func (s *LocalStore) loadFromDisk() {
	docs, err := readDataFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.WithComponent("local-store").Warnf("cannot read data file, starting empty: %v", err)
		}
		return
	}
	s.docs = docs
}

func readDataFile(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	docs := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}
	return docs, nil
}

// loadKey decodes the stored document for a key into dest, reporting whether
// a usable value was present. Broken payloads are logged and treated as
// absent.
func (s *LocalStore) loadKey(key string, dest any) bool {
	s.mu.RLock()
	raw, ok := s.docs[key]
	s.mu.RUnlock()

	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.WithComponent("local-store").Warnf("decode %s failed, using default: %v", key, err)
		return false
	}
	return true
}

// saveKey stores the document in memory and marks the store dirty. The
// persistence scheduler takes care of flushing to disk; local saves
// themselves never fail.
func (s *LocalStore) saveKey(key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	s.mu.Lock()
	s.docs[key] = raw
	s.dirty = true
	s.mu.Unlock()
	return nil
}
