package store

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/davoli/staticms/internal/config"
	"github.com/davoli/staticms/internal/content"
	"github.com/davoli/staticms/internal/logger"
)

// remoteBackend is what the manager needs from the GitHub store. Tests
// substitute it to control probe outcomes.
type remoteBackend interface {
	Store
	Probe(ctx context.Context) error
}

// Manager selects a storage backend on first use and forwards every document
// operation to it. Selection runs at most once per process: concurrent first
// calls share a single in-flight attempt and all observe the same outcome.
// Selection never fails; when the remote backend cannot be used for any
// reason the manager degrades to the local store.
type Manager struct {
	cfg       config.StorageConfig
	local     *LocalStore
	newRemote func(config.GitHubConfig) (remoteBackend, error)

	group    singleflight.Group
	mu       sync.RWMutex
	selected Store
}

// NewManager creates a manager for the given storage configuration.
func NewManager(cfg config.StorageConfig) (*Manager, error) {
	local, err := NewLocalStore(cfg.Local.FilePath)
	if err != nil {
		return nil, fmt.Errorf("init local store: %w", err)
	}
	return &Manager{
		cfg:   cfg,
		local: local,
		newRemote: func(g config.GitHubConfig) (remoteBackend, error) {
			return NewGitHubStore(g)
		},
	}, nil
}

// Local exposes the fallback store so the application can start its
// persistence scheduler and file watcher when it ends up selected.
func (m *Manager) Local() *LocalStore { return m.local }

// Initialize forces backend selection and returns the selected backend's
// name. Calling it is optional; accessors initialize lazily.
func (m *Manager) Initialize(ctx context.Context) string {
	return m.backend(ctx).Name()
}

// Name reports the selected backend, or "uninitialized" before first use.
func (m *Manager) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.selected == nil {
		return "uninitialized"
	}
	return m.selected.Name()
}

func (m *Manager) GetNewsItems(ctx context.Context) ([]content.NewsItem, error) {
	return m.backend(ctx).GetNewsItems(ctx)
}

func (m *Manager) SaveNewsItems(ctx context.Context, items []content.NewsItem) error {
	return m.backend(ctx).SaveNewsItems(ctx, items)
}

func (m *Manager) GetSiteSettings(ctx context.Context) (content.SiteSettings, error) {
	return m.backend(ctx).GetSiteSettings(ctx)
}

func (m *Manager) SaveSiteSettings(ctx context.Context, settings content.SiteSettings) error {
	return m.backend(ctx).SaveSiteSettings(ctx, settings)
}

func (m *Manager) GetSocialLinks(ctx context.Context) (content.SocialLinks, error) {
	return m.backend(ctx).GetSocialLinks(ctx)
}

func (m *Manager) SaveSocialLinks(ctx context.Context, links content.SocialLinks) error {
	return m.backend(ctx).SaveSocialLinks(ctx, links)
}

func (m *Manager) GetAdminSettings(ctx context.Context) (content.AdminSettings, error) {
	return m.backend(ctx).GetAdminSettings(ctx)
}

func (m *Manager) SaveAdminSettings(ctx context.Context, settings content.AdminSettings) error {
	return m.backend(ctx).SaveAdminSettings(ctx, settings)
}

// FileStore returns the selected backend's generic file operations, used by
// the diagnostics endpoints. The second return is false when the selected
// backend does not expose file-level access (the local store does not).
func (m *Manager) FileStore(ctx context.Context) (FileStore, bool) {
	fs, ok := m.backend(ctx).(FileStore)
	return fs, ok
}

// backend returns the selected store, running selection exactly once. The
// singleflight group collapses concurrent first calls onto one attempt; the
// memoized result serves everything after that.
func (m *Manager) backend(ctx context.Context) Store {
	m.mu.RLock()
	selected := m.selected
	m.mu.RUnlock()
	if selected != nil {
		return selected
	}

	v, _, _ := m.group.Do("select-backend", func() (any, error) {
		s := m.selectBackend(ctx)
		m.mu.Lock()
		m.selected = s
		m.mu.Unlock()
		return s, nil
	})
	return v.(Store)
}

// selectBackend decides which store serves this process. The remote backend
// is chosen only when configuration is complete and the repository probe
// succeeds; everything else lands on the local store.
func (m *Manager) selectBackend(ctx context.Context) Store {
	log := logger.WithComponent("store-manager")

	if m.cfg.Provider == config.ProviderLocal {
		log.Info("local storage selected by configuration")
		return m.local
	}

	g := m.cfg.GitHub
	if m.cfg.Provider != config.ProviderGitHub && !g.Enabled {
		log.Info("remote storage not enabled, using local store")
		return m.local
	}
	if !g.HasGitHubCoordinates() {
		log.Warn("remote storage enabled but owner, repo or token missing, falling back to local store")
		return m.local
	}

	remote, err := m.newRemote(g)
	if err != nil {
		log.Warnf("cannot create remote store, falling back to local store: %v", err)
		return m.local
	}

	if err := remote.Probe(ctx); err != nil {
		log.Warnf("remote repository unreachable, falling back to local store: %v", err)
		return m.local
	}

	log.Infof("remote storage selected: %s/%s (branch %s)", g.Owner, g.Repo, g.Branch)
	return remote
}
