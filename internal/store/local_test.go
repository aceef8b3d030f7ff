package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/davoli/staticms/internal/content"
)

func newTestLocalStore(t *testing.T) (*LocalStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.json")
	s, err := NewLocalStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s, path
}

func TestNewLocalStore_EmptyPath(t *testing.T) {
	if _, err := NewLocalStore(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestLocalStore_GetNewsItems_DefaultSamples(t *testing.T) {
	s, _ := newTestLocalStore(t)

	items, err := s.GetNewsItems(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 sample items, got %d", len(items))
	}
	for i, wantID := range []string{"1", "2", "3"} {
		if items[i].ID != wantID {
			t.Errorf("expected item %d to have id %q, got %q", i, wantID, items[i].ID)
		}
	}
}

func TestLocalStore_NewsRoundTrip(t *testing.T) {
	s, _ := newTestLocalStore(t)
	ctx := context.Background()

	items := []content.NewsItem{{
		ID:        "n1",
		Title:     "Saved",
		Gallery:   []string{"a.jpg"},
		CreatedAt: time.Date(2024, time.May, 2, 8, 0, 0, 0, time.UTC),
	}}
	if err := s.SaveNewsItems(ctx, items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.GetNewsItems(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "n1" || got[0].Title != "Saved" {
		t.Errorf("unexpected round-trip result: %+v", got)
	}
	if len(got[0].Gallery) != 1 || got[0].Gallery[0] != "a.jpg" {
		t.Errorf("expected gallery to survive round trip, got %+v", got[0].Gallery)
	}
}

func TestLocalStore_SettingsRoundTrip(t *testing.T) {
	s, _ := newTestLocalStore(t)
	ctx := context.Background()

	settings := content.SiteSettings{SiteTitle: "Custom", FooterText: "footer"}
	if err := s.SaveSiteSettings(ctx, settings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.GetSiteSettings(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != settings {
		t.Errorf("expected %+v, got %+v", settings, got)
	}

	links := content.SocialLinks{Facebook: "https://facebook.com/mysite"}
	if err := s.SaveSocialLinks(ctx, links); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gotLinks, err := s.GetSocialLinks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLinks != links {
		t.Errorf("expected %+v, got %+v", links, gotLinks)
	}

	admin := content.AdminSettings{AccessCode: "secret", SessionMinutes: 15}
	if err := s.SaveAdminSettings(ctx, admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gotAdmin, err := s.GetAdminSettings(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAdmin != admin {
		t.Errorf("expected %+v, got %+v", admin, gotAdmin)
	}
}

func TestLocalStore_FlushAndReopen(t *testing.T) {
	s, path := newTestLocalStore(t)
	ctx := context.Background()

	settings := content.SiteSettings{SiteTitle: "Persisted"}
	if err := s.SaveSiteSettings(ctx, settings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsDirty() {
		t.Fatal("expected store to be dirty after save")
	}
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if s.IsDirty() {
		t.Error("expected store to be clean after flush")
	}

	reopened, err := NewLocalStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := reopened.GetSiteSettings(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SiteTitle != "Persisted" {
		t.Errorf("expected persisted settings after reopen, got %+v", got)
	}
}

func TestLocalStore_Flush_CleanIsNoop(t *testing.T) {
	s, path := newTestLocalStore(t)

	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no data file to be written for a clean store")
	}
}

func TestLocalStore_BrokenFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	s, err := NewLocalStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.GetSiteSettings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != content.DefaultSiteSettings() {
		t.Errorf("expected defaults for broken data file, got %+v", got)
	}
}

func TestLocalStore_Reload_DirtySkips(t *testing.T) {
	s, path := newTestLocalStore(t)
	ctx := context.Background()

	if err := s.SaveSiteSettings(ctx, content.SiteSettings{SiteTitle: "In Memory"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	external := []byte(`{"site-settings":{"siteTitle":"From Disk"}}`)
	if err := os.WriteFile(path, external, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	s.Reload()

	got, err := s.GetSiteSettings(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SiteTitle != "In Memory" {
		t.Errorf("expected dirty store to keep unflushed state, got %+v", got)
	}
}

func TestLocalStore_Reload_CleanPicksUpDiskState(t *testing.T) {
	s, path := newTestLocalStore(t)
	ctx := context.Background()

	external := []byte(`{"site-settings":{"siteTitle":"From Disk"}}`)
	if err := os.WriteFile(path, external, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	s.Reload()

	got, err := s.GetSiteSettings(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SiteTitle != "From Disk" {
		t.Errorf("expected reload to pick up disk state, got %+v", got)
	}
}

func TestStartPersistenceScheduler_FlushesAndStops(t *testing.T) {
	s, path := newTestLocalStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := StartPersistenceScheduler(ctx, s, 20*time.Millisecond)

	if err := s.SaveSiteSettings(ctx, content.SiteSettings{SiteTitle: "Scheduled"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.IsDirty() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.IsDirty() {
		t.Fatal("expected scheduler to flush the store")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected data file to exist: %v", err)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected scheduler to stop after context cancellation")
	}
}

func TestStartWatcher_ReloadsOnExternalWrite(t *testing.T) {
	s, path := newTestLocalStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.StartWatcher(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	external := []byte(`{"site-settings":{"siteTitle":"Watched"}}`)
	if err := os.WriteFile(path, external, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		got, err := s.GetSiteSettings(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.SiteTitle == "Watched" {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("expected watcher to reload external write")
}
