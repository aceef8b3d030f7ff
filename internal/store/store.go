// Package store persists the site's content documents either in a GitHub
// repository (files committed through the REST contents API) or in a local
// JSON file when the remote backend is unavailable or not configured.
package store

import (
	"context"

	"github.com/davoli/staticms/internal/content"
)

// Backend names as reported by Store.Name.
const (
	BackendGitHub = "github"
	BackendLocal  = "local"
)

// Repository-relative paths of the four content documents.
const (
	PathNews     = "news.json"
	PathSettings = "settings.json"
	PathSocial   = "social.json"
	PathAdmin    = "admin.json"
)

// Commit messages used for remote writes, one per document kind.
const (
	messageNews     = "Update news items"
	messageSettings = "Update site settings"
	messageSocial   = "Update social links"
	messageAdmin    = "Update admin settings"
)

// FileStore exposes path-level file operations. Only the GitHub backend
// implements it; the local store is accessed per document key only. Unlike
// the document accessors these surface their errors, which is what the
// diagnostics tooling wants.
type FileStore interface {
	GetFile(ctx context.Context, path string) (*RemoteFile, error)
	SaveFile(ctx context.Context, path string, data []byte, message string) (*CommitResult, error)
	DeleteFile(ctx context.Context, path string, message string) (*CommitResult, error)
}

// Store is the document accessor contract shared by both backends.
// Accessor reads degrade to the kind's default value instead of failing;
// the error return exists for forward compatibility and transport surfaces
// that want to expose it.
type Store interface {
	Name() string

	GetNewsItems(ctx context.Context) ([]content.NewsItem, error)
	SaveNewsItems(ctx context.Context, items []content.NewsItem) error

	GetSiteSettings(ctx context.Context) (content.SiteSettings, error)
	SaveSiteSettings(ctx context.Context, settings content.SiteSettings) error

	GetSocialLinks(ctx context.Context) (content.SocialLinks, error)
	SaveSocialLinks(ctx context.Context, links content.SocialLinks) error

	GetAdminSettings(ctx context.Context) (content.AdminSettings, error)
	SaveAdminSettings(ctx context.Context, settings content.AdminSettings) error
}
