package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/containerd/errdefs"

	"github.com/davoli/staticms/internal/config"
	"github.com/davoli/staticms/internal/content"
	"github.com/davoli/staticms/internal/logger"
)

const defaultAPIBaseURL = "https://api.github.com"

// RemoteFile is the result of reading a file from the content repository.
// SHA is the blob hash GitHub requires to update or delete the file without
// clobbering changes it has not seen.
type RemoteFile struct {
	Content []byte
	SHA     string
}

// CommitResult reports the commit created by a remote write.
type CommitResult struct {
	SHA     string
	FileSHA string
}

// GitHubStore persists content documents as files committed to a GitHub
// repository through the REST contents API.
type GitHubStore struct {
	client *http.Client
	base   string
	owner  string
	repo   string
	branch string
	token  string
}

// NewGitHubStore creates a store for the configured content repository.
func NewGitHubStore(cfg config.GitHubConfig) (*GitHubStore, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, errors.New("github owner and repo are required")
	}
	if cfg.Token == "" {
		return nil, errors.New("github token is required")
	}
	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}
	return &GitHubStore{
		client: &http.Client{Timeout: 30 * time.Second},
		base:   defaultAPIBaseURL,
		owner:  cfg.Owner,
		repo:   cfg.Repo,
		branch: branch,
		token:  cfg.Token,
	}, nil
}

// Name identifies the backend.
func (s *GitHubStore) Name() string { return BackendGitHub }

// SetBaseURL overrides the API endpoint. Used by tests.
func (s *GitHubStore) SetBaseURL(base string) {
	s.base = strings.TrimSuffix(base, "/")
}

// Probe checks that the content repository exists and the token can reach it.
func (s *GitHubStore) Probe(ctx context.Context) error {
	url := fmt.Sprintf("%s/repos/%s/%s", s.base, s.owner, s.repo)
	req, err := s.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe repository: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe repository: %s", httpError(resp))
	}
	return nil
}

// GetFile fetches a file's content and blob SHA. A missing file is not an
// error: it returns (nil, nil).
func (s *GitHubStore) GetFile(ctx context.Context, path string) (*RemoteFile, error) {
	url := fmt.Sprintf("%s?ref=%s", s.contentsURL(path), s.branch)
	req, err := s.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: %s", path, httpError(resp))
	}

	var body struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
		SHA      string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("get %s: decode response: %w", path, err)
	}

	raw, err := decodeContent(body.Content, body.Encoding)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return &RemoteFile{Content: raw, SHA: body.SHA}, nil
}

// SaveFile creates or updates a file with a commit. When the file already
// exists its current blob SHA is sent along, which is GitHub's precondition
// against overwriting changes made behind our back. The window between the
// existence check and the write is not re-verified; a concurrent external
// commit surfaces as whatever conflict error GitHub returns.
func (s *GitHubStore) SaveFile(ctx context.Context, path string, data []byte, message string) (*CommitResult, error) {
	existing, err := s.GetFile(ctx, path)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(data),
		"branch":  s.branch,
	}
	if existing != nil {
		payload["sha"] = existing.SHA
	}

	return s.commit(ctx, http.MethodPut, path, payload, "save")
}

// DeleteFile removes a file with a commit. It fails with a not-found error
// when the file does not exist, without issuing a delete request.
func (s *GitHubStore) DeleteFile(ctx context.Context, path string, message string) (*CommitResult, error) {
	existing, err := s.GetFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("delete %s: %w", path, errdefs.ErrNotFound)
	}

	payload := map[string]any{
		"message": message,
		"sha":     existing.SHA,
		"branch":  s.branch,
	}

	return s.commit(ctx, http.MethodDelete, path, payload, "delete")
}

func (s *GitHubStore) commit(ctx context.Context, method, path string, payload map[string]any, op string) (*CommitResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s %s: marshal request: %w", op, path, err)
	}

	req, err := s.newRequest(ctx, method, s.contentsURL(path), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%s %s: %s", op, path, httpError(resp))
	}

	var result struct {
		Content *struct {
			SHA string `json:"sha"`
		} `json:"content"`
		Commit struct {
			SHA string `json:"sha"`
		} `json:"commit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s %s: decode response: %w", op, path, err)
	}

	cr := &CommitResult{SHA: result.Commit.SHA}
	if result.Content != nil {
		cr.FileSHA = result.Content.SHA
	}
	return cr, nil
}

// GetNewsItems reads the news collection, returning an empty collection when
// the file is absent or unreadable.
func (s *GitHubStore) GetNewsItems(ctx context.Context) ([]content.NewsItem, error) {
	var decoded []content.NewsItem
	if !s.loadDocument(ctx, PathNews, &decoded) {
		return []content.NewsItem{}, nil
	}
	for i := range decoded {
		decoded[i].ApplyDefaults()
	}
	return decoded, nil
}

// SaveNewsItems replaces the whole news collection.
func (s *GitHubStore) SaveNewsItems(ctx context.Context, items []content.NewsItem) error {
	return s.saveDocument(ctx, PathNews, items, messageNews)
}

func (s *GitHubStore) GetSiteSettings(ctx context.Context) (content.SiteSettings, error) {
	var decoded content.SiteSettings
	if !s.loadDocument(ctx, PathSettings, &decoded) {
		return content.DefaultSiteSettings(), nil
	}
	return decoded, nil
}

func (s *GitHubStore) SaveSiteSettings(ctx context.Context, settings content.SiteSettings) error {
	return s.saveDocument(ctx, PathSettings, settings, messageSettings)
}

func (s *GitHubStore) GetSocialLinks(ctx context.Context) (content.SocialLinks, error) {
	var decoded content.SocialLinks
	if !s.loadDocument(ctx, PathSocial, &decoded) {
		return content.DefaultSocialLinks(), nil
	}
	return decoded, nil
}

func (s *GitHubStore) SaveSocialLinks(ctx context.Context, links content.SocialLinks) error {
	return s.saveDocument(ctx, PathSocial, links, messageSocial)
}

func (s *GitHubStore) GetAdminSettings(ctx context.Context) (content.AdminSettings, error) {
	var decoded content.AdminSettings
	if !s.loadDocument(ctx, PathAdmin, &decoded) {
		return content.DefaultAdminSettings(), nil
	}
	return decoded, nil
}

func (s *GitHubStore) SaveAdminSettings(ctx context.Context, settings content.AdminSettings) error {
	return s.saveDocument(ctx, PathAdmin, settings, messageAdmin)
}

// loadDocument reads and decodes a JSON document into dest. It reports
// whether dest now holds persisted content; on absence or any failure the
// caller falls back to the kind's default. Failures are logged, never
// surfaced.
func (s *GitHubStore) loadDocument(ctx context.Context, path string, dest any) bool {
	file, err := s.GetFile(ctx, path)
	if err != nil {
		logger.WithComponent("github-store").Warnf("read %s failed, using default: %v", path, err)
		return false
	}
	if file == nil {
		logger.WithComponent("github-store").Debugf("%s not found, using default", path)
		return false
	}
	if err := json.Unmarshal(file.Content, dest); err != nil {
		logger.WithComponent("github-store").Warnf("decode %s failed, using default: %v", path, err)
		return false
	}
	return true
}

func (s *GitHubStore) saveDocument(ctx context.Context, path string, doc any, message string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if _, err := s.SaveFile(ctx, path, data, message); err != nil {
		return err
	}
	return nil
}

func (s *GitHubStore) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.base, s.owner, s.repo, path)
}

func (s *GitHubStore) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// decodeContent handles the base64 payload of the contents API. GitHub wraps
// the encoded content at 60 columns, so whitespace is stripped first.
func decodeContent(encoded, encoding string) ([]byte, error) {
	if encoding != "" && encoding != "base64" {
		return nil, fmt.Errorf("unsupported content encoding: %s", encoding)
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, encoded)

	raw, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return raw, nil
}

func httpError(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return resp.Status
	}
	return fmt.Sprintf("%s: %s", resp.Status, msg)
}
