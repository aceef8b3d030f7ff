package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davoli/staticms/internal/config"
	"github.com/davoli/staticms/internal/content"
)

// fakeContentsAPI mimics the subset of the GitHub REST API the store uses:
// repository metadata plus the contents endpoints for get, put and delete.
type fakeContentsAPI struct {
	mu    sync.Mutex
	files map[string]fakeFile
	puts  []fakeWrite
	dels  []fakeWrite

	repoStatus int
}

type fakeFile struct {
	content []byte
	sha     string
}

type fakeWrite struct {
	path    string
	message string
	branch  string
	sha     string
	content []byte
}

func newFakeContentsAPI() *fakeContentsAPI {
	return &fakeContentsAPI{
		files:      map[string]fakeFile{},
		repoStatus: http.StatusOK,
	}
}

func (f *fakeContentsAPI) put(path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = fakeFile{content: data, sha: fmt.Sprintf("sha-%s-%d", path, len(data))}
}

func (f *fakeContentsAPI) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/owner/site-content", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status := f.repoStatus
		f.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"full_name":"owner/site-content"}`)
	})

	mux.HandleFunc("/repos/owner/site-content/contents/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header: %q", got)
		}

		path := strings.TrimPrefix(r.URL.Path, "/repos/owner/site-content/contents/")

		switch r.Method {
		case http.MethodGet:
			f.mu.Lock()
			file, ok := f.files[path]
			f.mu.Unlock()
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message":"Not Found"}`)
				return
			}
			// GitHub wraps base64 content at 60 columns; reproduce that.
			encoded := base64.StdEncoding.EncodeToString(file.content)
			var wrapped strings.Builder
			for i := 0; i < len(encoded); i += 60 {
				end := i + 60
				if end > len(encoded) {
					end = len(encoded)
				}
				wrapped.WriteString(encoded[i:end])
				wrapped.WriteString("\n")
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"content":  wrapped.String(),
				"encoding": "base64",
				"sha":      file.sha,
			})

		case http.MethodPut, http.MethodDelete:
			var body struct {
				Message string `json:"message"`
				Content string `json:"content"`
				Branch  string `json:"branch"`
				SHA     string `json:"sha"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode write body: %v", err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			write := fakeWrite{path: path, message: body.Message, branch: body.Branch, sha: body.SHA}

			f.mu.Lock()
			defer f.mu.Unlock()

			if r.Method == http.MethodDelete {
				f.dels = append(f.dels, write)
				delete(f.files, path)
				fmt.Fprint(w, `{"commit":{"sha":"commit-del"}}`)
				return
			}

			raw, err := base64.StdEncoding.DecodeString(body.Content)
			if err != nil {
				t.Errorf("decode write content: %v", err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			write.content = raw
			f.puts = append(f.puts, write)

			_, existed := f.files[path]
			f.files[path] = fakeFile{content: raw, sha: fmt.Sprintf("sha-%s-%d", path, len(raw))}

			status := http.StatusCreated
			if existed {
				status = http.StatusOK
			}
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"content":{"sha":"%s"},"commit":{"sha":"commit-put"}}`, f.files[path].sha)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	return mux
}

func newTestGitHubStore(t *testing.T) (*GitHubStore, *fakeContentsAPI) {
	t.Helper()
	api := newFakeContentsAPI()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	s, err := NewGitHubStore(config.GitHubConfig{
		Owner:  "owner",
		Repo:   "site-content",
		Branch: "main",
		Token:  "test-token",
	})
	require.NoError(t, err)
	s.SetBaseURL(srv.URL)
	return s, api
}

func TestNewGitHubStore_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.GitHubConfig
	}{
		{"missing owner", config.GitHubConfig{Repo: "r", Token: "t"}},
		{"missing repo", config.GitHubConfig{Owner: "o", Token: "t"}},
		{"missing token", config.GitHubConfig{Owner: "o", Repo: "r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGitHubStore(tt.cfg); err == nil {
				t.Error("expected error for incomplete config")
			}
		})
	}
}

func TestGitHubStore_Probe(t *testing.T) {
	s, api := newTestGitHubStore(t)

	assert.NoError(t, s.Probe(context.Background()))

	api.mu.Lock()
	api.repoStatus = http.StatusNotFound
	api.mu.Unlock()
	assert.Error(t, s.Probe(context.Background()))
}

func TestGitHubStore_GetFile_Absent(t *testing.T) {
	s, _ := newTestGitHubStore(t)

	file, err := s.GetFile(context.Background(), "missing.json")
	require.NoError(t, err)
	assert.Nil(t, file)
}

func TestGitHubStore_GetFile_DecodesWrappedBase64(t *testing.T) {
	s, api := newTestGitHubStore(t)
	payload := []byte(strings.Repeat(`{"long":"payload"}`, 20))
	api.put("news.json", payload)

	file, err := s.GetFile(context.Background(), "news.json")
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, payload, file.Content)
	assert.NotEmpty(t, file.SHA)
}

func TestGitHubStore_SaveFile_NewFileOmitsSHA(t *testing.T) {
	s, api := newTestGitHubStore(t)

	result, err := s.SaveFile(context.Background(), "news.json", []byte(`[]`), "initial")
	require.NoError(t, err)
	assert.Equal(t, "commit-put", result.SHA)

	require.Len(t, api.puts, 1)
	assert.Empty(t, api.puts[0].sha, "create must not carry a blob sha")
	assert.Equal(t, "main", api.puts[0].branch)
	assert.Equal(t, "initial", api.puts[0].message)
}

func TestGitHubStore_SaveFile_ExistingFileCarriesSHA(t *testing.T) {
	s, api := newTestGitHubStore(t)
	api.put("news.json", []byte(`[]`))

	api.mu.Lock()
	wantSHA := api.files["news.json"].sha
	api.mu.Unlock()

	_, err := s.SaveFile(context.Background(), "news.json", []byte(`[{"id":"1"}]`), "update")
	require.NoError(t, err)

	require.Len(t, api.puts, 1)
	// Omitting the previously fetched sha would let the write silently
	// clobber concurrent changes.
	assert.Equal(t, wantSHA, api.puts[0].sha)
}

func TestGitHubStore_DeleteFile_AbsentFailsWithoutRequest(t *testing.T) {
	s, api := newTestGitHubStore(t)

	_, err := s.DeleteFile(context.Background(), "missing.json", "remove")
	require.Error(t, err)
	assert.True(t, errdefs.IsNotFound(err), "expected a not-found error, got: %v", err)
	assert.Empty(t, api.dels, "no delete request must reach the API for an absent file")
}

func TestGitHubStore_DeleteFile_ExistingCarriesSHA(t *testing.T) {
	s, api := newTestGitHubStore(t)
	api.put("news.json", []byte(`[]`))

	api.mu.Lock()
	wantSHA := api.files["news.json"].sha
	api.mu.Unlock()

	_, err := s.DeleteFile(context.Background(), "news.json", "remove")
	require.NoError(t, err)

	require.Len(t, api.dels, 1)
	assert.Equal(t, wantSHA, api.dels[0].sha)
}

func TestGitHubStore_NewsRoundTrip(t *testing.T) {
	s, _ := newTestGitHubStore(t)
	ctx := context.Background()

	items := content.SampleNewsItems()[:1]
	items[0].ID = "42"
	require.NoError(t, s.SaveNewsItems(ctx, items))

	got, err := s.GetNewsItems(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "42", got[0].ID)
	assert.Equal(t, items[0].Title, got[0].Title)
}

func TestGitHubStore_GetNewsItems_AbsentReturnsEmpty(t *testing.T) {
	s, _ := newTestGitHubStore(t)

	got, err := s.GetNewsItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGitHubStore_GetSiteSettings_BrokenJSONFallsBack(t *testing.T) {
	s, api := newTestGitHubStore(t)
	api.put("settings.json", []byte(`{not json`))

	got, err := s.GetSiteSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, content.DefaultSiteSettings(), got)
}

func TestGitHubStore_SettingsRoundTrip(t *testing.T) {
	s, api := newTestGitHubStore(t)
	ctx := context.Background()

	settings := content.SiteSettings{SiteTitle: "Custom", ContactEmail: "x@example.com"}
	require.NoError(t, s.SaveSiteSettings(ctx, settings))

	got, err := s.GetSiteSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, got)

	require.Len(t, api.puts, 1)
	assert.Equal(t, "Update site settings", api.puts[0].message)
}
