package release

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropvoxsite/internal/config"
)

func testReleaseConfig() config.ReleaseConfig {
	return config.ReleaseConfig{
		Owner:            "helrabelo",
		Repo:             "dropvox",
		CacheTTL:         5 * time.Minute,
		FallbackVersion:  "0.7.1",
		FallbackURL:      "https://github.com/helrabelo/dropvox/releases/download/v0.7.1/DropVox-0.7.1.dmg",
		FallbackFileName: "DropVox-0.7.1.dmg",
	}
}

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service := NewService(testReleaseConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	service.apiBaseURL = server.URL
	service.client.RetryMax = 0
	return service
}

const releaseJSON = `{
	"tag_name": "v0.8.0",
	"name": "DropVox 0.8.0",
	"body": "Faster transcription on Apple Silicon.",
	"published_at": "2026-08-20T12:00:00Z",
	"assets": [
		{"name": "checksums.txt", "browser_download_url": "https://example.com/checksums.txt", "download_count": 12},
		{"name": "DropVox-0.8.0.dmg", "browser_download_url": "https://example.com/DropVox-0.8.0.dmg", "download_count": 341}
	]
}`

func TestLatest_FetchesFromGitHub(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/helrabelo/dropvox/releases/latest", r.URL.Path)
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		w.Write([]byte(releaseJSON))
	}))

	meta := service.Latest(context.Background())

	assert.Equal(t, "0.8.0", meta.Version)
	assert.Equal(t, "v0.8.0", meta.TagName)
	assert.Equal(t, "https://example.com/DropVox-0.8.0.dmg", meta.DownloadURL)
	assert.Equal(t, "DropVox-0.8.0.dmg", meta.FileName)
	assert.Equal(t, 341, meta.DownloadCount)
	assert.Equal(t, "DropVox 0.8.0", meta.ReleaseName)
	assert.Empty(t, meta.Error)
}

func TestLatest_CachesWithinTTL(t *testing.T) {
	var calls atomic.Int32
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(releaseJSON))
	}))

	first := service.Latest(context.Background())
	second := service.Latest(context.Background())

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLatest_FallsBackOnUpstreamError(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	meta := service.Latest(context.Background())

	assert.Equal(t, "0.7.1", meta.Version)
	assert.Equal(t, "v0.7.1", meta.TagName)
	assert.Equal(t, "DropVox-0.7.1.dmg", meta.FileName)
	assert.Equal(t, "Failed to fetch latest release", meta.Error)
}

func TestLatest_FallsBackOnBadJSON(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))

	meta := service.Latest(context.Background())

	assert.Equal(t, "Failed to fetch latest release", meta.Error)
}

func TestLatest_FallbackIsNotCached(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(releaseJSON))
	}))

	meta := service.Latest(context.Background())
	require.NotEmpty(t, meta.Error)

	failing.Store(false)

	meta = service.Latest(context.Background())
	assert.Empty(t, meta.Error)
	assert.Equal(t, "0.8.0", meta.Version)
}

func TestLatest_NoDiskImageAsset(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name": "v0.8.0", "assets": []}`))
	}))

	meta := service.Latest(context.Background())

	assert.Equal(t, "0.8.0", meta.Version)
	assert.Empty(t, meta.DownloadURL)
	assert.Empty(t, meta.Error)
}
