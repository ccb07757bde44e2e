// Package release fetches latest-release metadata for the desktop app from
// the GitHub releases API. It never fails its caller: any fetch or decode
// problem falls back to the last known hardcoded release so the download
// page keeps working.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"dropvoxsite/internal/config"
)

const defaultAPIBaseURL = "https://api.github.com"

// githubRelease mirrors the subset of the GitHub release object we read.
type githubRelease struct {
	TagName     string        `json:"tag_name"`
	Name        string        `json:"name"`
	Body        string        `json:"body"`
	PublishedAt string        `json:"published_at"`
	Assets      []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	DownloadCount      int    `json:"download_count"`
}

// Metadata is the wire shape served to the download page.
type Metadata struct {
	Version       string `json:"version"`
	TagName       string `json:"tagName"`
	DownloadURL   string `json:"downloadUrl"`
	FileName      string `json:"fileName"`
	DownloadCount int    `json:"downloadCount"`
	PublishedAt   string `json:"publishedAt,omitempty"`
	ReleaseName   string `json:"releaseName,omitempty"`
	ReleaseNotes  string `json:"releaseNotes,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Service fetches and caches release metadata.
type Service struct {
	cfg        config.ReleaseConfig
	apiBaseURL string
	client     *retryablehttp.Client
	logger     *slog.Logger

	mu        sync.Mutex
	cached    *Metadata
	fetchedAt time.Time
}

// NewService creates a release metadata service.
func NewService(cfg config.ReleaseConfig, logger *slog.Logger) *Service {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil // retryablehttp's own logger is too chatty; we log outcomes ourselves

	return &Service{
		cfg:        cfg,
		apiBaseURL: defaultAPIBaseURL,
		client:     client,
		logger:     logger.With(slog.String("component", "release")),
	}
}

// Latest returns the newest release metadata, cached for the configured TTL.
// On any failure it returns the configured fallback with Error set, never an
// error: the calling page must not break because GitHub is unreachable.
func (s *Service) Latest(ctx context.Context) *Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.fetchedAt) < s.cfg.CacheTTL {
		return s.cached
	}

	meta, err := s.fetch(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "falling back to static release metadata",
			slog.String("error", err.Error()))
		return s.fallback()
	}

	s.cached = meta
	s.fetchedAt = time.Now()
	return meta
}

func (s *Service) fetch(ctx context.Context) (*Metadata, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", s.apiBaseURL, s.cfg.Owner, s.cfg.Repo)

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "dropvox-site")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var rel githubRelease
	if err := json.Unmarshal(body, &rel); err != nil {
		return nil, fmt.Errorf("failed to parse release: %w", err)
	}

	meta := &Metadata{
		Version:      strings.TrimPrefix(rel.TagName, "v"),
		TagName:      rel.TagName,
		PublishedAt:  rel.PublishedAt,
		ReleaseName:  rel.Name,
		ReleaseNotes: rel.Body,
	}

	// The macOS disk image is the only asset the download page links.
	for _, asset := range rel.Assets {
		if strings.HasSuffix(asset.Name, ".dmg") {
			meta.DownloadURL = asset.BrowserDownloadURL
			meta.FileName = asset.Name
			meta.DownloadCount = asset.DownloadCount
			break
		}
	}

	return meta, nil
}

func (s *Service) fallback() *Metadata {
	return &Metadata{
		Version:     s.cfg.FallbackVersion,
		TagName:     "v" + s.cfg.FallbackVersion,
		DownloadURL: s.cfg.FallbackURL,
		FileName:    s.cfg.FallbackFileName,
		Error:       "Failed to fetch latest release",
	}
}
