// Package assets resolves the release's static files (audio and images) by
// their verbatim path: first from a local directory, then, when a base URL is
// configured, over HTTP into an on-disk cache.
package assets

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Alexander-D-Karpov/sides/internal/config"
	"github.com/Alexander-D-Karpov/sides/pkg/types"
)

var ErrNotFound = errors.New("asset not found")

type Resolver struct {
	dir       string
	baseURL   string
	cacheDir  string
	userAgent string

	httpClient *retryablehttp.Client
	limiter    *rate.Limiter

	downloadMu sync.Map
}

var _ types.AssetSource = (*Resolver)(nil)

func NewResolver(cfg *config.Config) *Resolver {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Assets.Retries
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.HTTPClient.Timeout = time.Duration(cfg.Assets.Timeout) * time.Second
	retryClient.Logger = nil
	if cfg.Debug {
		retryClient.Logger = zerologAdapter{}
	}

	rps := cfg.Assets.RequestsPerSecond
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	burst := cfg.Assets.BurstSize
	if burst < 1 {
		burst = 1
	}

	r := &Resolver{
		dir:        cfg.Assets.Dir,
		baseURL:    strings.TrimRight(cfg.Assets.BaseURL, "/"),
		cacheDir:   filepath.Join(cfg.Storage.CacheDir, "assets"),
		userAgent:  cfg.Assets.UserAgent,
		httpClient: retryClient,
		limiter:    rate.NewLimiter(limit, burst),
	}

	log.Debug().Str("component", "assets").
		Str("dir", r.dir).
		Str("base_url", r.baseURL).
		Msg("Asset resolver initialized")

	return r
}

// Open returns a seekable reader for the asset at p.
func (r *Resolver) Open(ctx context.Context, p string) (io.ReadSeekCloser, error) {
	rel, err := cleanPath(p)
	if err != nil {
		return nil, err
	}

	if r.dir != "" {
		f, err := os.Open(filepath.Join(r.dir, filepath.FromSlash(rel)))
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open %q: %w", p, err)
		}
	}

	if r.baseURL == "" {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, p)
	}

	cached := r.cachePath(rel)
	if f, err := os.Open(cached); err == nil {
		return f, nil
	}

	if err := r.download(ctx, rel, cached); err != nil {
		return nil, err
	}

	f, err := os.Open(cached)
	if err != nil {
		return nil, fmt.Errorf("open cached %q: %w", p, err)
	}
	return f, nil
}

// URL returns the remote location of an asset path, escaping every segment.
func (r *Resolver) URL(p string) (string, error) {
	rel, err := cleanPath(p)
	if err != nil {
		return "", err
	}

	segments := strings.Split(rel, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return r.baseURL + "/" + strings.Join(segments, "/"), nil
}

func (r *Resolver) download(ctx context.Context, rel, dest string) error {
	lock, _ := r.downloadMu.LoadOrStore(dest, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	fullURL, err := r.URL(rel)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	started := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %q: %w", rel, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %q", ErrNotFound, rel)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("fetch %q: bad status: %s", rel, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %q: %w", rel, err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("store %q: %w", rel, err)
	}

	log.Debug().Str("component", "assets").
		Str("url", fullURL).
		Int64("bytes", written).
		Dur("took", time.Since(started)).
		Msg("Downloaded asset")

	return nil
}

// cachePath keys the cache by a hash of the verbatim path and keeps the
// extension so decoders can still sniff the format by name.
func (r *Resolver) cachePath(rel string) string {
	sum := sha256.Sum256([]byte(rel))
	return filepath.Join(r.cacheDir, fmt.Sprintf("%x%s", sum[:16], path.Ext(rel)))
}

func cleanPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}
	rel := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(p)), "/")
	if rel == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, p)
	}
	return rel, nil
}

type zerologAdapter struct{}

func (zerologAdapter) Printf(format string, args ...interface{}) {
	log.Debug().Str("component", "http").Msgf(format, args...)
}
