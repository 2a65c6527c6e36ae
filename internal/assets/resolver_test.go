package assets

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Alexander-D-Karpov/sides/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Assets.Dir = t.TempDir()
	cfg.Assets.Timeout = 5
	cfg.Assets.Retries = 0
	cfg.Assets.UserAgent = "sides-test"
	cfg.Storage.CacheDir = t.TempDir()
	return cfg
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestOpenLocal(t *testing.T) {
	cfg := testConfig(t)
	name := "Loud Cloud, Soft Cloud.wav"
	if err := os.WriteFile(filepath.Join(cfg.Assets.Dir, name), []byte("local"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(cfg)

	for _, p := range []string{name, "/" + name} {
		rc, err := r.Open(context.Background(), p)
		if err != nil {
			t.Fatalf("Open(%q) failed: %v", p, err)
		}
		if got := readAll(t, rc); got != "local" {
			t.Errorf("Open(%q) read %q", p, got)
		}
	}
}

func TestOpenMissingWithoutRemote(t *testing.T) {
	r := NewResolver(testConfig(t))

	_, err := r.Open(context.Background(), "missing.wav")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = r.Open(context.Background(), "  ")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for blank path, got %v", err)
	}
}

func TestOpenRemoteIsCached(t *testing.T) {
	var hits int32
	var mu sync.Mutex
	var gotPath, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		mu.Lock()
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		mu.Unlock()
		if r.URL.Path != "/Loud Cloud, Soft Cloud.wav" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote"))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Assets.BaseURL = srv.URL + "/"
	r := NewResolver(cfg)

	for i := 0; i < 2; i++ {
		rc, err := r.Open(context.Background(), "Loud Cloud, Soft Cloud.wav")
		if err != nil {
			t.Fatalf("Open #%d failed: %v", i, err)
		}
		if got := readAll(t, rc); got != "remote" {
			t.Errorf("Open #%d read %q", i, got)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("expected one download, server saw %d requests", n)
	}
	if gotPath != "/Loud Cloud, Soft Cloud.wav" {
		t.Errorf("path must reach the server verbatim, got %q", gotPath)
	}
	if gotAgent != "sides-test" {
		t.Errorf("expected configured user agent, got %q", gotAgent)
	}
}

func TestOpenRemoteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Assets.BaseURL = srv.URL
	r := NewResolver(cfg)

	_, err := r.Open(context.Background(), "nope.wav")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestURLEscapesSegments(t *testing.T) {
	cfg := testConfig(t)
	cfg.Assets.BaseURL = "https://example.com/release/"
	r := NewResolver(cfg)

	got, err := r.URL("/audio/Loud Cloud, Soft Cloud.wav")
	if err != nil {
		t.Fatal(err)
	}
	expected := "https://example.com/release/audio/Loud%20Cloud%2C%20Soft%20Cloud.wav"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestCleanPathStaysInside(t *testing.T) {
	got, err := cleanPath("../../etc/passwd")
	if err != nil {
		t.Fatal(err)
	}
	if got != "etc/passwd" {
		t.Errorf("expected traversal to be stripped, got %q", got)
	}
}
