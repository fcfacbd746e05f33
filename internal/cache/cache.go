// Package cache provides a file-backed TTL cache for remote metadata
// responses, one file per request URL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/raido/internal/checksum"
)

const requestTimeout = 15 * time.Second

// Store caches raw JSON response bodies on disk. The cache file's own
// mtime is the freshness signal; an entry older than the TTL is treated
// as absent and refetched. There is deliberately no stale fallback: a
// failed refetch is an error, never silently served from disk.
type Store struct {
	dir   string
	ttl   time.Duration
	httpc *http.Client
	now   func() time.Time
}

// New creates a Store rooted at dir, creating the directory if absent.
func New(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	return &Store{
		dir:   dir,
		ttl:   ttl,
		httpc: &http.Client{Timeout: requestTimeout},
		now:   time.Now,
	}, nil
}

// Fetch returns the cached body for url when the entry is younger than the
// TTL, otherwise performs the request and replaces the entry on success.
func (s *Store) Fetch(ctx context.Context, url string) ([]byte, error) {
	path := s.entryPath(url)
	if info, err := os.Stat(path); err == nil && s.now().Sub(info.ModTime()) < s.ttl {
		data, err := os.ReadFile(path)
		if err == nil && json.Valid(data) {
			return data, nil
		}
		// Unreadable or corrupt entry: fall through to a refetch.
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("cache: build request: %w", err)
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cache: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cache: fetch %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cache: read response from %s: %w", url, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("cache: fetch %s: response is not valid JSON", url)
	}
	if err := s.write(path, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Purge deletes every cache entry and reports how many were removed.
func (s *Store) Purge() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("cache: read dir: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return removed, fmt.Errorf("cache: remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (s *Store) entryPath(url string) string {
	return filepath.Join(s.dir, checksum.Key(url)+".json")
}

// write persists data atomically: tmp file → fsync → rename.
func (s *Store) write(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".raido-tmp-*")
	if err != nil {
		return fmt.Errorf("cache: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("cache: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("cache: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("cache: rename: %w", err)
	}
	success = true
	return nil
}
