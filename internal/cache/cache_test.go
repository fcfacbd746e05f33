package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := New(t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func countingServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetch_ServesFreshEntryWithoutNetworkCall(t *testing.T) {
	srv, hits := countingServer(t, `{"ok":true}`)
	s := testStore(t, time.Minute)

	first, err := s.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	second, err := s.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("network calls = %d, want 1", hits.Load())
	}
	if string(first) != string(second) {
		t.Errorf("cached body differs: %q vs %q", first, second)
	}
}

func TestFetch_ExpiredEntryTriggersOneRefetch(t *testing.T) {
	srv, hits := countingServer(t, `{"ok":true}`)
	s := testStore(t, 5*time.Minute)

	if _, err := s.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("first Fetch: %v", err)
	}

	// Age the entry past the TTL.
	s.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	if _, err := s.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("network calls = %d, want 2", hits.Load())
	}
}

func TestFetch_TransportErrorIsFatal(t *testing.T) {
	srv, _ := countingServer(t, `{}`)
	url := srv.URL
	srv.Close()

	s := testStore(t, time.Minute)
	if _, err := s.Fetch(context.Background(), url); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestFetch_BadStatusIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	s := testStore(t, time.Minute)
	_, err := s.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
	if !strings.Contains(err.Error(), "unexpected status") {
		t.Errorf("error should surface the status: %v", err)
	}
}

func TestFetch_InvalidJSONIsFatalAndNotCached(t *testing.T) {
	srv, _ := countingServer(t, "definitely not json")
	s := testStore(t, time.Minute)

	if _, err := s.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected decode error")
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("bad response should not be cached, found %d entries", len(entries))
	}
}

func TestPurge(t *testing.T) {
	srv, hits := countingServer(t, `{"ok":true}`)
	s := testStore(t, time.Hour)

	for _, u := range []string{srv.URL + "/a", srv.URL + "/b"} {
		if _, err := s.Fetch(context.Background(), u); err != nil {
			t.Fatalf("Fetch %s: %v", u, err)
		}
	}

	removed, err := s.Purge()
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	// A purged entry goes back to the network.
	before := hits.Load()
	if _, err := s.Fetch(context.Background(), srv.URL+"/a"); err != nil {
		t.Fatalf("Fetch after purge: %v", err)
	}
	if hits.Load() != before+1 {
		t.Errorf("expected a network call after purge")
	}
}
