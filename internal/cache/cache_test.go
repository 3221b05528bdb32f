package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go2web/internal/search"
)

func testResults() []search.Result {
	return []search.Result{
		{Title: "The Rust Book", URL: "https://doc.rust-lang.org/book/", Rank: 1},
		{Title: "Rust by Example", URL: "https://doc.rust-lang.org/rust-by-example/", Rank: 2},
	}
}

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.json"), time.Hour)
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	return c
}

func TestStoreAndLookup(t *testing.T) {
	c := openTestCache(t)

	if err := c.Store("rust tutorial", testResults()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	results, ok := c.Lookup("rust tutorial")
	if !ok {
		t.Fatal("Expected a cache hit")
	}
	if len(results) != 2 || results[0].Title != "The Rust Book" || results[1].Rank != 2 {
		t.Errorf("Results mismatch: %+v", results)
	}
}

func TestLookupIsCaseSensitive(t *testing.T) {
	c := openTestCache(t)

	if err := c.Store("rust tutorial", testResults()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if _, ok := c.Lookup("Rust Tutorial"); ok {
		t.Error("Lookup must match keys exactly and case-sensitively")
	}
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c, err := Open(path, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Store("rust tutorial", testResults()); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// Move the clock past the expiry window.
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, ok := c.Lookup("rust tutorial"); ok {
		t.Error("Expired entry must read as a miss")
	}

	// The record stays on disk until the next mutation.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "rust tutorial") {
		t.Error("Expired record should remain on disk until the next store/clear")
	}

	// The next store prunes it.
	if err := c.Store("other", testResults()); err != nil {
		t.Fatal(err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "rust tutorial") {
		t.Error("Store should prune expired records from disk")
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c, err := Open(path, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Store("rust tutorial", testResults()); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if _, ok := c.Lookup("rust tutorial"); ok {
		t.Error("Lookup after Clear should miss")
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", c.Len())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Clear should persist the empty cache: %v", err)
	}
	if strings.Contains(string(data), "rust tutorial") {
		t.Error("Cleared entry still on disk")
	}
}

func TestStoreOverwritesExisting(t *testing.T) {
	c := openTestCache(t)

	if err := c.Store("q", testResults()); err != nil {
		t.Fatal(err)
	}
	replacement := []search.Result{{Title: "New", URL: "https://new.example", Rank: 1}}
	if err := c.Store("q", replacement); err != nil {
		t.Fatal(err)
	}

	results, ok := c.Lookup("q")
	if !ok || len(results) != 1 || results[0].Title != "New" {
		t.Errorf("Overwrite failed: %+v", results)
	}
}

func TestReopenRoundTripsEveryField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c, err := Open(path, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Store("rust tutorial", testResults()); err != nil {
		t.Fatal(err)
	}
	stored := c.entries["rust tutorial"]

	reopened, err := Open(path, time.Hour)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}

	entry, ok := reopened.entries["rust tutorial"]
	if !ok {
		t.Fatal("Entry lost across reopen")
	}
	if !entry.CreatedAt.Equal(stored.CreatedAt) {
		t.Errorf("Timestamp did not round-trip: %v vs %v", entry.CreatedAt, stored.CreatedAt)
	}
	if len(entry.Results) != 2 ||
		entry.Results[0] != stored.Results[0] ||
		entry.Results[1] != stored.Results[1] {
		t.Errorf("Results did not round-trip: %+v", entry.Results)
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "absent", "cache.json"), time.Hour)
	if err != nil {
		t.Fatalf("Open on a missing file should succeed: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", c.Len())
	}
}

func TestOpenCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, time.Hour); err == nil {
		t.Error("Open on a corrupt file should fail")
	}
}
