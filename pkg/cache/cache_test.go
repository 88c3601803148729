package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"testing"
	"time"
)

var errPermanent = errors.New("permanent")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	j1, err := HashJSON(map[string]int{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("HashJSON error: %v", err)
	}
	j2, _ := HashJSON(map[string]int{"b": 2, "a": 1})
	if j1 != j2 {
		t.Error("HashJSON should not depend on map order")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	r1 := k.ReportKey("board1", ReportKeyOpts{NetlistHash: "n", RulesetHash: "r1"})
	r2 := k.ReportKey("board1", ReportKeyOpts{NetlistHash: "n", RulesetHash: "r2"})
	r3 := k.ReportKey("board2", ReportKeyOpts{NetlistHash: "n", RulesetHash: "r1"})
	if r1 == r2 || r1 == r3 {
		t.Error("Different report inputs should produce different keys")
	}
	if r1 != k.ReportKey("board1", ReportKeyOpts{NetlistHash: "n", RulesetHash: "r1"}) {
		t.Error("ReportKey should be deterministic")
	}
	if !strings.HasPrefix(r1, "drc:") {
		t.Errorf("ReportKey unexpected prefix: %s", r1)
	}

	a1 := k.RatsnestKey("board1", RatsnestKeyOpts{Format: "dot"})
	a2 := k.RatsnestKey("board1", RatsnestKeyOpts{Format: "svg"})
	if a1 == a2 {
		t.Error("Different RatsnestKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "serve:")
	key := scoped.ReportKey("b", ReportKeyOpts{})
	if !strings.HasPrefix(key, "serve:drc:") {
		t.Errorf("ScopedKeyer ReportKey should be prefixed: %s", key)
	}
	if key != "serve:"+NewDefaultKeyer().ReportKey("b", ReportKeyOpts{}) {
		t.Errorf("ScopedKeyer should only add the prefix: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.RatsnestKey("b", RatsnestKeyOpts{Format: "dot"})
	if !strings.HasPrefix(key, "prefix:ratsnest:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, err := c.Get(ctx, "drc:missing"); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "drc:a", []byte(`{"ok":true}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "drc:a")
	if err != nil || !hit || string(data) != `{"ok":true}` {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "drc:stale", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "drc:stale"); hit {
		t.Error("Expired entries should miss")
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 1 {
		t.Errorf("Clear removed %d entries, want 1", n)
	}
	if _, hit, _ := c.Get(ctx, "drc:a"); hit {
		t.Error("Clear should remove entries")
	}
	if err := c.Delete(ctx, "drc:a"); err != nil {
		t.Errorf("Delete of missing key should succeed: %v", err)
	}
}

func TestFileCacheRejectsForeignEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if err := c.Set(ctx, "drc:a", []byte("a"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Another key's entry copied over this key's file.
	other, err := json.Marshal(fileEntry{Key: "drc:b", Kind: "drc", Data: []byte("b")})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("drc:a"), other, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "drc:a"); hit {
		t.Error("Get should miss when the file holds another key")
	}

	if err := os.WriteFile(c.path("drc:a"), []byte(`{"key":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "drc:a"); hit {
		t.Error("Get should miss on a truncated entry")
	}
	if _, err := os.Stat(c.path("drc:a")); !os.IsNotExist(err) {
		t.Errorf("Truncated entry should be removed, stat err %v", err)
	}
}

func TestFileCacheUsageAndPrune(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "drc:a", []byte("aaaa"), time.Hour)
	_ = c.Set(ctx, "drc:b", []byte("b"), time.Minute)
	_ = c.Set(ctx, "serve:ratsnest:c", []byte("c"), 0)
	_ = c.Set(ctx, "plain", []byte("p"), 0)

	now = now.Add(10 * time.Minute)

	usage, err := c.Usage()
	if err != nil {
		t.Fatalf("Usage error: %v", err)
	}
	var kinds []string
	for _, u := range usage {
		kinds = append(kinds, u.Kind)
	}
	if strings.Join(kinds, ",") != "drc,other,ratsnest" {
		t.Fatalf("Usage kinds = %v", kinds)
	}
	if usage[0].Entries != 2 || usage[0].Expired != 1 || usage[0].Bytes <= 0 {
		t.Errorf("drc usage = %+v", usage[0])
	}
	if usage[2].Entries != 1 || usage[2].Expired != 0 {
		t.Errorf("ratsnest usage = %+v", usage[2])
	}

	n, err := c.Prune()
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if n != 1 {
		t.Errorf("Prune removed %d entries, want 1", n)
	}
	if _, hit, _ := c.Get(ctx, "drc:a"); !hit {
		t.Error("Prune should keep live entries")
	}
	if _, hit, _ := c.Get(ctx, "serve:ratsnest:c"); !hit {
		t.Error("Prune should keep entries without a TTL")
	}
}

func TestKindOf(t *testing.T) {
	tests := map[string]string{
		"drc:abc":            "drc",
		"serve:drc:abc":      "drc",
		"ratsnest:abc":       "ratsnest",
		"copper:ratsnest:ab": "ratsnest",
		"abc":                "other",
		":abc":               "other",
	}
	for key, want := range tests {
		if got := KindOf(key); got != want {
			t.Errorf("KindOf(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestLRUCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRUCache(2)
	if err != nil {
		t.Fatalf("NewLRUCache error: %v", err)
	}
	defer c.Close()

	buf := []byte("a")
	_ = c.Set(ctx, "a", buf, 0)
	buf[0] = 'z'
	data, hit, _ := c.Get(ctx, "a")
	if !hit || string(data) != "a" {
		t.Errorf("LRUCache should store a copy, got %q", data)
	}

	_ = c.Set(ctx, "b", []byte("b"), 0)
	_, _, _ = c.Get(ctx, "a")
	_ = c.Set(ctx, "c", []byte("c"), 0)
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("Least recently used entry should be evicted")
	}
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Error("Recently used entry should survive")
	}

	_ = c.Set(ctx, "d", []byte("d"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "d"); hit {
		t.Error("Expired entries should miss")
	}

	_ = c.Delete(ctx, "a")
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Deleted entries should miss")
	}
}

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisOptions{}); err == nil {
		t.Error("NewRedisCache should reject an empty address")
	}
}

func TestTransient(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	marked := Retryable(ErrUnavailable)
	if marked.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", marked.Error())
	}
	if !errors.Is(marked, ErrUnavailable) {
		t.Error("Retryable should keep the wrapped error reachable")
	}

	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"marked", marked, true},
		{"dial", refused, true},
		{"wrapped dial", fmt.Errorf("ping: %w", refused), true},
		{"dropped", io.ErrUnexpectedEOF, true},
		{"permanent", errPermanent, false},
		{"canceled", context.Canceled, false},
		{"marked deadline", Retryable(context.DeadlineExceeded), false},
	}
	for _, tt := range tests {
		if got := Transient(tt.err); got != tt.want {
			t.Errorf("Transient(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBackoffRetry(t *testing.T) {
	b := Backoff{Attempts: 3, Initial: time.Millisecond}
	ctx := context.Background()

	calls := 0
	err := b.Retry(ctx, func(context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("Should succeed once: err %v, calls %d", err, calls)
	}

	calls = 0
	err = b.Retry(ctx, func(context.Context) error {
		calls++
		return errPermanent
	})
	if err != errPermanent || calls != 1 {
		t.Errorf("Should not retry a permanent error: err %v, calls %d", err, calls)
	}

	calls = 0
	err = b.Retry(ctx, func(context.Context) error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("Should succeed after one retry: err %v, calls %d", err, calls)
	}

	calls = 0
	err = b.Retry(ctx, func(context.Context) error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("Should give up after every attempt: err %v, calls %d", err, calls)
	}
}

func TestBackoffPause(t *testing.T) {
	b := Backoff{Initial: 250 * time.Millisecond, Max: time.Second}
	want := []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, time.Second, time.Second}
	for n, w := range want {
		if got := b.pause(n); got != w {
			t.Errorf("pause(%d) = %v, want %v", n, got, w)
		}
	}
	if got := b.pause(80); got != time.Second {
		t.Errorf("pause should cap an overflowing shift, got %v", got)
	}
}

func TestBackoffRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Backoff{Attempts: 3, Initial: time.Hour}.Retry(ctx, func(context.Context) error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should stop after the first call, got %d", calls)
	}
}
