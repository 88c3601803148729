package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/copper/pkg/cache"
)

func TestClearCache(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"drc:a", "drc:b", "ratsnest:a"} {
		if err := fc.Set(ctx, key, []byte("{}"), time.Hour); err != nil {
			t.Fatalf("Set error: %v", err)
		}
	}

	n, err := clearCache(dir)
	if err != nil {
		t.Fatalf("clearCache error: %v", err)
	}
	if n != 3 {
		t.Errorf("clearCache() = %d, want 3", n)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Cache dir should be empty, has %d entries", len(entries))
	}
}

func TestClearCacheMissingDir(t *testing.T) {
	n, err := clearCache(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("clearCache error: %v", err)
	}
	if n != 0 {
		t.Errorf("clearCache() = %d, want 0", n)
	}
}

func TestRenderUsage(t *testing.T) {
	out := renderUsage([]cache.Usage{
		{Kind: "drc", Entries: 2, Bytes: 2048, Expired: 1},
		{Kind: "ratsnest", Entries: 1, Bytes: 100},
	})
	for _, want := range []string{"drc", "ratsnest", "2.0 KiB", "100 B", "total", "2.1 KiB"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderUsage output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
