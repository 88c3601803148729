package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Info("checked", "rules", 9)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "checked") || !strings.Contains(out, "rules=9") {
		t.Errorf("missing message or key in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line logged at info level: %q", out)
	}
}

func TestProgressSummary(t *testing.T) {
	tests := []struct {
		name     string
		ok, fail int
		want     []string
		reject   []string
	}{
		{
			name: "all routed",
			ok:   2,
			want: []string{"INFO", "Routed 2 of 2"},
		},
		{
			name:   "one failed",
			ok:     1,
			fail:   1,
			want:   []string{"WARN", "Routed 1 of 2", "failed=1"},
			reject: []string{"INFO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prog := newProgress(newLogger(&buf, log.InfoLevel), "Routed", 2)
			for range tt.ok {
				prog.succeed()
			}
			for range tt.fail {
				prog.fail(errors.New("no path"))
			}
			prog.done()

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("summary %q missing %q", out, w)
				}
			}
			for _, r := range tt.reject {
				if strings.Contains(out, r) {
					t.Errorf("summary %q should not contain %q", out, r)
				}
			}
		})
	}
}

func TestProgressDebugSteps(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.DebugLevel), "Routed", 2)
	prog.succeed()
	prog.fail(errors.New("blocked by U1.3"))

	out := buf.String()
	if !strings.Contains(out, "n=1") || !strings.Contains(out, "n=2") {
		t.Errorf("steps should be numbered: %q", out)
	}
	if !strings.Contains(out, "blocked by U1.3") {
		t.Errorf("failure reason should be logged: %q", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext should fall back to log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}

	loggerFromContext(ctx).Info("routed")
	if !strings.Contains(buf.String(), "routed") {
		t.Error("attached logger should write to its buffer")
	}
}
