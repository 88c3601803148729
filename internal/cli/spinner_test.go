package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerBasic(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Checking...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !s.Cancelled() {
		t.Error("Stop should cancel the spinner context")
	}
	if !strings.Contains(buf.String(), "Checking...") {
		t.Errorf("output %q should contain the message", buf.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerTo(ctx, &bytes.Buffer{}, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &bytes.Buffer{}, "Testing idempotent stop...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerSetMessage(t *testing.T) {
	s := newSpinnerTo(context.Background(), &bytes.Buffer{}, "short")
	s.SetMessage("a much longer message")
	s.SetMessage("tiny")

	if got := s.Message(); got != "tiny" {
		t.Errorf("Message() = %q, want tiny", got)
	}
	if s.width != len("a much longer message") {
		t.Errorf("width = %d, should track the widest message", s.width)
	}
}

func TestDRCProgress(t *testing.T) {
	s := newSpinnerTo(context.Background(), &bytes.Buffer{}, "Checking design...")
	p := &drcProgress{spinner: s}

	p.OnRuleComplete(context.Background(), "trace_width", 2, time.Millisecond)
	p.OnRuleComplete(context.Background(), "via_drill", 1, time.Millisecond)

	want := "Checked via_drill (2 rules, 3 violations)"
	if got := s.Message(); got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
}
