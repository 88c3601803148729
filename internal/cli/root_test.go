package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	want := []string{"drc", "route", "nets", "ratsnest", "exclude", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestExecuteRejectsUnknownCommand(t *testing.T) {
	var buf bytes.Buffer
	if err := Execute(context.Background(), &buf, []string{"frobnicate"}); err == nil {
		t.Error("Unknown command should fail")
	}
}

func TestExecuteRequiresDesignArgument(t *testing.T) {
	var buf bytes.Buffer
	for _, name := range []string{"drc", "nets", "ratsnest", "serve"} {
		if err := Execute(context.Background(), &buf, []string{name}); err == nil {
			t.Errorf("%s without a design should fail", name)
		}
	}
}

func TestExecuteVerboseSetsDebug(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var buf bytes.Buffer
	if err := Execute(context.Background(), &buf, []string{"-v", "cache", "path"}); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
}

func TestCompleteNetsAndPins(t *testing.T) {
	path := writeTestDesign(t)

	nets, _ := completeNets(nil, []string{path}, "M")
	if len(nets) != 1 || nets[0] != "MID" {
		t.Errorf("completeNets() = %v, want [MID]", nets)
	}

	pins, _ := completePins(nil, []string{path}, "R2.")
	if len(pins) != 2 || pins[0] != "R2.1" || pins[1] != "R2.2" {
		t.Errorf("completePins() = %v, want [R2.1 R2.2]", pins)
	}

	if got, _ := completeNets(nil, nil, ""); got != nil {
		t.Errorf("completeNets without a design = %v, want nil", got)
	}
}

func TestNetsCommand(t *testing.T) {
	path := writeTestDesign(t)

	if err := Execute(context.Background(), &bytes.Buffer{}, []string{"nets", path, "--pin", "R2.1"}); err != nil {
		t.Errorf("nets --pin error: %v", err)
	}
	if err := Execute(context.Background(), &bytes.Buffer{}, []string{"nets", path, "--net", "NOPE"}); err == nil {
		t.Error("nets --net on an unknown net should fail")
	}
}

const testDesign = `
[board]
name = "divider"
outline = { kind = "rect", width = "30mm", height = "20mm" }

[[footprints]]
name = "R0603"
pads = [
  { number = "1", offset = { x = "-0.8mm", y = "0" }, shape = { kind = "rect", w = "0.8mm", h = "0.9mm" } },
  { number = "2", offset = { x = "0.8mm", y = "0" }, shape = { kind = "rect", w = "0.8mm", h = "0.9mm" } },
]

[[components]]
ref = "R1"
footprint = "R0603"
position = { x = "10mm", y = "10mm" }

[[components]]
ref = "R2"
footprint = "R0603"
position = { x = "20mm", y = "10mm" }

[[nets]]
name = "MID"
pins = ["R1.2", "R2.1"]

[[nets]]
name = "VCC"
pins = ["R1.1"]
`

func writeTestDesign(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "divider.toml")
	if err := os.WriteFile(path, []byte(testDesign), 0o644); err != nil {
		t.Fatalf("write design: %v", err)
	}
	return path
}
