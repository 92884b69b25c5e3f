package log

import (
	"strings"
	"testing"
)

// captureOutput records formatted entries for assertions.
type captureOutput struct {
	lines []string
}

func (c *captureOutput) Write(_ *Entry, formatted []byte) error {
	c.lines = append(c.lines, string(formatted))
	return nil
}

func (c *captureOutput) Close() error { return nil }

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("warn"); err != nil || lvl != WarnLevel {
		t.Fatalf("parse warn: %v %v", lvl, err)
	}
	if lvl, err := ParseLevel(""); err != nil || lvl != InfoLevel {
		t.Fatalf("empty level should default to info: %v %v", lvl, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelGating(t *testing.T) {
	out := &captureOutput{}
	l := NewLogger(WithLevel(WarnLevel), WithOutput(out))
	l.Debug("dropped")
	l.Info("dropped too")
	l.Warn("kept")
	l.Error("kept")
	if len(out.lines) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(out.lines), out.lines)
	}
}

// levelOutput records the level of each entry it receives.
type levelOutput struct {
	levels []Level
}

func (c *levelOutput) Write(e *Entry, _ []byte) error {
	c.levels = append(c.levels, e.Level)
	return nil
}

func (c *levelOutput) Close() error { return nil }

func TestLevelsSurviveBridge(t *testing.T) {
	out := &levelOutput{}
	l := NewLogger(WithLevel(DebugLevel), WithOutput(out))
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")
	want := []Level{DebugLevel, InfoLevel, WarnLevel, ErrorLevel}
	if len(out.levels) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(out.levels))
	}
	for i, lvl := range want {
		if out.levels[i] != lvl {
			t.Fatalf("entry %d: got %v, want %v", i, out.levels[i], lvl)
		}
	}
}

func TestWithFieldsPropagate(t *testing.T) {
	out := &captureOutput{}
	l := NewLogger(WithOutput(out)).With(Str("stream", "orders"))
	l.Info("appended", Int("count", 3))
	if len(out.lines) != 1 {
		t.Fatalf("expected one entry")
	}
	if !strings.Contains(out.lines[0], "stream=orders") || !strings.Contains(out.lines[0], "count=3") {
		t.Fatalf("missing fields: %q", out.lines[0])
	}
}

func TestJSONFormatter(t *testing.T) {
	out := &captureOutput{}
	l := NewLogger(WithOutput(out), WithFormatter(&JSONFormatter{}))
	l.Info("hello", Str("k", "v"))
	if len(out.lines) != 1 {
		t.Fatalf("expected one entry")
	}
	line := out.lines[0]
	if !strings.Contains(line, `"msg":"hello"`) || !strings.Contains(line, `"k":"v"`) {
		t.Fatalf("unexpected json line: %q", line)
	}
}
