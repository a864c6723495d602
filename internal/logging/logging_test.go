package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func fixedClock(t *testing.T) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return time.Date(2024, 3, 1, 12, 34, 56, 789e6, time.UTC) }
	t.Cleanup(func() { timeNow = prev })
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"Warning", LevelWarn},
		{" error ", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	fixedClock(t)

	var buf bytes.Buffer
	l := New(LevelWarn)
	l.SetOutput(&buf)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below level leaked:\n%s", out)
	}
	if !strings.Contains(out, `level=warn`) || !strings.Contains(out, `msg="warn 3"`) {
		t.Errorf("missing warn line:\n%s", out)
	}
	if !strings.Contains(out, `level=error`) || !strings.Contains(out, `msg="error 4"`) {
		t.Errorf("missing error line:\n%s", out)
	}
	if !strings.Contains(out, "ts=12:34:56.789") {
		t.Errorf("missing timestamp:\n%s", out)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelError)
	l.SetOutput(&buf)

	l.Info("hidden")
	l.SetLevel(LevelDebug)
	l.Debug("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info logged at error level:\n%s", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("debug not logged after SetLevel:\n%s", out)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo)
	l.SetOutput(&buf)

	child := l.With("component", "catalog")
	child.Info("loaded %d bodies", 8)
	l.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "component=catalog") {
		t.Errorf("child line missing context: %s", lines[0])
	}
	if strings.Contains(lines[1], "component=") {
		t.Errorf("parent line picked up child context: %s", lines[1])
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	// Must not panic at any level.
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	l.With("k", "v").Error("x")
}
