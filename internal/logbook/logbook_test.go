package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waypoint.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	defer book.Close()
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestLevelFilterDropsQuietEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waypoint.log")
	book, err := New(path, WithLevel(LevelWarn))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	defer book.Close()
	book.Info("hidden")
	book.Warn("slot %s repaired", "brand")
	book.Error("save failed")
	lines, total := book.Tail(10)
	if total != 2 {
		t.Fatalf("total lines = %d, want 2: %v", total, lines)
	}
	if !strings.Contains(lines[0], "WARN") || !strings.Contains(lines[0], "slot brand repaired") {
		t.Fatalf("unexpected warn line %q", lines[0])
	}
	if !strings.Contains(lines[1], "ERROR") {
		t.Fatalf("unexpected error line %q", lines[1])
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatalf("nil tail = %v, %d", lines, total)
	}
	if book.Path() != "" {
		t.Fatalf("nil path should be empty")
	}
	if err := book.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": LevelDebug, " WARN ": LevelWarn, "error": LevelError, "": LevelInfo, "loud": LevelInfo}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", input, got, want)
		}
	}
}
