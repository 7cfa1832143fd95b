package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3, "...(truncated)"); got != "abc...(truncated)" {
		t.Fatalf("unexpected truncate: %q", got)
	}
	if got := Truncate("abc", 3, "!"); got != "abc" {
		t.Fatalf("exact length should not be cut: %q", got)
	}
	if got := Truncate("héllo", 2, ""); got != "hé" {
		t.Fatalf("truncate must count runes: %q", got)
	}
	if got := Truncate("abc", 0, "!"); got != "abc" {
		t.Fatalf("zero max means unlimited: %q", got)
	}
}

func TestWriteJSONAtomic(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "result.json")
	if err := WriteJSONAtomic(p, map[string]string{"status": "ok"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "{\n  \"status\": \"ok\"\n}\n" {
		t.Fatalf("unexpected content: %q", b)
	}
	entries, _ := os.ReadDir(filepath.Dir(p))
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}
