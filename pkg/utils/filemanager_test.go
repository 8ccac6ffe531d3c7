package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteExport(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "exports"))

	p, err := fm.WriteExport("payment_1.csv", []byte("a,b"))
	if err != nil {
		t.Fatalf("WriteExport() error = %v", err)
	}
	if filepath.Base(p) != "payment_1.csv" {
		t.Errorf("path = %q", p)
	}
	data, err := os.ReadFile(p)
	if err != nil || string(data) != "a,b" {
		t.Errorf("ReadFile() = %q, %v", data, err)
	}

	entries, _ := os.ReadDir(fm.ExportDir)
	if len(entries) != 1 {
		t.Errorf("export dir has %d entries, want 1 (temp file left behind?)", len(entries))
	}
}

func TestWriteExportRejectsPaths(t *testing.T) {
	fm := NewFileManager(t.TempDir())
	for _, name := range []string{"", "../escape.csv", "sub/payment_1.csv"} {
		if _, err := fm.WriteExport(name, nil); err == nil {
			t.Errorf("WriteExport(%q) error = nil", name)
		}
	}
}

func TestWriteExportTimestampSubdirs(t *testing.T) {
	fm := NewFileManager(t.TempDir())
	fm.UseTimestampSubdirs = true
	fm.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

	p, err := fm.WriteExport("payment_2.csv", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(fm.ExportDir, "2026", "10", "19", "payment_2.csv")
	if p != want {
		t.Errorf("path = %q, want %q", p, want)
	}
}

func TestDiscoverAndClean(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(dir)

	old, _ := fm.WriteExport("payment_1.csv", []byte("old"))
	recent, _ := fm.WriteExport("payment_2.xlsx", []byte("new"))
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)

	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	files, err := fm.DiscoverExports()
	if err != nil {
		t.Fatalf("DiscoverExports() error = %v", err)
	}
	if len(files) != 2 || files[0].Path != old || files[1].Path != recent {
		t.Fatalf("DiscoverExports() = %+v", files)
	}

	removed, err := fm.CleanOldExports(24 * time.Hour)
	if err != nil {
		t.Fatalf("CleanOldExports() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if FileExists(old) || !FileExists(recent) {
		t.Error("wrong file removed")
	}
	if !FileExists(filepath.Join(dir, "notes.txt")) {
		t.Error("non-export file removed")
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "absent"))
	files, err := fm.DiscoverExports()
	if err != nil || len(files) != 0 {
		t.Errorf("DiscoverExports() = %v, %v", files, err)
	}
}

func TestGenerateObjectKey(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)
	key := GenerateObjectKey("payments", "payment_1.csv", now)

	if !strings.HasPrefix(key, "payments/2026/10/19/") || !strings.HasSuffix(key, "-payment_1.csv") {
		t.Errorf("GenerateObjectKey() = %q", key)
	}
	if GenerateObjectKey("payments", "payment_1.csv", now) == key {
		t.Error("keys are not unique")
	}
}
