package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"theoraprobe/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckHistoryDB(t *testing.T) {
	ok := CheckHistoryDB(context.Background(), testsupport.HistoryPath(t))
	if !ok.Passed {
		t.Fatalf("expected pass, got: %s", ok.Detail)
	}

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := CheckHistoryDB(context.Background(), filepath.Join(blocker, "history.db"))
	if bad.Passed {
		t.Fatal("expected failure when parent is a file")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results := RunAll(context.Background(), cfg)
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("%s failed: %s", r.Name, r.Detail)
		}
	}

	cfg.History.Enabled = false
	if got := len(RunAll(context.Background(), cfg)); got != 1 {
		t.Fatalf("results with history disabled = %d, want 1", got)
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil for nil config")
	}
}
