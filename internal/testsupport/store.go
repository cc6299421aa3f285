package testsupport

import (
	"path/filepath"
	"testing"

	"theoraprobe/internal/config"
	"theoraprobe/internal/history"
)

// MustOpenHistory opens the history store configured in cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	if cfg == nil {
		cfg = NewConfig(t)
	}
	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// HistoryPath returns a database path inside a fresh temp directory.
func HistoryPath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history.db")
}
