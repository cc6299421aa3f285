package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"theoraprobe/internal/history"
	"theoraprobe/internal/testsupport"
)

func TestAddAndRecent(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inputs := []history.Record{
		{SessionID: "s1", Path: "/a.ogv", SizeBytes: 1024, Outcome: history.OutcomeReady,
			Serial: 7, Width: 640, Height: 480, FPS: 29.97, Vendor: "libtheora", Pages: 3, CreatedAt: base},
		{SessionID: "s2", Path: "/b.ogv", Outcome: history.OutcomeNoVideo, Detail: "no theora", Pages: 2,
			Serial: 9, Width: 1, CreatedAt: base.Add(time.Minute)},
		{SessionID: "s3", Path: "/c.ogv", Outcome: history.OutcomeIO, Detail: "open failed", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, rec := range inputs {
		stored, err := store.Add(ctx, rec)
		if err != nil {
			t.Fatalf("Add(%s): %v", rec.Path, err)
		}
		if stored.ID == 0 {
			t.Fatal("expected ID to be assigned")
		}
	}

	recent, err := store.Recent(ctx, 10, "")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("len = %d, want 3", len(recent))
	}
	if recent[0].Path != "/c.ogv" || recent[2].Path != "/a.ogv" {
		t.Fatalf("unexpected order: %s, %s, %s", recent[0].Path, recent[1].Path, recent[2].Path)
	}

	ready := recent[2]
	if ready.Width != 640 || ready.Height != 480 || ready.Serial != 7 || ready.FPS != 29.97 || ready.Vendor != "libtheora" {
		t.Fatalf("unexpected ready record: %+v", ready)
	}
	if !ready.CreatedAt.Equal(base) {
		t.Fatalf("created_at = %v, want %v", ready.CreatedAt, base)
	}
	if noVideo := recent[1]; noVideo.Serial != 0 || noVideo.Width != 0 || noVideo.Detail != "no theora" {
		t.Fatalf("geometry should only be stored for ready probes: %+v", noVideo)
	}

	filtered, err := store.Recent(ctx, 10, history.OutcomeIO)
	if err != nil {
		t.Fatalf("Recent filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].SessionID != "s3" {
		t.Fatalf("unexpected filtered result: %+v", filtered)
	}

	limited, err := store.Recent(ctx, 1, "")
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit: %v %d", err, len(limited))
	}
}

func TestAddRequiresPathAndOutcome(t *testing.T) {
	store := testsupport.MustOpenHistory(t, nil)
	if _, err := store.Add(context.Background(), history.Record{Path: "/x"}); err == nil {
		t.Fatal("expected error without outcome")
	}
	if _, err := store.Add(context.Background(), history.Record{Outcome: history.OutcomeReady}); err == nil {
		t.Fatal("expected error without path")
	}
}

func TestClear(t *testing.T) {
	store := testsupport.MustOpenHistory(t, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := store.Add(ctx, history.Record{Path: "/f", Outcome: history.OutcomeBadHeaders}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	n, err := store.Clear(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
	recent, err := store.Recent(ctx, 0, "")
	if err != nil || len(recent) != 0 {
		t.Fatalf("expected empty history, got %d (%v)", len(recent), err)
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	path := testsupport.HistoryPath(t)
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Add(context.Background(), history.Record{Path: "/kept", Outcome: history.OutcomeReady}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	recent, err := reopened.Recent(context.Background(), 5, "")
	if err != nil || len(recent) != 1 || recent[0].Path != "/kept" {
		t.Fatalf("unexpected records after reopen: %+v (%v)", recent, err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("update: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("err = %v, want schema mismatch", err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := history.Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
