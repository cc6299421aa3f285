package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"theoraprobe/internal/history"
	"theoraprobe/internal/testsupport"
)

func theoraFile(t *testing.T) string {
	t.Helper()
	hdrs := testsupport.TheoraHeaders(testsupport.DefaultTheoraParams())
	return testsupport.NewContainer().
		AddBOS(0x1234, hdrs[0]).
		AddBOS(0x99, testsupport.VorbisIdentification()).
		AddPage(0x1234, 0, hdrs[1], hdrs[2]).
		WriteFile(t, "clip.ogv")
}

func TestProbeTextOutput(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory(false))
	path := theoraFile(t)

	out, _, err := runCLI(t, []string{"probe", path}, env.configPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	requireContains(t, out, "== "+path+" ==")
	requireContains(t, out, "[OK] headers negotiated")
	requireContains(t, out, "64x48+0+0")
	requireContains(t, out, "29.970 fps (30000/1001)")
	requireContains(t, out, "4:2:0")
	requireContains(t, out, "64x48, 32x24, 32x24")
	requireContains(t, out, "0x00001234")
	requireContains(t, out, "TITLE")
	requireContains(t, out, "fixture")
}

func TestProbeJSONAndFailureExit(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory(false))
	good := theoraFile(t)
	missing := filepath.Join(t.TempDir(), "missing.ogv")
	noVideo := testsupport.NewContainer().
		AddBOS(5, testsupport.VorbisIdentification()).
		AddPage(5, 0, []byte("audio")).
		WriteFile(t, "audio.ogg")

	out, _, err := runCLI(t, []string{"probe", "--json", good, missing, noVideo}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "2 of 3 files failed") {
		t.Fatalf("expected failure summary, got %v", err)
	}

	var results []probeResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Outcome != history.OutcomeReady || results[0].Info == nil || results[0].Pages != 3 {
		t.Fatalf("unexpected ready result: %+v", results[0])
	}
	if results[1].Outcome != history.OutcomeIO || results[1].Errno != "ENOENT" {
		t.Fatalf("unexpected missing-file result: %+v", results[1])
	}
	if results[2].Outcome != history.OutcomeNoVideo {
		t.Fatalf("unexpected no-video result: %+v", results[2])
	}
	for _, res := range results {
		if res.SessionID == "" {
			t.Fatalf("missing session id: %+v", res)
		}
	}
}

func TestProbeRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	path := theoraFile(t)
	garbage := filepath.Join(t.TempDir(), "noise.bin")
	testsupport.WriteGarbage(t, garbage, 4096)

	if _, _, err := runCLI(t, []string{"probe", path, garbage}, env.configPath); err == nil {
		t.Fatal("expected failure for garbage input")
	}

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "bad_headers")
	requireContains(t, out, "ready")
	requireContains(t, out, "64x48 @ 29.97")

	out, _, err = runCLI(t, []string{"history", "--json", "--outcome", "ready"}, env.configPath)
	if err != nil {
		t.Fatalf("history json: %v", err)
	}
	var records []history.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 || records[0].Path != path || records[0].Width != 64 {
		t.Fatalf("unexpected records: %+v", records)
	}

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 2 probe records")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history after clear: %v", err)
	}
	requireContains(t, out, "No probes recorded")
}

func TestProbeRecordFlagOverridesDisabledHistory(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory(false))
	if _, _, err := runCLI(t, []string{"probe", "--record", "--lock", theoraFile(t)}, env.configPath); err != nil {
		t.Fatalf("probe: %v", err)
	}
	store := testsupport.MustOpenHistory(t, env.cfg)
	records, err := store.Recent(t.Context(), 10, "")
	if err != nil || len(records) != 1 {
		t.Fatalf("records = %d, %v", len(records), err)
	}
}

func TestHistoryRejectsUnknownOutcome(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"history", "--outcome", "maybe"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown outcome")
	}
}

func TestProbeRequiresArgs(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"probe"}, env.configPath); err == nil {
		t.Fatal("expected error without files")
	}
}
