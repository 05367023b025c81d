package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tyck.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunChecksPrelude(t *testing.T) {
	if code := run(nil); code != exitOK {
		t.Fatalf("exit code %d, want %d", code, exitOK)
	}
}

func TestRunStoresAndListsRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	cfg := writeConfig(t, "color: never\nreport_db: "+db+"\n")
	if code := run([]string{"-config", cfg}); code != exitOK {
		t.Fatalf("check exit code %d", code)
	}
	if code := run([]string{"-config", cfg, "-runs"}); code != exitOK {
		t.Fatalf("list exit code %d", code)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := writeConfig(t, "confluence: sometimes\n")
	if code := run([]string{"-config", cfg}); code != exitProblems {
		t.Errorf("exit code %d, want %d", code, exitProblems)
	}
	if code := run([]string{"-runs"}); code != exitProblems {
		t.Errorf("listing without a database should fail, got %d", code)
	}
}
