package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.UnfoldLimit != DefaultUnfoldLimit {
		t.Errorf("UnfoldLimit = %d, want %d", cfg.UnfoldLimit, DefaultUnfoldLimit)
	}
	if cfg.Confluence != ConfluenceAlways {
		t.Errorf("Confluence = %q", cfg.Confluence)
	}
	if !cfg.TerminationEnabled() || !cfg.GoalsEnabled() {
		t.Errorf("termination and goals should default to on")
	}
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("termination: false\nreport_db: run.db\n"), "tyck.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TerminationEnabled() {
		t.Errorf("termination should be disabled")
	}
	if cfg.ReportDB != "run.db" {
		t.Errorf("ReportDB = %q", cfg.ReportDB)
	}
	if cfg.Color != ColorAuto {
		t.Errorf("Color = %q, want auto", cfg.Color)
	}
}

func TestParseConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"confluence", "confluence: sometimes\n", "confluence must be"},
		{"color", "color: purple\n", "color must be"},
		{"unfold", "unfold_limit: -3\n", "unfold_limit"},
		{"syntax", "unfold_limit: [\n", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.input), "tyck.yaml")
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tyck.yaml")
	if err := os.WriteFile(path, []byte("confluence: overlap\nunfold_limit: 64\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Confluence != ConfluenceOverlap || cfg.UnfoldLimit != 64 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
