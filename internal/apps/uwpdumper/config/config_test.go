package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HistoryLimit != 20 {
		t.Fatalf("HistoryLimit = %d, want default 20", cfg.HistoryLimit)
	}
	if cfg.Workers != 0 || cfg.PayloadDLL != "" || cfg.OutputDir != "" {
		t.Fatalf("unexpected non-zero defaults: %+v", cfg)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := &Config{
		PayloadDLL:   `C:\tools\uwpdumper-payload.dll`,
		OutputDir:    `D:\dumps`,
		Workers:      4,
		HistoryLimit: 5,
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLoadRejectsNegativeWorkers(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: -2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrNegativeWorkers) {
		t.Fatalf("got %v, want ErrNegativeWorkers", err)
	}
}
