package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEOFUNC_DB", "GEOFUNC_SOLVER_PATH", "GEOFUNC_SOLVER_CONSOLE", "GEOFUNC_METRICS_FILE"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SolverPath != `C:\Program Files\Seequent\GeoStudio 2023.1` {
		t.Errorf("expected default solver path, got %q", cfg.SolverPath)
	}
	if filepath.Base(cfg.DBPath) != "snapshots.db" {
		t.Errorf("unexpected default db path %q", cfg.DBPath)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "db_path: /tmp/a.db\nsolver_path: \"/opt/geostudio  \"\nsolver_console: true\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{DBPath: "/tmp/a.db", SolverPath: "/opt/geostudio", SolverConsole: true}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	t.Setenv("GEOFUNC_DB", "/tmp/env.db")
	t.Setenv("GEOFUNC_METRICS_FILE", "/tmp/geofunc.prom")
	cfg, _ = Load(path)
	if cfg.DBPath != "/tmp/env.db" || cfg.MetricsFile != "/tmp/geofunc.prom" {
		t.Errorf("env did not override file: %+v", cfg)
	}
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("db_path: [unterminated"), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := Config{DBPath: "/data/s.db", SolverPath: `D:\GeoStudio 2024.2`}
	if err := Save(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMetricsFileSuffix(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEOFUNC_METRICS_FILE", "/tmp/geofunc.txt")
	if _, err := Load(""); err == nil {
		t.Error("expected metrics file without .prom suffix to be rejected")
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(path, Config{SolverPath: "/opt/geostudio"}); err == nil {
		t.Error("expected missing db_path to be rejected")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file written, got %v", err)
	}
}

func TestDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GEOFUNC_SOLVER_PATH=/opt/from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	os.Unsetenv("GEOFUNC_SOLVER_PATH")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SolverPath != "/opt/from-dotenv" {
		t.Errorf("expected solver path from .env, got %q", cfg.SolverPath)
	}
}
