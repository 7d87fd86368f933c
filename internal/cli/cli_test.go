package cli

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFloats(t *testing.T) {
	got, err := parseFloats("0, 1.5,1e-05")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]float64{0, 1.5, 1e-05}, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if _, err := parseFloats("1,,2"); err == nil {
		t.Error("expected error for empty value")
	}
}

func TestProjectKeyIsAbsolute(t *testing.T) {
	key := projectKey("slope.gsz")
	if !filepath.IsAbs(key) {
		t.Errorf("expected absolute key, got %q", key)
	}
	if projectKey("./a/../slope.gsz") != key {
		t.Errorf("expected equivalent paths to share a key")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"functions", "show", "eval", "set", "render",
		"snapshot", "history", "restore", "snapshots", "rm",
		"search", "export", "import", "stats", "projects", "solver",
	}
	for _, name := range want {
		cmd, _, err := RootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("expected command %q to be registered", name)
		}
	}
	for _, sub := range []string{"config", "test", "run"} {
		cmd, _, err := RootCmd.Find([]string{"solver", sub})
		if err != nil || cmd.Name() != sub {
			t.Errorf("expected solver %s to be registered", sub)
		}
	}
}
