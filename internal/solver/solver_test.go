package solver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rcliao/geofunc/internal/metrics"
)

// fakeInstall creates <dir>/Bin/GeoCmd.exe as a shell script.
func fakeInstall(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake solver is a shell script")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "Bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	exe := filepath.Join(bin, "GeoCmd.exe")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestArgs(t *testing.T) {
	got := RunParams{File: "slope.gsz", Analyses: []string{"Seepage", "Stability"}}.Args()
	want := []string{"slope.gsz", "Seepage", "Stability", "/solve"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	if got := (RunParams{File: "a.gsz"}).Args(); len(got) != 2 {
		t.Errorf("expected [file /solve], got %v", got)
	}
}

func TestExecutable(t *testing.T) {
	l := Launcher{Path: "/opt/geostudio"}
	if got := l.Executable(); got != filepath.Join("/opt/geostudio", "Bin", "GeoCmd.exe") {
		t.Errorf("unexpected executable %q", got)
	}
}

func TestTest(t *testing.T) {
	ok := Launcher{Path: fakeInstall(t, "exit 0")}
	if err := ok.Test(context.Background()); err != nil {
		t.Errorf("expected solver found, got %v", err)
	}

	bad := Launcher{Path: fakeInstall(t, "exit 3")}
	if err := bad.Test(context.Background()); !errors.Is(err, ErrSolverNotFound) {
		t.Errorf("expected ErrSolverNotFound on non-zero exit, got %v", err)
	}

	missing := Launcher{Path: t.TempDir()}
	if err := missing.Test(context.Background()); !errors.Is(err, ErrSolverNotFound) {
		t.Errorf("expected ErrSolverNotFound for missing exe, got %v", err)
	}
}

func TestRunPassesArgs(t *testing.T) {
	var out bytes.Buffer
	core, logs := observer.New(zap.InfoLevel)
	rec := metrics.New()
	l := Launcher{
		Path:    fakeInstall(t, `echo "$@"`),
		Stdout:  &out,
		Logger:  zap.New(core),
		Metrics: rec,
	}
	file := filepath.Join(t.TempDir(), "slope.gsz")
	res, err := l.Run(context.Background(), RunParams{File: file, Analyses: []string{"Seepage"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit 0, got %d", res.ExitCode)
	}
	if got := strings.TrimSpace(out.String()); got != file+" Seepage /solve" {
		t.Errorf("unexpected argv %q", got)
	}
	if n := logs.FilterMessage("solver finished").Len(); n != 1 {
		t.Errorf("expected one finish log, got %d", n)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	l := Launcher{Path: fakeInstall(t, "exit 2"), Metrics: metrics.New()}
	res, err := l.Run(context.Background(), RunParams{File: "x.gsz"})
	if err != nil {
		t.Fatalf("expected no error for non-zero exit, got %v", err)
	}
	if res.ExitCode != 2 {
		t.Errorf("expected exit 2, got %d", res.ExitCode)
	}
}

func TestRunMissingSolver(t *testing.T) {
	l := Launcher{Path: t.TempDir()}
	if _, err := l.Run(context.Background(), RunParams{File: "x.gsz"}); !errors.Is(err, ErrSolverNotFound) {
		t.Errorf("expected ErrSolverNotFound, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	l := Launcher{Path: fakeInstall(t, "sleep 5")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Run(ctx, RunParams{File: "x.gsz"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunRequiresFile(t *testing.T) {
	l := Launcher{Path: t.TempDir()}
	if _, err := l.Run(context.Background(), RunParams{}); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestRunRelativePaths(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake solver is a shell script")
	}
	work := t.TempDir()
	for _, dir := range []string{"proj", filepath.Join("geostudio", "Bin")} {
		if err := os.MkdirAll(filepath.Join(work, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(work, "proj", "slope.gsz"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\n[ -f \"$1\" ] || { echo \"missing $1 from $(pwd)\"; exit 9; }\npwd\n"
	if err := os.WriteFile(filepath.Join(work, "geostudio", "Bin", "GeoCmd.exe"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(work)

	var out bytes.Buffer
	l := Launcher{Path: "geostudio", Stdout: &out}
	res, err := l.Run(context.Background(), RunParams{File: filepath.Join("proj", "slope.gsz")})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d: %s", res.ExitCode, out.String())
	}
	wantDir, _ := filepath.EvalSymlinks(filepath.Join(work, "proj"))
	gotDir, _ := filepath.EvalSymlinks(strings.TrimSpace(out.String()))
	if gotDir != wantDir {
		t.Errorf("expected solver to run in %q, got %q", wantDir, gotDir)
	}
}
