// Package solver launches the external command-line solver on a project file.
package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/geofunc/internal/metrics"
)

// ErrSolverNotFound is returned when the solver executable cannot be run
// from the configured installation path.
var ErrSolverNotFound = errors.New("solver executable not found; set the installation path with 'geofunc solver config <path>'")

// Launcher runs the solver found under an installation directory.
type Launcher struct {
	Path    string
	Stdout  io.Writer // nil discards
	Stderr  io.Writer // nil discards
	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// RunParams selects the project file and analyses to solve. An empty
// Analyses list solves every analysis in the file.
type RunParams struct {
	File     string
	Analyses []string
}

// Result reports how a solver run ended.
type Result struct {
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration_ns"`
}

// Executable returns the solver binary path.
func (l *Launcher) Executable() string {
	return filepath.Join(l.Path, "Bin", "GeoCmd.exe")
}

func (l *Launcher) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

// Args returns the argument list passed to the executable for p.
func (p RunParams) Args() []string {
	args := make([]string, 0, len(p.Analyses)+2)
	args = append(args, p.File)
	args = append(args, p.Analyses...)
	return append(args, "/solve")
}

// Test runs the executable with no arguments and reports ErrSolverNotFound
// if it cannot start or exits non-zero.
func (l *Launcher) Test(ctx context.Context) error {
	exe := l.Executable()
	cmd := exec.CommandContext(ctx, exe)
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	if err := cmd.Run(); err != nil {
		l.logger().Warn("solver test failed", zap.String("exe", exe), zap.Error(err))
		return fmt.Errorf("%w (%s: %v)", ErrSolverNotFound, exe, err)
	}
	l.logger().Info("solver test ok", zap.String("exe", exe))
	return nil
}

// Run solves the analyses of p.File and waits for the solver to exit. A
// non-zero exit status is reported in Result, not as an error; failing to
// start the solver or a cancelled context is an error.
//
// The solver runs in the project's directory; relative paths in p.File and
// the installation path are resolved against the caller's working directory
// first.
func (l *Launcher) Run(ctx context.Context, p RunParams) (Result, error) {
	if p.File == "" {
		return Result{}, errors.New("solver run: project file required")
	}
	file, err := filepath.Abs(p.File)
	if err != nil {
		return Result{}, fmt.Errorf("solver run: resolve %s: %w", p.File, err)
	}
	exe, err := filepath.Abs(l.Executable())
	if err != nil {
		return Result{}, fmt.Errorf("solver run: resolve %s: %w", l.Executable(), err)
	}
	p.File = file
	log := l.logger().With(zap.String("exe", exe), zap.String("file", p.File))

	cmd := exec.CommandContext(ctx, exe, p.Args()...)
	cmd.Dir = filepath.Dir(p.File)
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	log.Info("solver started", zap.Strings("analyses", p.Analyses))
	start := time.Now()
	err = cmd.Run()
	res := Result{Duration: time.Since(start)}

	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		l.Metrics.ObserveRun(metrics.ResultError, res.Duration)
		log.Warn("solver cancelled", zap.Error(ctx.Err()))
		return res, fmt.Errorf("solver run: %w", ctx.Err())
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		l.Metrics.ObserveRun(metrics.ResultFailed, res.Duration)
		log.Warn("solver finished", zap.Int("exit_code", res.ExitCode), zap.Duration("duration", res.Duration))
		return res, nil
	case err != nil:
		l.Metrics.ObserveRun(metrics.ResultError, res.Duration)
		log.Error("solver did not start", zap.Error(err))
		return res, fmt.Errorf("%w (%s: %v)", ErrSolverNotFound, exe, err)
	}

	l.Metrics.ObserveRun(metrics.ResultOK, res.Duration)
	log.Info("solver finished", zap.Int("exit_code", 0), zap.Duration("duration", res.Duration))
	return res, nil
}
