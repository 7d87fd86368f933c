package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/geofunc/internal/config"
	"github.com/rcliao/geofunc/internal/metrics"
	"github.com/rcliao/geofunc/internal/solver"
)

func init() {
	solverCmd := &cobra.Command{
		Use:   "solver",
		Short: "Configure and launch the GeoStudio solver",
	}

	configCmd := &cobra.Command{
		Use:   "config <install-path>",
		Short: "Save the solver installation path and test it",
		Args:  cobra.ExactArgs(1),
		Run:   runSolverConfig,
	}

	testCmd := &cobra.Command{
		Use:   "test",
		Short: "Check that the solver executable can be run",
		Run:   runSolverTest,
	}

	runCmd := &cobra.Command{
		Use:   "run <project> [analyses...]",
		Short: "Solve the analyses of a project (default: all)",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSolverRun,
	}
	runCmd.Flags().Bool("console", false, "Stream solver output to the terminal")

	solverCmd.AddCommand(configCmd, testCmd, runCmd)
	RootCmd.AddCommand(solverCmd)
}

func newLauncher(console bool) *solver.Launcher {
	l := &solver.Launcher{
		Path:    cfg.SolverPath,
		Logger:  logger,
		Metrics: metrics.New(),
	}
	if console || cfg.SolverConsole {
		l.Stdout = os.Stdout
		l.Stderr = os.Stderr
	}
	return l
}

func runSolverConfig(cmd *cobra.Command, args []string) {
	cfg.SolverPath = strings.TrimSpace(args[0])
	if err := config.Save(getConfigPath(), cfg); err != nil {
		exitErr("save config", err)
	}
	if err := newLauncher(false).Test(cmd.Context()); err != nil {
		exitErr("solver test", err)
	}
	fmt.Printf(`{"ok":true,"solver_path":%q,"config":%q}`+"\n", cfg.SolverPath, getConfigPath())
}

func runSolverTest(cmd *cobra.Command, args []string) {
	l := newLauncher(false)
	if err := l.Test(cmd.Context()); err != nil {
		exitErr("solver test", err)
	}
	fmt.Printf(`{"ok":true,"executable":%q}`+"\n", l.Executable())
}

func runSolverRun(cmd *cobra.Command, args []string) {
	console, _ := cmd.Flags().GetBool("console")

	l := newLauncher(console)
	res, err := l.Run(cmd.Context(), solver.RunParams{
		File:     args[0],
		Analyses: args[1:],
	})
	if cfg.MetricsFile != "" {
		writeMetrics(l.Metrics, cfg.MetricsFile)
	}
	if err != nil {
		exitErr("solver run", err)
	}

	b, _ := json.Marshal(res)
	fmt.Println(string(b))
	if res.ExitCode != 0 {
		os.Exit(res.ExitCode)
	}
}

// writeMetrics adds this run to the totals already in path and rewrites it.
func writeMetrics(rec *metrics.Recorder, path string) {
	if err := rec.Load(path); err != nil {
		logger.Warn("previous metrics ignored", zap.String("path", path), zap.Error(err))
	}
	if err := rec.WriteTextfile(path); err != nil {
		logger.Warn("metrics not written", zap.String("path", path), zap.Error(err))
	}
}
