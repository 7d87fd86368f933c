// Package cli implements the geofunc CLI commands.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/geofunc/internal/config"
	"github.com/rcliao/geofunc/internal/model"
	"github.com/rcliao/geofunc/internal/project"
	"github.com/rcliao/geofunc/internal/store"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	cfg    config.Config
	logger = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "geofunc",
	Short: "Inspect and edit the functions of GeoStudio projects",
	Long: "A small CLI for the function curves stored in GeoStudio project files. " +
		"Reads .gsz archives and bare XML, keeps versioned snapshots in SQLite, and can launch the solver.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			l, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			logger = l
		}
		c, err := config.Load(getConfigPath())
		if err != nil {
			return err
		}
		cfg = c
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Snapshot database path (default: $GEOFUNC_DB or ~/.geofunc/snapshots.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $GEOFUNC_CONFIG or ~/.geofunc/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

// projectKey identifies a project in the snapshot store.
func projectKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func openProject(path string) *project.Project {
	p, err := project.Open(path)
	if err != nil {
		exitErr("open project", err)
	}
	return p
}

// loadFunction materializes one function. A malformed spec string is only
// logged: the curve itself is still usable.
func loadFunction(p *project.Project, id int) *model.Function {
	f, err := p.Function(id)
	if f == nil {
		exitErr("load function", err)
	}
	if errors.Is(err, model.ErrMalformedOptions) {
		logger.Warn("function options ignored", zap.Int("id", id), zap.Error(err))
	}
	return f
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
