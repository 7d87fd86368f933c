package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/geofunc/internal/model"
	"github.com/rcliao/geofunc/internal/store"
)

func init() {
	historyCmd := &cobra.Command{
		Use:   "history <project>",
		Short: "Show stored versions of a function",
		Args:  cobra.ExactArgs(1),
		Run:   runHistory,
	}
	historyCmd.Flags().Int("id", 0, "Function ID (required)")
	historyCmd.Flags().Int("version", 0, "Specific version number")
	historyCmd.MarkFlagRequired("id")

	restoreCmd := &cobra.Command{
		Use:   "restore <project>",
		Short: "Write a stored version of a function back into the project",
		Args:  cobra.ExactArgs(1),
		Run:   runRestore,
	}
	restoreCmd.Flags().Int("id", 0, "Function ID (required)")
	restoreCmd.Flags().Int("version", 0, "Version to restore (default: latest)")
	restoreCmd.Flags().StringP("out", "o", "", "Write to this path instead of the input")
	restoreCmd.MarkFlagRequired("id")

	RootCmd.AddCommand(historyCmd, restoreCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt("id")
	version, _ := cmd.Flags().GetInt("version")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	snaps, err := s.Get(cmd.Context(), store.GetParams{
		Project:    projectKey(args[0]),
		FunctionID: id,
		History:    version == 0,
		Version:    version,
	})
	if err != nil {
		exitErr("history", err)
	}

	b, _ := json.MarshalIndent(snaps, "", "  ")
	fmt.Println(string(b))
}

func runRestore(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt("id")
	version, _ := cmd.Flags().GetInt("version")
	out, _ := cmd.Flags().GetString("out")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	snaps, err := s.Get(cmd.Context(), store.GetParams{
		Project:    projectKey(args[0]),
		FunctionID: id,
		Version:    version,
	})
	if err != nil {
		exitErr("restore", err)
	}
	snap := snaps[0]

	f, err := snap.Function()
	if f == nil {
		exitErr("restore", err)
	}
	if errors.Is(err, model.ErrMalformedOptions) {
		logger.Warn("function options ignored", zap.Int("id", id), zap.Error(err))
	}

	p := openProject(args[0])
	if err := p.Update(f); err != nil {
		exitErr("update", err)
	}
	if out == "" {
		out = p.Path()
	}
	if err := p.SaveAs(out); err != nil {
		exitErr("save", err)
	}
	logger.Info("snapshot restored", zap.String("snapshot", snap.ID), zap.Int("version", snap.Version))

	fmt.Printf(`{"ok":true,"id":%d,"version":%d,"path":%q}`+"\n", id, snap.Version, out)
}
