package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/geofunc/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <project>",
		Short: "Delete snapshots of a function",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	cmd.Flags().Int("id", 0, "Function ID (required)")
	cmd.Flags().Bool("all-versions", false, "Delete all versions")
	cmd.Flags().Bool("hard", false, "Permanent delete (irreversible)")

	cmd.MarkFlagRequired("id")

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt("id")
	allVersions, _ := cmd.Flags().GetBool("all-versions")
	hard, _ := cmd.Flags().GetBool("hard")
	proj := projectKey(args[0])

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	err = s.Rm(cmd.Context(), store.RmParams{
		Project:     proj,
		FunctionID:  id,
		AllVersions: allVersions,
		Hard:        hard,
	})
	if err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"project":%q,"id":%d}`+"\n", proj, id)
}
