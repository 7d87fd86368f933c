package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/geofunc/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List the latest snapshot of each function",
		Run:   runSnapshots,
	}

	cmd.Flags().StringP("project", "p", "", "Filter by project file")
	cmd.Flags().String("name", "", "Filter by function name substring")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output project/id pairs")

	RootCmd.AddCommand(cmd)
}

func runSnapshots(cmd *cobra.Command, args []string) {
	proj, _ := cmd.Flags().GetString("project")
	name, _ := cmd.Flags().GetString("name")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	if proj != "" {
		proj = projectKey(proj)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	snaps, err := s.List(cmd.Context(), store.ListParams{
		Project: proj,
		Name:    name,
		Limit:   limit,
	})
	if err != nil {
		exitErr("snapshots", err)
	}

	if idsOnly {
		for _, sn := range snaps {
			fmt.Printf("%s/%d\n", sn.Project, sn.FunctionID)
		}
		return
	}

	b, _ := json.MarshalIndent(snaps, "", "  ")
	fmt.Println(string(b))
}
