package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export snapshots as JSON",
		Long:  "Export every snapshot version, points included. Filter by project with -p.",
		Run:   runExport,
	}

	cmd.Flags().StringP("project", "p", "", "Filter by project file")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	proj, _ := cmd.Flags().GetString("project")
	if proj != "" {
		proj = projectKey(proj)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	snaps, err := s.ExportAll(cmd.Context(), proj)
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(snaps, "", "  ")
	fmt.Println(string(b))
}
