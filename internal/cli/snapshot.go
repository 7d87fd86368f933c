package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/geofunc/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "snapshot <project>",
		Short: "Store the current state of a function",
		Long:  "Store a new version of a function in the snapshot database. Each snapshot supersedes the previous one.",
		Args:  cobra.ExactArgs(1),
		Run:   runSnapshot,
	}

	cmd.Flags().Int("id", 0, "Function ID (required)")
	cmd.Flags().StringP("note", "m", "", "Note stored with the snapshot")

	cmd.MarkFlagRequired("id")

	RootCmd.AddCommand(cmd)
}

func runSnapshot(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt("id")
	note, _ := cmd.Flags().GetString("note")

	f := loadFunction(openProject(args[0]), id)

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	snap, err := s.Put(cmd.Context(), store.PutParams{
		Project:  projectKey(args[0]),
		Function: f,
		Note:     note,
	})
	if err != nil {
		exitErr("snapshot", err)
	}

	b, _ := json.Marshal(snap)
	fmt.Println(string(b))
}
