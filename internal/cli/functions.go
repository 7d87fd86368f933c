package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/geofunc/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "functions <project>",
		Short: "List the functions of a project",
		Args:  cobra.ExactArgs(1),
		Run:   runFunctions,
	}

	cmd.Flags().Bool("ids-only", false, "Only output id and name")

	RootCmd.AddCommand(cmd)
}

type functionSummary struct {
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	Spec    string        `json:"function"`
	Points  int           `json:"points"`
	Options model.Options `json:"options"`
}

func runFunctions(cmd *cobra.Command, args []string) {
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	p := openProject(args[0])
	fns, warnings, err := p.Functions()
	if err != nil {
		exitErr("functions", err)
	}
	for _, w := range warnings {
		logger.Warn("function options ignored", zap.Error(w))
	}

	if idsOnly {
		for _, f := range fns {
			fmt.Printf("%d\t%s\n", f.ID, f.Name)
		}
		return
	}

	out := make([]functionSummary, 0, len(fns))
	for _, f := range fns {
		out = append(out, functionSummary{
			ID:      f.ID,
			Name:    f.Name,
			Spec:    f.Spec,
			Points:  f.Len(),
			Options: f.Options,
		})
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
