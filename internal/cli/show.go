package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/geofunc/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show <project>",
		Short: "Show one function with its points",
		Args:  cobra.ExactArgs(1),
		Run:   runShow,
	}

	cmd.Flags().Int("id", 0, "Function ID (required)")
	cmd.Flags().Bool("raw", false, "Output the raw field table instead")

	cmd.MarkFlagRequired("id")

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt("id")
	raw, _ := cmd.Flags().GetBool("raw")

	p := openProject(args[0])
	if raw {
		r, err := p.Raw(id)
		if err != nil {
			exitErr("show", err)
		}
		b, _ := json.MarshalIndent(r, "", "  ")
		fmt.Println(string(b))
		return
	}

	f := loadFunction(p, id)
	out := struct {
		*model.Function
		Typed *model.FunctionOptions `json:"typed_options,omitempty"`
	}{Function: f}
	if typed, err := f.Options.Typed(); err == nil {
		out.Typed = &typed
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
