package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "eval <project> x...",
		Short: "Interpolate a function at the given inputs",
		Args:  cobra.MinimumNArgs(2),
		Run:   runEval,
	}

	cmd.Flags().Int("id", 0, "Function ID (required)")

	cmd.MarkFlagRequired("id")

	RootCmd.AddCommand(cmd)
}

func runEval(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt("id")

	f := loadFunction(openProject(args[0]), id)

	type result struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	results := make([]result, 0, len(args)-1)
	for _, a := range args[1:] {
		x, err := strconv.ParseFloat(a, 64)
		if err != nil {
			exitErr("parse input", err)
		}
		y, err := f.Evaluate(x)
		if err != nil {
			exitErr("eval", err)
		}
		results = append(results, result{X: x, Y: y})
	}

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}
