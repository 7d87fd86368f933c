package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "set <project>",
		Short: "Edit a function and save the project",
		Long: "Edit the name or the point coordinates of a function. Coordinates are " +
			"comma-separated and must match the number of points. The project is saved in " +
			"place unless --out is given.",
		Args: cobra.ExactArgs(1),
		Run:  runSet,
	}

	cmd.Flags().Int("id", 0, "Function ID (required)")
	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("x", "", "Comma-separated X values")
	cmd.Flags().String("y", "", "Comma-separated Y values")
	cmd.Flags().StringP("out", "o", "", "Write to this path instead of the input")

	cmd.MarkFlagRequired("id")

	RootCmd.AddCommand(cmd)
}

func runSet(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt("id")
	name, _ := cmd.Flags().GetString("name")
	xStr, _ := cmd.Flags().GetString("x")
	yStr, _ := cmd.Flags().GetString("y")
	out, _ := cmd.Flags().GetString("out")

	p := openProject(args[0])
	f := loadFunction(p, id)

	if name != "" {
		f.Name = name
	}
	if xStr != "" {
		xs, err := parseFloats(xStr)
		if err != nil {
			exitErr("parse x", err)
		}
		if err := f.SetX(xs); err != nil {
			exitErr("set x", err)
		}
	}
	if yStr != "" {
		ys, err := parseFloats(yStr)
		if err != nil {
			exitErr("parse y", err)
		}
		if err := f.SetY(ys); err != nil {
			exitErr("set y", err)
		}
	}

	if err := p.Update(f); err != nil {
		exitErr("update", err)
	}
	if out == "" {
		out = p.Path()
	}
	if err := p.SaveAs(out); err != nil {
		exitErr("save", err)
	}
	logger.Info("project saved", zap.String("path", out), zap.Int("id", id))

	fmt.Printf(`{"ok":true,"id":%d,"path":%q}`+"\n", id, out)
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
