package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/geofunc/internal/render"
)

func init() {
	cmd := &cobra.Command{
		Use:   "render <project>",
		Short: "Export a function as a spreadsheet or PDF plot",
		Args:  cobra.ExactArgs(1),
		Run:   runRender,
	}

	cmd.Flags().Int("id", 0, "Function ID (required)")
	cmd.Flags().String("as", "", "Output format: xlsx or pdf (default: from --out extension)")
	cmd.Flags().StringP("out", "o", "", "Output file (required)")

	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("out")

	RootCmd.AddCommand(cmd)
}

func runRender(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt("id")
	as, _ := cmd.Flags().GetString("as")
	out, _ := cmd.Flags().GetString("out")

	if as == "" {
		as = strings.ToLower(strings.TrimPrefix(filepath.Ext(out), "."))
	}

	f := loadFunction(openProject(args[0]), id)

	var (
		data []byte
		err  error
	)
	switch as {
	case "xlsx":
		data, err = render.XLSX(f)
	case "pdf":
		data, err = render.PDF(f)
	default:
		exitErr("render", fmt.Errorf("unknown format %q (want xlsx or pdf)", as))
	}
	if err != nil {
		exitErr("render", err)
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		exitErr("write output", err)
	}
	fmt.Printf(`{"ok":true,"id":%d,"path":%q,"bytes":%d}`+"\n", id, out, len(data))
}
