package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/javajack/xlgrid"
	"github.com/javajack/xlgrid/report"
)

type renderOptions struct {
	reportPath string
	dataPath   string
	outPath    string
	stream     bool
}

var renderOpts renderOptions

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a YAML report definition and JSON data into an .xlsx file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := runRender(&renderOpts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	addRenderFlags(renderCmd.Flags(), &renderOpts)
	renderCmd.MarkFlagRequired("report")
	renderCmd.MarkFlagRequired("out")
}

func addRenderFlags(fs *pflag.FlagSet, o *renderOptions) {
	fs.StringVarP(&o.reportPath, "report", "r", "", "path to the YAML report definition")
	fs.StringVarP(&o.dataPath, "data", "d", "", "path to the JSON data file (map of data key to records)")
	fs.StringVarP(&o.outPath, "out", "o", "", "output .xlsx path (extension appended if missing)")
	fs.BoolVar(&o.stream, "stream", false, "use the bounded-memory streaming writer (for very large sheets)")
}

func runRender(o *renderOptions) (string, error) {
	def, err := report.LoadFile(o.reportPath)
	if err != nil {
		return "", err
	}

	data := map[string][]map[string]any{}
	if o.dataPath != "" {
		raw, err := os.ReadFile(o.dataPath)
		if err != nil {
			return "", fmt.Errorf("read data file %q: %w", o.dataPath, err)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return "", fmt.Errorf("decode data file %q: %w", o.dataPath, err)
		}
	}

	var opts []xlgrid.Option
	if o.stream {
		opts = append(opts, xlgrid.WithStreaming())
	}
	return def.RenderFile(o.outPath, data, opts...)
}
