package cmd

import (
	"context"
	"fmt"

	"github.com/aie-tools/aiec/internal/driver"
	"github.com/spf13/cobra"
)

var graphSVGFlag bool

var graphCmd = &cobra.Command{
	Use:   "graph <input.xml>",
	Short: "Build the semantic graph and write its GraphML, then stop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPipeline()
		res, err := p.Compile(context.Background(), args[0], driver.Options{
			StopAfter:      "graph",
			RenderGraphSVG: graphSVGFlag,
		})
		if err != nil {
			return err
		}
		fmt.Println(res.GraphMLPath)
		if res.GraphSVGPath != "" {
			fmt.Println(res.GraphSVGPath)
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().BoolVar(&graphSVGFlag, "svg", false, "also render a debug D2 visualization of the graph")
	rootCmd.AddCommand(graphCmd)
}
