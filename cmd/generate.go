package cmd

import (
	"context"
	"fmt"

	"github.com/aie-tools/aiec/internal/driver"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <input.xml>",
	Short: "Run the full pipeline through code generation, without --run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPipeline()
		res, err := p.Compile(context.Background(), args[0], driver.Options{})
		if err != nil {
			return err
		}
		fmt.Println(res.GeneratedPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
