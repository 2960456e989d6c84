package cmd

import (
	"context"
	"fmt"

	"github.com/aie-tools/aiec/internal/driver"
	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:   "expand <input.xml>",
	Short: "Expand GUI XML into Complete XML and stop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPipeline()
		res, err := p.Compile(context.Background(), args[0], driver.Options{StopAfter: "expand"})
		if err != nil {
			return err
		}
		fmt.Println(res.CompleteXMLPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(expandCmd)
}
