package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aie-tools/aiec/internal/adapters/cli"
	"github.com/aie-tools/aiec/internal/adapters/filesystem"
	"github.com/aie-tools/aiec/internal/adapters/graphviz"
	"github.com/aie-tools/aiec/internal/adapters/logging"
	"github.com/aie-tools/aiec/internal/adapters/process"
	"github.com/aie-tools/aiec/internal/diagnostics"
	"github.com/aie-tools/aiec/internal/driver"
	"github.com/aie-tools/aiec/internal/ui"
	"github.com/spf13/cobra"
)

var out = ui.NewOutput()

var (
	runFlag       bool
	watchFlag     bool
	renderSVGFlag bool
	lastExitCode  int
)

// compileCmd is the explicit spelling of the default root action: the
// full expand -> graph -> generate -> (optional) run pipeline.
var compileCmd = &cobra.Command{
	Use:   "compile <input.xml>",
	Short: "Run the full pipeline: expand, build the graph, generate code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(args[0])
	},
}

func init() {
	compileCmd.Flags().BoolVar(&runFlag, "run", false, "execute the generated program and propagate its exit code")
	compileCmd.Flags().BoolVar(&watchFlag, "watch", false, "recompile whenever the input file changes")
	compileCmd.Flags().BoolVar(&renderSVGFlag, "graph-svg", false, "render a debug D2 visualization of the semantic graph")
	rootCmd.AddCommand(compileCmd)
}

func newPipeline() *driver.Pipeline {
	p := driver.New(logging.GetLogger(), cli.NewProgressReporter(), graphviz.NewRenderer(), process.NewRunner())
	format := diagnostics.FormatHuman
	if resolvedConfig.DiagnosticsFormat == "json" {
		format = diagnostics.FormatJSON
	}
	return p.WithDiagnostics(diagnostics.NewWriterSink(os.Stderr, format, resolvedConfig.DiagnosticsProcessInfo))
}

func compileOnce(p *driver.Pipeline, input string, stopAfter string) int {
	res, err := p.Compile(context.Background(), input, driver.Options{
		Run:               runFlag,
		RunTimeoutSeconds: resolvedConfig.DriverRunTimeoutSeconds,
		RenderGraphSVG:    renderSVGFlag,
		StopAfter:         stopAfter,
	})
	if err != nil {
		out.ErrorWithDetails("compile failed", err.Error())
		if res != nil && res.Ran {
			return res.ExitCode
		}
		return 1
	}
	out.Success(fmt.Sprintf("compiled %s", input))
	out.StageSummary(res.Stages)
	if res.Ran {
		return res.ExitCode
	}
	return 0
}

func runCompile(input string) error {
	p := newPipeline()
	watch := watchFlag || resolvedConfig.DriverWatch

	if !watch {
		lastExitCode = compileOnce(p, input, "")
		if lastExitCode != 0 {
			return fmt.Errorf("compile of %s exited with code %d", input, lastExitCode)
		}
		return nil
	}

	fw, err := filesystem.NewFileWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fw.Stop()

	ctx := context.Background()
	events, err := fw.Watch(ctx, filepath.Dir(input))
	if err != nil {
		return fmt.Errorf("watching %s: %w", input, err)
	}

	lastExitCode = compileOnce(p, input, "")
	for range events {
		lastExitCode = compileOnce(p, input, "")
	}
	return nil
}
