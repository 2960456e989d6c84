// Package cmd implements the aiec CLI commands using Cobra.
package cmd

import (
	"fmt"

	"github.com/aie-tools/aiec/internal/adapters/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Build-time version information, set via SetVersionInfo from main.go.
var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
	appBuiltBy = "unknown"
)

// Persistent flag values accessible to all subcommands.
var (
	cfgFile        string
	projectRoot    string
	verbose        bool
	resolvedConfig config.Config
)

// rootCmd is the base command when called without any subcommands. Its
// default action (no subcommand, one positional argument) is the full
// `aiec compile` pipeline as a single-command surface.
var rootCmd = &cobra.Command{
	Use:   "aiec <input.xml>",
	Short: "AI Engine dataflow compiler",
	Long: `aiec turns a structured AI Engine (AIE) dataflow program description
into executable host Python code for an NPU, lowering it through HLIR,
GUI XML, Complete XML, and a typed semantic graph before code generation.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper(), projectRoot)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		resolvedConfig = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runCompile(args[0])
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path; no command reads this value (the global config directory comes from AIEC_CONFIG_HOME)")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "project", "p", ".", "project root directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.Flags().BoolVar(&runFlag, "run", false, "execute the generated program and propagate its exit code")
	rootCmd.Flags().BoolVar(&watchFlag, "watch", false, "recompile whenever the input file changes")
	rootCmd.Flags().BoolVar(&renderSVGFlag, "graph-svg", false, "render a debug D2 visualization of the semantic graph")
}

// Execute runs the root command. This is the entry point called from main.go.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode reports the exit code recorded by the last `compile` run: the
// subprocess exit code when `--run` was given and failed, 1 on any other
// compile error, 0 on success. Other commands do not set it; main turns a
// 0 into 1 when Execute returns an error.
func ExitCode() int {
	return lastExitCode
}

// SetVersionInfo sets build-time version information from ldflags.
func SetVersionInfo(version, commit, date, builtBy string) {
	appVersion, appCommit, appDate, appBuiltBy = version, commit, date, builtBy
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		fmt.Sprintf("aiec %s (commit: %s, built: %s by %s)\n", version, commit, date, builtBy),
	)
}
