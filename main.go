// Package main is the entry point for the aiec CLI: a compiler that
// turns an AI Engine dataflow program description into executable host
// Python code for an NPU.
package main

import (
	"fmt"
	"os"

	"github.com/aie-tools/aiec/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date, builtBy)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code := cmd.ExitCode()
		if code == 0 {
			code = 1
		}
		os.Exit(code)
	}
}
