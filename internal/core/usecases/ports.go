// Package usecases holds the ProgramBuilder/RuntimeBuilder (the fluent
// construction surface over hlir.Program) and the ports later adapters
// implement: logging, diagnostics, file watching, and debug graph
// rendering.
package usecases

import (
	"context"

	"github.com/aie-tools/aiec/internal/diagnostics"
)

// Logger is the driver's operational-log port, distinct from the
// diagnostics.Sink (which is the user-facing compiler-diagnostics
// channel). The pipeline only ever logs plain leveled messages, so the
// port stops there rather than carrying field-scoping or context-scoping
// methods nothing calls.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, err error, keysAndValues ...any)
}

// DiagnosticsSink re-exports diagnostics.Sink under the usecases port
// vocabulary so adapters/driver code can depend on one import.
type DiagnosticsSink = diagnostics.Sink

// FileChangeEvent is one filesystem change surfaced by a FileWatcher.
type FileChangeEvent struct {
	Path string
	Op   string // create, write, remove, rename, chmod
}

// FileWatcher defines the port backing `aiec compile --watch`.
type FileWatcher interface {
	Watch(ctx context.Context, path string) (<-chan FileChangeEvent, error)
	Stop() error
}

// GraphRenderer defines the port for the debug D2 visualization of the
// semantic graph: validating generated D2 source and, when the `d2`
// binary is available, rendering it to SVG.
type GraphRenderer interface {
	Validate(d2Source string) error
	RenderSVG(ctx context.Context, d2Source string, timeoutSec int) (string, error)
	IsAvailable() bool
}

// Runner executes the emitted host program and captures its result, backing
// the orchestration driver's `--run` support.
type Runner interface {
	Run(ctx context.Context, scriptPath string, timeoutSec int) (stdout, stderr string, exitCode int, err error)
}

// ProgressReporter surfaces the driver's per-stage progress across the
// pipeline's stages to the terminal.
type ProgressReporter interface {
	ReportProgress(stage string, current, total int, message string)
	ReportError(err error)
	ReportSuccess(message string)
	ReportInfo(message string)
}
