// Package driver is the orchestration driver: given one input XML path,
// it walks expand -> graph-build -> codegen -> (optional) run, writing
// each stage's artifact as a sibling file plus a YAML build manifest,
// emitting progress and diagnostics along the way.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aie-tools/aiec/internal/adapters/codegen"
	"github.com/aie-tools/aiec/internal/adapters/graphviz"
	"github.com/aie-tools/aiec/internal/adapters/xmlexpand"
	"github.com/aie-tools/aiec/internal/adapters/xmlnode"
	"github.com/aie-tools/aiec/internal/core/semgraph"
	"github.com/aie-tools/aiec/internal/core/usecases"
	"github.com/aie-tools/aiec/internal/diagnostics"
	"gopkg.in/yaml.v3"
)

const stageCount = 4

// Options configures one Compile run.
type Options struct {
	Run               bool
	RunTimeoutSeconds int
	RenderGraphSVG    bool
	// StopAfter halts the pipeline after the named stage ("expand" or
	// "graph") instead of running it through codegen, backing the
	// per-stage `aiec expand`/`aiec graph` subcommands. Empty runs the
	// full pipeline.
	StopAfter string
}

// Result carries every artifact path a Compile run produced, plus the
// outcome of an optional `--run`.
type Result struct {
	CompleteXMLPath string
	GraphMLPath     string
	GraphSVGPath    string
	GeneratedPath   string
	ManifestPath    string
	Stdout          string
	Stderr          string
	ExitCode        int
	Ran             bool
	Stages          []StageTiming
}

// Pipeline wires the adapters the orchestration driver depends on.
// Graph and Runner are optional: a nil Graph skips the debug D2
// visualization, a nil Runner makes Options.Run an error. Diagnostics is
// optional too; when nil the driver still catches stage-boundary errors
// but emits nothing beyond the Logger/Progress ports.
type Pipeline struct {
	Logger      usecases.Logger
	Progress    usecases.ProgressReporter
	Graph       usecases.GraphRenderer
	Runner      usecases.Runner
	Diagnostics usecases.DiagnosticsSink
}

// New creates a Pipeline from its adapter ports.
func New(logger usecases.Logger, progress usecases.ProgressReporter, graph usecases.GraphRenderer, runner usecases.Runner) *Pipeline {
	return &Pipeline{Logger: logger, Progress: progress, Graph: graph, Runner: runner, Diagnostics: diagnostics.NewStderrSink()}
}

// WithDiagnostics overrides the default stderr sink, e.g. with a JSON
// formatter or a CollectingSink under test.
func (p *Pipeline) WithDiagnostics(sink usecases.DiagnosticsSink) *Pipeline {
	p.Diagnostics = sink
	return p
}

// isCompleteXML applies the filename convention: a path ending in
// ".complete.xml" is already-expanded Complete XML and skips the
// expander; any other extension is treated as GUI-XML.
func isCompleteXML(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".complete.xml")
}

func stemOf(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, ".complete")
}

// Compile runs inputPath through the pipeline, returning every artifact
// path produced so far even when a stage fails partway.
func (p *Pipeline) Compile(ctx context.Context, inputPath string, opts Options) (*Result, error) {
	dir := filepath.Dir(inputPath)
	name := stemOf(inputPath)
	manifest := &Manifest{Input: inputPath}
	res := &Result{}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return res, p.abort(dir, name, manifest, res, diagnostics.XMLMissingText, fmt.Errorf("reading input: %w", err))
	}
	root, err := xmlnode.ParseString(string(raw))
	if err != nil {
		return res, p.abort(dir, name, manifest, res, diagnostics.XMLBadAttributeType, fmt.Errorf("parsing input: %w", err))
	}

	completeRoot := root
	if !isCompleteXML(inputPath) {
		p.progress(1, "expand", "expanding GUI XML into Complete XML")
		start := time.Now()
		completeRoot = xmlexpand.Expand(root, p.Diagnostics)
		res.CompleteXMLPath = filepath.Join(dir, name+".complete.xml")
		if err := os.WriteFile(res.CompleteXMLPath, []byte(completeRoot.Write()), 0644); err != nil {
			return res, p.abort(dir, name, manifest, res, diagnostics.XMLUnexpectedChild, fmt.Errorf("writing complete XML: %w", err))
		}
		manifest.record("expand", time.Since(start).Milliseconds(), res.CompleteXMLPath)
	}
	if opts.StopAfter == "expand" {
		p.writeManifest(dir, name, manifest, res)
		return res, nil
	}

	p.progress(2, "graph", "building the semantic graph")
	start := time.Now()
	graph := semgraph.Build(completeRoot, p.Diagnostics)
	res.GraphMLPath = filepath.Join(dir, name+".graphml")
	if err := os.WriteFile(res.GraphMLPath, []byte(semgraph.WriteGraphML(graph)), 0644); err != nil {
		return res, p.abort(dir, name, manifest, res, diagnostics.GraphRuleFailed, fmt.Errorf("writing GraphML: %w", err))
	}
	manifest.record("graph", time.Since(start).Milliseconds(), res.GraphMLPath)

	if opts.RenderGraphSVG && p.Graph != nil {
		p.renderDebugGraph(dir, name, graph, res, manifest)
	}
	if opts.StopAfter == "graph" {
		p.writeManifest(dir, name, manifest, res)
		return res, nil
	}

	p.progress(3, "generate", "generating host Python code")
	start = time.Now()
	source := codegen.Generate(graph, p.Diagnostics)
	res.GeneratedPath = filepath.Join(dir, "generated_"+name+".py")
	if err := os.WriteFile(res.GeneratedPath, []byte(source), 0644); err != nil {
		return res, p.abort(dir, name, manifest, res, diagnostics.CodegenRuleFailed, fmt.Errorf("writing generated source: %w", err))
	}
	manifest.record("generate", time.Since(start).Milliseconds(), res.GeneratedPath)

	if opts.Run {
		p.progress(4, "run", "running the generated program")
		start = time.Now()
		if p.Runner == nil {
			return res, p.abort(dir, name, manifest, res, diagnostics.CodegenRuleFailed, fmt.Errorf("--run requested but no Runner is configured"))
		}
		timeout := opts.RunTimeoutSeconds
		if timeout <= 0 {
			timeout = 30
		}
		stdout, stderr, exitCode, runErr := p.Runner.Run(ctx, res.GeneratedPath, timeout)
		res.Stdout, res.Stderr, res.ExitCode, res.Ran = stdout, stderr, exitCode, true
		manifest.record("run", time.Since(start).Milliseconds(), "")
		manifest.ExitCode = exitCode
		if runErr != nil {
			manifest.Error = runErr.Error()
			p.writeManifest(dir, name, manifest, res)
			if p.Progress != nil {
				p.Progress.ReportError(runErr)
			}
			return res, runErr
		}
	}

	p.writeManifest(dir, name, manifest, res)
	if p.Progress != nil {
		p.Progress.ReportSuccess(fmt.Sprintf("compiled %s", inputPath))
	}
	return res, nil
}

func (p *Pipeline) renderDebugGraph(dir, name string, graph *semgraph.Graph, res *Result, manifest *Manifest) {
	start := time.Now()
	d2Source := graphviz.FromSemanticGraph(graph)
	if err := p.Graph.Validate(d2Source); err != nil {
		if p.Logger != nil {
			p.Logger.Warn("debug graph visualization is invalid, skipping render", "error", err)
		}
		return
	}
	if !p.Graph.IsAvailable() {
		return
	}
	svg, err := p.Graph.RenderSVG(context.Background(), d2Source, 30)
	if err != nil {
		if p.Logger != nil {
			p.Logger.Warn("rendering debug graph SVG failed", "error", err)
		}
		return
	}
	res.GraphSVGPath = filepath.Join(dir, name+".svg")
	if err := os.WriteFile(res.GraphSVGPath, []byte(svg), 0644); err != nil {
		if p.Logger != nil {
			p.Logger.Warn("writing debug graph SVG failed", "error", err)
		}
		res.GraphSVGPath = ""
		return
	}
	manifest.record("graph_svg", time.Since(start).Milliseconds(), res.GraphSVGPath)
}

func (p *Pipeline) progress(stage int, name, message string) {
	if p.Progress != nil {
		p.Progress.ReportProgress(name, stage, stageCount, message)
	}
	if p.Logger != nil {
		p.Logger.Info(message, "stage", name)
	}
}

// abort ends a compile that failed on an error the driver received (an
// input read or parse error, an artifact write error, or a run failure):
// it records the error in the manifest, logs it, emits one ERROR
// diagnostic, reports it, and returns it so the command exits non-zero.
// Expand, Build and Generate return no error, and a panic raised inside
// them is not recovered here.
func (p *Pipeline) abort(dir, name string, manifest *Manifest, res *Result, code diagnostics.Code, err error) error {
	manifest.ExitCode = 1
	manifest.Error = err.Error()
	p.writeManifest(dir, name, manifest, res)
	if p.Logger != nil {
		p.Logger.Error("compile failed", err)
	}
	if p.Diagnostics != nil {
		p.Diagnostics.Emit(diagnostics.New(code, diagnostics.Error, diagnostics.Fields{
			Loc:    dir,
			Name:   name,
			Reason: err.Error(),
		}))
	}
	if p.Progress != nil {
		p.Progress.ReportError(err)
	}
	return err
}

func (p *Pipeline) writeManifest(dir, name string, manifest *Manifest, res *Result) {
	res.Stages = manifest.Stages
	out, err := yaml.Marshal(manifest)
	if err != nil {
		return
	}
	res.ManifestPath = filepath.Join(dir, name+".manifest.yaml")
	_ = os.WriteFile(res.ManifestPath, out, 0644)
}
