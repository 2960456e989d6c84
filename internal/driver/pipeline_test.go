package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aie-tools/aiec/internal/diagnostics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const passthroughGUIXML = `<Module name="passthrough">
	<Symbols>
		<Const name="N" type="int">16</Const>
		<TypeAbstraction name="line_ty"><ndarray><shape>N</shape><dtype>int32</dtype></ndarray></TypeAbstraction>
	</Symbols>
	<DataFlow>
		<ObjectFifo name="of_in" obj_type="line_ty" depth="2" producer="tile_in">
			<consumer tile="tile_out"/>
		</ObjectFifo>
	</DataFlow>
	<Function name="passthrough" decorator="iron.jit">
		<parameters><param name="inputA"/><param name="outputC"/></parameters>
		<body></body>
	</Function>
</Module>`

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)        {}
func (nopLogger) Info(string, ...any)         {}
func (nopLogger) Warn(string, ...any)         {}
func (nopLogger) Error(string, error, ...any) {}

type recordingProgress struct {
	messages []string
	errors   []error
}

func (r *recordingProgress) ReportProgress(stage string, current, total int, message string) {
	r.messages = append(r.messages, message)
}
func (r *recordingProgress) ReportError(err error)        { r.errors = append(r.errors, err) }
func (r *recordingProgress) ReportSuccess(message string) { r.messages = append(r.messages, message) }
func (r *recordingProgress) ReportInfo(message string)    { r.messages = append(r.messages, message) }

type unavailableGraph struct{}

func (unavailableGraph) Validate(string) error { return nil }
func (unavailableGraph) RenderSVG(context.Context, string, int) (string, error) {
	return "", nil
}
func (unavailableGraph) IsAvailable() bool { return false }

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCompileProducesCompleteXMLGraphMLAndSource(t *testing.T) {
	dir := t.TempDir()
	input := writeFixture(t, dir, "passthrough.xml", passthroughGUIXML)

	progress := &recordingProgress{}
	p := New(nopLogger{}, progress, unavailableGraph{}, nil)

	res, err := p.Compile(context.Background(), input, Options{})
	require.NoError(t, err)

	assert.FileExists(t, res.CompleteXMLPath)
	assert.FileExists(t, res.GraphMLPath)
	assert.FileExists(t, res.GeneratedPath)
	assert.FileExists(t, res.ManifestPath)
	assert.Empty(t, res.GraphSVGPath, "SVG render is skipped when d2 is unavailable")

	generated, err := os.ReadFile(res.GeneratedPath)
	require.NoError(t, err)
	assert.Contains(t, string(generated), "def passthrough(")

	var manifest Manifest
	raw, err := os.ReadFile(res.ManifestPath)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(raw, &manifest))
	assert.Equal(t, input, manifest.Input)
	assert.Equal(t, 0, manifest.ExitCode)
	assert.NotEmpty(t, manifest.Stages)

	assert.NotEmpty(t, progress.messages)
	assert.Empty(t, progress.errors)
}

func TestCompileSkipsExpandForCompleteXML(t *testing.T) {
	dir := t.TempDir()
	// A pre-expanded Complete XML input carries the expander's Imports
	// section already; the driver must not re-expand it.
	completeSrc := `<Module name="m"><Symbols></Symbols><DataFlow></DataFlow><Imports></Imports></Module>`
	input := writeFixture(t, dir, "m.complete.xml", completeSrc)

	p := New(nopLogger{}, &recordingProgress{}, nil, nil)
	res, err := p.Compile(context.Background(), input, Options{})
	require.NoError(t, err)

	assert.Empty(t, res.CompleteXMLPath, "expand stage is skipped for already-complete input")
	assert.FileExists(t, res.GraphMLPath)
	assert.FileExists(t, res.GeneratedPath)
}

func TestCompileFailsOnUnreadableInput(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist.xml")

	progress := &recordingProgress{}
	p := New(nopLogger{}, progress, nil, nil)

	res, err := p.Compile(context.Background(), missing, Options{})
	assert.Error(t, err)
	assert.NotEmpty(t, progress.errors)
	assert.FileExists(t, res.ManifestPath)
}

func TestCompileEmitsErrorDiagnosticOnAbort(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist.xml")

	sink := diagnostics.NewCollectingSink()
	p := New(nopLogger{}, &recordingProgress{}, nil, nil).WithDiagnostics(sink)

	_, err := p.Compile(context.Background(), missing, Options{})
	assert.Error(t, err)
	assert.True(t, sink.HasSeverity(diagnostics.Error), "abort must emit an ERROR diagnostic")
}

func TestExpandEmitsWarnForUnresolvedForwardSource(t *testing.T) {
	dir := t.TempDir()
	src := `<Module name="m">
		<Symbols>
			<Const name="N" type="int">16</Const>
			<TypeAbstraction name="line_ty"><ndarray><shape>N</shape><dtype>int32</dtype></ndarray></TypeAbstraction>
		</Symbols>
		<DataFlow>
			<ObjectFifoForward name="of_out" source="of_never_declared"/>
		</DataFlow>
		<Function name="m" decorator="iron.jit">
			<parameters><param name="inputA"/><param name="outputC"/></parameters>
			<body></body>
		</Function>
	</Module>`
	input := writeFixture(t, dir, "forward.xml", src)

	sink := diagnostics.NewCollectingSink()
	p := New(nopLogger{}, &recordingProgress{}, nil, nil).WithDiagnostics(sink)

	_, err := p.Compile(context.Background(), input, Options{})
	require.NoError(t, err)

	require.True(t, sink.HasSeverity(diagnostics.Warn), "an unresolved ObjectFifoForward source must raise a WARN, not fail the build")
	var found bool
	for _, d := range sink.Items() {
		if d.Code == diagnostics.XMLUnknownSymbol {
			found = true
		}
	}
	assert.True(t, found, "expected an XML007 diagnostic for the unresolved FIFO reference")
}

func TestCompileFailsOnMalformedXML(t *testing.T) {
	dir := t.TempDir()
	input := writeFixture(t, dir, "broken.xml", "<Module name=\"m\"><Symbols></Module>")

	p := New(nopLogger{}, &recordingProgress{}, nil, nil)
	_, err := p.Compile(context.Background(), input, Options{})
	assert.Error(t, err)
}

func TestCompileWithRunRequiresRunner(t *testing.T) {
	dir := t.TempDir()
	input := writeFixture(t, dir, "passthrough.xml", passthroughGUIXML)

	p := New(nopLogger{}, &recordingProgress{}, nil, nil)
	_, err := p.Compile(context.Background(), input, Options{Run: true})
	assert.Error(t, err)
}

type fakeRunner struct {
	stdout, stderr string
	exitCode       int
	err            error
}

func (f *fakeRunner) Run(context.Context, string, int) (string, string, int, error) {
	return f.stdout, f.stderr, f.exitCode, f.err
}

func TestCompileStopAfterExpandSkipsGraphAndGenerate(t *testing.T) {
	dir := t.TempDir()
	input := writeFixture(t, dir, "passthrough.xml", passthroughGUIXML)

	p := New(nopLogger{}, &recordingProgress{}, nil, nil)
	res, err := p.Compile(context.Background(), input, Options{StopAfter: "expand"})
	require.NoError(t, err)

	assert.FileExists(t, res.CompleteXMLPath)
	assert.Empty(t, res.GraphMLPath)
	assert.Empty(t, res.GeneratedPath)
}

func TestCompileStopAfterGraphSkipsGenerate(t *testing.T) {
	dir := t.TempDir()
	input := writeFixture(t, dir, "passthrough.xml", passthroughGUIXML)

	p := New(nopLogger{}, &recordingProgress{}, nil, nil)
	res, err := p.Compile(context.Background(), input, Options{StopAfter: "graph"})
	require.NoError(t, err)

	assert.FileExists(t, res.CompleteXMLPath)
	assert.FileExists(t, res.GraphMLPath)
	assert.Empty(t, res.GeneratedPath)
}

func TestCompileWithRunInvokesRunnerAndRecordsResult(t *testing.T) {
	dir := t.TempDir()
	input := writeFixture(t, dir, "passthrough.xml", passthroughGUIXML)

	runner := &fakeRunner{stdout: "PASS\n", exitCode: 0}
	p := New(nopLogger{}, &recordingProgress{}, nil, runner)

	res, err := p.Compile(context.Background(), input, Options{Run: true, RunTimeoutSeconds: 5})
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.Equal(t, "PASS\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}
