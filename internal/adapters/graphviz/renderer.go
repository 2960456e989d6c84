package graphviz

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/aie-tools/aiec/internal/core/usecases"
)

var _ usecases.GraphRenderer = (*Renderer)(nil)

// Renderer implements usecases.GraphRenderer: it validates D2 source
// with the embedded Compiler, then shells out to the d2 CLI binary to
// turn it into SVG. Rendering is best-effort: when the binary isn't on
// PATH, IsAvailable reports false and the driver skips the render
// instead of failing the build.
type Renderer struct {
	*Compiler
	d2Path string
	cache  map[string]string
	mu     sync.RWMutex
}

// NewRenderer locates the d2 binary on PATH, if present.
func NewRenderer() *Renderer {
	d2Path, _ := exec.LookPath("d2")
	return &Renderer{
		Compiler: NewCompiler(),
		d2Path:   d2Path,
		cache:    make(map[string]string),
	}
}

// IsAvailable reports whether the d2 binary was found on PATH.
func (r *Renderer) IsAvailable() bool {
	return r.d2Path != ""
}

// RenderSVG compiles d2Source to SVG via the d2 CLI, with a cache keyed
// on content hash so repeated builds of an unchanged graph skip the
// subprocess.
func (r *Renderer) RenderSVG(ctx context.Context, d2Source string, timeoutSec int) (string, error) {
	trimmed := strings.TrimSpace(d2Source)
	if trimmed == "" {
		return "", fmt.Errorf("d2 source cannot be empty")
	}
	if !r.IsAvailable() {
		return "", fmt.Errorf("d2 binary not found in PATH")
	}

	hash := ContentHash(d2Source)
	r.mu.RLock()
	if cached, ok := r.cache[hash]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
		defer cancel()
	}

	tmpFile, err := os.CreateTemp("", "aiec-graph-*.svg")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	cmd := exec.CommandContext(ctx, r.d2Path, "--layout", "elk", "--theme", "0", "-", tmpPath)
	cmd.Stdin = strings.NewReader(d2Source)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := stderr.String(); msg != "" {
			return "", fmt.Errorf("d2 render failed: %w\nstderr: %s", err, msg)
		}
		return "", fmt.Errorf("d2 render failed: %w", err)
	}

	svgContent, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to read rendered SVG: %w", err)
	}

	r.mu.Lock()
	r.cache[hash] = string(svgContent)
	r.mu.Unlock()

	return string(svgContent), nil
}

// ClearCache discards all cached SVG renders.
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	r.cache = make(map[string]string)
	r.mu.Unlock()
}

// ContentHash computes the SHA256 hash of d2Source, used as the cache key.
func ContentHash(d2Source string) string {
	hash := sha256.Sum256([]byte(d2Source))
	return fmt.Sprintf("%x", hash)
}
