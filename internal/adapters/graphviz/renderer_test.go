package graphviz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHashIsStableAndContentSensitive(t *testing.T) {
	a := ContentHash("a: \"x\"\n")
	b := ContentHash("a: \"x\"\n")
	c := ContentHash("a: \"y\"\n")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestNewRendererIsAvailableReflectsPath(t *testing.T) {
	r := NewRenderer()
	// The d2 binary may or may not be present in the test environment;
	// IsAvailable must simply agree with whether d2Path was resolved.
	assert.Equal(t, r.d2Path != "", r.IsAvailable())
}

func TestRenderSVGRejectsEmptySource(t *testing.T) {
	r := NewRenderer()
	_, err := r.RenderSVG(context.Background(), "   ", 5)
	assert.Error(t, err)
}

func TestRenderSVGWithoutBinaryReturnsError(t *testing.T) {
	r := &Renderer{Compiler: NewCompiler(), cache: make(map[string]string)}
	assert.False(t, r.IsAvailable())

	_, err := r.RenderSVG(context.Background(), "a: \"x\"\n", 5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found in PATH")
}

func TestClearCacheEmptiesCache(t *testing.T) {
	r := NewRenderer()
	r.cache["deadbeef"] = "<svg/>"
	r.ClearCache()
	assert.Empty(t, r.cache)
}

func TestRendererValidatesViaEmbeddedCompiler(t *testing.T) {
	r := NewRenderer()
	assert.NoError(t, r.Validate(`a: "n"`))
}
