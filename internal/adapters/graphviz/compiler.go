// Package graphviz renders a debug D2 visualization of the semantic
// graph: node kinds and edge labels become D2 shapes and arrows. This
// is an inspection aid, not part of the canonical pipeline data flow —
// the pipeline never reads a D2 render back.
package graphviz

import (
	"context"
	"fmt"
	"strings"

	"github.com/aie-tools/aiec/internal/core/semgraph"
	"oss.terrastruct.com/d2/d2graph"
	"oss.terrastruct.com/d2/d2layouts/d2dagrelayout"
	"oss.terrastruct.com/d2/d2lib"
	"oss.terrastruct.com/d2/lib/textmeasure"
)

// Compiler validates a generated D2 source string by compiling it with
// the official D2 library, catching structural errors before the
// source is written out or handed to Renderer.
type Compiler struct{}

// NewCompiler creates a Compiler.
func NewCompiler() *Compiler { return &Compiler{} }

// Validate compiles d2Source and returns the first structural error, if
// any. Empty source is valid (nothing to render).
func (c *Compiler) Validate(d2Source string) error {
	if strings.TrimSpace(d2Source) == "" {
		return nil
	}
	ruler, _ := textmeasure.NewRuler()
	opts := &d2lib.CompileOptions{
		Ruler: ruler,
		LayoutResolver: func(engine string) (d2graph.LayoutGraph, error) {
			return d2dagrelayout.DefaultLayout, nil
		},
	}
	_, _, err := d2lib.Compile(context.Background(), d2Source, opts, nil)
	if err != nil {
		return fmt.Errorf("D2 graph visualization is invalid: %w", err)
	}
	return nil
}

// FromSemanticGraph renders g as D2 source: one shape per node labeled
// "kind: label", one arrow per edge labeled with its edge type.
func FromSemanticGraph(g *semgraph.Graph) string {
	var b strings.Builder
	for id, n := range g.Nodes {
		label := string(n.Kind)
		if n.Label != "" {
			label += ": " + n.Label
		}
		fmt.Fprintf(&b, "%s: %q\n", id, label)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "%s -> %s: %s\n", e.From, e.To, e.Type)
	}
	return b.String()
}
