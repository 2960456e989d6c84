package semgraph

import (
	"fmt"
	"sort"
	"strings"
)

// WriteGraphML renders g as standard GraphML: each node's kind and
// label as data attributes, each edge's type as a data attribute. Used
// both as an inspection aid and as the code generator's input format.
func WriteGraphML(g *Graph) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<graphml xmlns="http://graphml.graphdrawing.org/xmlns">` + "\n")
	b.WriteString(`  <key id="d0" for="node" attr.name="kind" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="d1" for="node" attr.name="label" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="d2" for="edge" attr.name="type" attr.type="string"/>` + "\n")
	b.WriteString(`  <graph id="G" edgedefault="directed">` + "\n")

	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		n := g.Nodes[id]
		fmt.Fprintf(&b, "    <node id=%q>\n", n.ID)
		fmt.Fprintf(&b, "      <data key=\"d0\">%s</data>\n", escape(string(n.Kind)))
		fmt.Fprintf(&b, "      <data key=\"d1\">%s</data>\n", escape(n.Label))
		b.WriteString("    </node>\n")
	}
	for i, e := range g.Edges {
		fmt.Fprintf(&b, "    <edge id=\"e%d\" source=%q target=%q>\n", i, e.From, e.To)
		fmt.Fprintf(&b, "      <data key=\"d2\">%s</data>\n", escape(string(e.Type)))
		b.WriteString("    </edge>\n")
	}
	b.WriteString("  </graph>\n</graphml>\n")
	return b.String()
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
