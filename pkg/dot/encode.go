package dot

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/foldlab/cyclefold/pkg/graph"
)

// Encode serializes a Digraph into the attributed-digraph format.
//
// The layout is fixed so output is byte-stable for identical graphs: node
// statements first, sorted by identifier, each carrying a normalized label
// attribute (empty string when the node has none), then edge statements in
// insertion order with attributes written as constraint, color, label,
// followed by any extra attributes in key order.
func Encode(g *graph.Digraph) []byte {
	var buf bytes.Buffer
	buf.WriteString("digraph depgraph {\n")

	nodes := g.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	for _, n := range nodes {
		label := ""
		if n.Attrs.HasLabel {
			label = n.Attrs.Label
		}
		fmt.Fprintf(&buf, "    %s [label=%s];\n", n.ID, graph.NormalizeLabel(label))
	}

	for _, e := range g.Edges() {
		buf.WriteString("    " + e.From + " -> " + e.To)
		if attrs := formatAttrs(e.Attrs); attrs != "" {
			buf.WriteString(" [" + attrs + "]")
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.Bytes()
}

// formatAttrs renders an edge attribute list, omitting unset attributes.
func formatAttrs(a graph.Attrs) string {
	var parts []string
	if a.Constraint != "" {
		parts = append(parts, "constraint="+a.Constraint)
	}
	if a.Color != "" {
		parts = append(parts, "color="+a.Color)
	}
	if a.HasLabel {
		parts = append(parts, "label="+graph.NormalizeLabel(a.Label))
	}
	if len(a.Extra) > 0 {
		keys := make([]string, 0, len(a.Extra))
		for k := range a.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+"="+a.Extra[k])
		}
	}
	return strings.Join(parts, ", ")
}
