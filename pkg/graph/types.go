package graph

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// =============================================================================
// Graph - Serialization Format
// =============================================================================

// Graph is the canonical JSON serialization format for attributed digraphs.
// Used for API responses and the JSON output format.
//
// The format is human-readable and designed for round-trip fidelity:
// decode → unfold → encode → re-decode produces identical results. Label uses
// a pointer so that an absent label (delay zero) and an empty label survive
// the round trip as different states.
type Graph struct {
	Nodes []NodeData `json:"nodes"`
	Edges []EdgeData `json:"edges"`
}

// NodeData is the serialized form of a node.
type NodeData struct {
	ID         string            `json:"id"`
	Label      *string           `json:"label,omitempty"`
	Color      string            `json:"color,omitempty"`
	Constraint string            `json:"constraint,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// EdgeData is the serialized form of an edge.
type EdgeData struct {
	From       string            `json:"from"`
	To         string            `json:"to"`
	Label      *string           `json:"label,omitempty"`
	Color      string            `json:"color,omitempty"`
	Constraint string            `json:"constraint,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// =============================================================================
// Digraph ↔ Graph Conversion
// =============================================================================

// FromDigraph converts a Digraph to its serialization format.
// Nodes are sorted by ID for deterministic output; edges keep insertion order.
func FromDigraph(g *Digraph) Graph {
	nodes := g.Nodes()
	slices.SortFunc(nodes, func(a, b *Node) int {
		return strings.Compare(a.ID, b.ID)
	})

	out := Graph{
		Nodes: make([]NodeData, len(nodes)),
		Edges: make([]EdgeData, len(g.Edges())),
	}

	for i, n := range nodes {
		out.Nodes[i] = NodeData{ID: n.ID}
		fillAttrData(n.Attrs, &out.Nodes[i].Label, &out.Nodes[i].Color, &out.Nodes[i].Constraint, &out.Nodes[i].Extra)
	}

	for i, e := range g.Edges() {
		out.Edges[i] = EdgeData{From: e.From, To: e.To}
		fillAttrData(e.Attrs, &out.Edges[i].Label, &out.Edges[i].Color, &out.Edges[i].Constraint, &out.Edges[i].Extra)
	}

	return out
}

// ToDigraph converts a serialized Graph back to a Digraph.
func ToDigraph(data Graph) (*Digraph, error) {
	g := New()

	for _, nd := range data.Nodes {
		n := Node{ID: nd.ID, Attrs: attrsFromData(nd.Label, nd.Color, nd.Constraint, nd.Extra)}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nd.ID, err)
		}
	}

	for _, ed := range data.Edges {
		e := Edge{From: ed.From, To: ed.To, Attrs: attrsFromData(ed.Label, ed.Color, ed.Constraint, ed.Extra)}
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", ed.From, ed.To, err)
		}
	}

	return g, nil
}

// Marshal converts a Digraph to indented JSON bytes.
func Marshal(g *Digraph) ([]byte, error) {
	return json.MarshalIndent(FromDigraph(g), "", "  ")
}

// Unmarshal decodes JSON bytes into a Digraph.
func Unmarshal(data []byte) (*Digraph, error) {
	var gd Graph
	if err := json.Unmarshal(data, &gd); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToDigraph(gd)
}

// =============================================================================
// Internal Helpers
// =============================================================================

func fillAttrData(a Attrs, label **string, color, constraint *string, extra *map[string]string) {
	if a.HasLabel {
		v := a.Label
		*label = &v
	}
	*color = a.Color
	*constraint = a.Constraint
	if len(a.Extra) > 0 {
		*extra = a.Extra
	}
}

func attrsFromData(label *string, color, constraint string, extra map[string]string) Attrs {
	a := Attrs{Color: color, Constraint: constraint}
	if label != nil {
		a.SetLabel(*label)
	}
	if len(extra) > 0 {
		a.Extra = extra
	}
	return a
}
