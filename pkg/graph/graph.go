package graph

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Digraph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Digraph.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Digraph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Digraph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Attrs holds the recognized attributes of a node or edge plus any
// unrecognized extras. The three recognized keys carry scheduling meaning:
// Label encodes an integer delay on edges (or a display name on nodes),
// Constraint marks hard ordering constraints, Color is decorative.
//
// An absent label and an empty label are different things: an edge without a
// label has delay zero by definition, while label="" is a malformed delay.
// HasLabel keeps that distinction; Color and Constraint use "" for absence
// since empty values never occur in the wire format.
type Attrs struct {
	Label      string            // delay text on edges, display name on nodes
	HasLabel   bool              // whether Label was present at all
	Color      string            // "" = absent
	Constraint string            // "true", "false", or "" = absent
	Extra      map[string]string // unrecognized attributes, passed through verbatim
}

// SetLabel sets Label and marks it present.
func (a *Attrs) SetLabel(s string) {
	a.Label = s
	a.HasLabel = true
}

// Clone returns a deep copy of the attributes.
func (a Attrs) Clone() Attrs {
	out := a
	out.Extra = maps.Clone(a.Extra)
	return out
}

// IsConstraintFalse reports whether the constraint attribute is present with
// the literal value "false". In the constraint-flag delta policy this marks a
// period-crossing constraint edge.
func (a Attrs) IsConstraintFalse() bool {
	return a.Constraint == "false"
}

// Node represents a vertex in an attributed directed graph.
// The zero value is not usable - ID must be set before adding to a Digraph.
type Node struct {
	ID    string
	Attrs Attrs
}

// Edge represents a directed connection between two nodes.
type Edge struct {
	From  string
	To    string
	Attrs Attrs
}

// Digraph is an attributed directed graph. Unlike a strict DAG there is no
// acyclicity requirement: periodic dependency graphs are cyclic by nature,
// with the cycles resolved across scheduling periods by delay labels.
//
// Nodes keep insertion order and edges keep insertion order, so traversals
// and serialization are deterministic. Parallel edges between the same node
// pair are allowed. The zero value is not usable - use New.
// Digraph is not safe for concurrent use without external synchronization.
type Digraph struct {
	nodes    map[string]*Node
	order    []string // node IDs in insertion order
	edges    []Edge
	outgoing map[string][]string // nodeID -> successor IDs
	incoming map[string][]string // nodeID -> predecessor IDs
}

// New creates an empty Digraph.
func New() *Digraph {
	return &Digraph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists.
func (g *Digraph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// EnsureNode returns the node with the given ID, creating it with empty
// attributes if it does not exist yet. Edge statements in the wire format
// implicitly declare their endpoints, which is where this is used.
func (g *Digraph) EnsureNode(id string) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &Node{ID: id}
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From node doesn't exist, or
// ErrUnknownTargetNode if the To node doesn't exist. Multiple edges between
// the same nodes are allowed.
func (g *Digraph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the actual node in the graph.
func (g *Digraph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
// The returned slice contains pointers to the actual node structs.
func (g *Digraph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
// Modifications to the returned slice do not affect the graph, but the
// Attrs.Extra maps are shared.
func (g *Digraph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Digraph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Digraph) EdgeCount() int { return len(g.edges) }

// Children returns the IDs of nodes this node has edges to.
// The returned slice should be treated as read-only.
func (g *Digraph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs of nodes that have edges to this node.
// The returned slice should be treated as read-only.
func (g *Digraph) Parents(id string) []string { return g.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (g *Digraph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (g *Digraph) InDegree(id string) int { return len(g.incoming[id]) }
