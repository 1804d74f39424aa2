package graph

import (
	"errors"
	"testing"
)

func TestAddNode_Duplicate(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}

	err := g.AddNode(Node{ID: "a"})
	if !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(a) again = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddNode_EmptyID(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
}

func TestAddEdge_UnknownEndpoints(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a"})

	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(x->a) = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(a->x) = %v, want ErrUnknownTargetNode", err)
	}
}

func TestAddEdge_ParallelEdgesAllowed(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddEdge(Edge{From: "a", To: "b"})
	g.AddEdge(Edge{From: "a", To: "b"})

	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if g.OutDegree("a") != 2 {
		t.Errorf("OutDegree(a) = %d, want 2", g.OutDegree("a"))
	}
}

func TestEnsureNode_Idempotent(t *testing.T) {
	g := New()
	n1 := g.EnsureNode("a")
	n1.Attrs.SetLabel("mul")
	n2 := g.EnsureNode("a")

	if n1 != n2 {
		t.Errorf("EnsureNode returned different pointers for same ID")
	}
	if !n2.Attrs.HasLabel || n2.Attrs.Label != "mul" {
		t.Errorf("attributes lost on second EnsureNode: %+v", n2.Attrs)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
}

func TestNodes_InsertionOrder(t *testing.T) {
	g := New()
	for _, id := range []string{"c", "a", "b"} {
		g.AddNode(Node{ID: id})
	}

	got := g.Nodes()
	want := []string{"c", "a", "b"}
	for i, n := range got {
		if n.ID != want[i] {
			t.Errorf("Nodes()[%d] = %s, want %s", i, n.ID, want[i])
		}
	}
}

func TestAttrs_Clone(t *testing.T) {
	a := Attrs{Color: "red", Extra: map[string]string{"style": "dashed"}}
	a.SetLabel("2")

	b := a.Clone()
	b.Extra["style"] = "bold"

	if a.Extra["style"] != "dashed" {
		t.Errorf("Clone shares Extra map: original mutated to %q", a.Extra["style"])
	}
	if !b.HasLabel || b.Label != "2" {
		t.Errorf("Clone dropped label: %+v", b)
	}
}

func TestAttrs_IsConstraintFalse(t *testing.T) {
	tests := []struct {
		constraint string
		want       bool
	}{
		{"false", true},
		{"true", false},
		{"", false},
	}
	for _, tt := range tests {
		a := Attrs{Constraint: tt.constraint}
		if got := a.IsConstraintFalse(); got != tt.want {
			t.Errorf("IsConstraintFalse(%q) = %v, want %v", tt.constraint, got, tt.want)
		}
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	g := New()
	na := Node{ID: "a"}
	na.Attrs.SetLabel("add")
	g.AddNode(na)
	g.AddNode(Node{ID: "b"})

	e := Edge{From: "a", To: "b", Attrs: Attrs{Constraint: "false", Color: "red", Extra: map[string]string{"weight": "3"}}}
	e.Attrs.SetLabel("1")
	g.AddEdge(e)

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}

	if back.NodeCount() != 2 || back.EdgeCount() != 1 {
		t.Fatalf("round trip: %d nodes, %d edges, want 2, 1", back.NodeCount(), back.EdgeCount())
	}

	n, _ := back.Node("a")
	if !n.Attrs.HasLabel || n.Attrs.Label != "add" {
		t.Errorf("node label lost: %+v", n.Attrs)
	}

	got := back.Edges()[0]
	if got.Attrs.Constraint != "false" || got.Attrs.Color != "red" || got.Attrs.Label != "1" {
		t.Errorf("edge attrs lost: %+v", got.Attrs)
	}
	if got.Attrs.Extra["weight"] != "3" {
		t.Errorf("extra attr lost: %+v", got.Attrs.Extra)
	}
}

func TestMarshal_AbsentLabelStaysAbsent(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddEdge(Edge{From: "a", To: "b"})

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}

	if back.Edges()[0].Attrs.HasLabel {
		t.Errorf("absent label became present after round trip")
	}
}
