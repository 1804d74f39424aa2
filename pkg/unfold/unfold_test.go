package unfold

import (
	"fmt"
	"testing"

	"github.com/foldlab/cyclefold/pkg/errors"
	"github.com/foldlab/cyclefold/pkg/graph"
)

// buildGraph constructs a digraph from node IDs and attributed edges.
func buildGraph(t *testing.T, nodes []string, edges []graph.Edge) *graph.Digraph {
	t.Helper()
	g := graph.New()
	for _, id := range nodes {
		if err := g.AddNode(graph.Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s) = %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s->%s) = %v", e.From, e.To, err)
		}
	}
	return g
}

func labeledEdge(from, to, label string) graph.Edge {
	e := graph.Edge{From: from, To: to}
	e.Attrs.SetLabel(label)
	return e
}

func edgeSet(g *graph.Digraph) map[string]graph.Edge {
	m := make(map[string]graph.Edge)
	for _, e := range g.Edges() {
		m[e.From+"->"+e.To] = e
	}
	return m
}

func TestUnfold_RejectsInvalidFactor(t *testing.T) {
	g := buildGraph(t, []string{"a"}, nil)

	for _, k := range []int{0, -1, -7} {
		_, err := Unfold(g, k, LabelVariant())
		if !errors.Is(err, errors.ErrCodeInvalidFactor) {
			t.Errorf("Unfold(k=%d) = %v, want INVALID_FACTOR", k, err)
		}
	}
}

func TestUnfold_NodeCount(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"}, nil)

	for k := 1; k <= 4; k++ {
		out, err := Unfold(g, k, LabelVariant())
		if err != nil {
			t.Fatalf("Unfold(k=%d) = %v", k, err)
		}
		if out.NodeCount() != 3*k {
			t.Errorf("Unfold(k=%d) node count = %d, want %d", k, out.NodeCount(), 3*k)
		}
	}
}

func TestUnfold_CollapsesTemporalSuffixes(t *testing.T) {
	// a_0 and a_1 are two temporal copies of the same base entity; unfolding
	// with k=2 must produce exactly 2 copies of base "a", not 4 nodes.
	g := buildGraph(t, []string{"a_0", "a_1"}, nil)

	out, err := Unfold(g, 2, LabelVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}
	if out.NodeCount() != 2 {
		t.Errorf("node count = %d, want 2", out.NodeCount())
	}
	for _, id := range []string{"a_0", "a_1"} {
		if _, ok := out.Node(id); !ok {
			t.Errorf("node %s missing from unfolded graph", id)
		}
	}
}

func TestUnfold_ZeroDeltaStaysInCycle(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, []graph.Edge{{From: "a", To: "b"}})

	out, err := Unfold(g, 3, LabelVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}

	edges := edgeSet(out)
	for c := 0; c < 3; c++ {
		key := fmt.Sprintf("a_%d->b_%d", c, c)
		if _, ok := edges[key]; !ok {
			t.Errorf("missing same-cycle edge %s", key)
		}
	}
}

func TestUnfold_DeltaWrapsModuloK(t *testing.T) {
	tests := []struct {
		delta int
		k     int
	}{
		{1, 2},
		{2, 3},
		{3, 2},
		{5, 4},
	}
	for _, tt := range tests {
		g := buildGraph(t, []string{"a", "b"},
			[]graph.Edge{labeledEdge("a", "b", fmt.Sprintf("%d", tt.delta))})

		out, err := Unfold(g, tt.k, LabelVariant())
		if err != nil {
			t.Fatalf("Unfold(delta=%d, k=%d) = %v", tt.delta, tt.k, err)
		}

		edges := edgeSet(out)
		for c := 0; c < tt.k; c++ {
			key := fmt.Sprintf("a_%d->b_%d", c, (c+tt.delta)%tt.k)
			if _, ok := edges[key]; !ok {
				t.Errorf("delta=%d k=%d: missing edge %s", tt.delta, tt.k, key)
			}
		}
	}
}

func TestUnfold_FactorOneMapsEverythingToCycleZero(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, []graph.Edge{labeledEdge("a", "b", "7")})

	out, err := Unfold(g, 1, LabelVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}

	if out.NodeCount() != 2 || out.EdgeCount() != 1 {
		t.Fatalf("got %d nodes, %d edges, want 2, 1", out.NodeCount(), out.EdgeCount())
	}
	if _, ok := edgeSet(out)["a_0->b_0"]; !ok {
		t.Errorf("k=1: edge did not map to cycle 0: %v", out.Edges())
	}
}

func TestUnfold_EndToEndLabelVariant(t *testing.T) {
	// Input {A, B}, A -> B [label="1"], k=2 ⇒ nodes {A_0, A_1, B_0, B_1},
	// edges A_0->B_1 and A_1->B_0, both labeled "1".
	g := buildGraph(t, []string{"A", "B"}, []graph.Edge{labeledEdge("A", "B", `"1"`)})

	out, err := Unfold(g, 2, LabelVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}

	for _, id := range []string{"A_0", "A_1", "B_0", "B_1"} {
		if _, ok := out.Node(id); !ok {
			t.Errorf("missing node %s", id)
		}
	}

	edges := edgeSet(out)
	if len(edges) != 2 {
		t.Fatalf("edge count = %d, want 2", len(edges))
	}
	for _, key := range []string{"A_0->B_1", "A_1->B_0"} {
		e, ok := edges[key]
		if !ok {
			t.Errorf("missing edge %s", key)
			continue
		}
		if !e.Attrs.HasLabel || e.Attrs.Label != `"1"` {
			t.Errorf("edge %s label = %q, want %q", key, e.Attrs.Label, `"1"`)
		}
	}
}

func TestUnfold_LabelVariantKeepsAttrsOnEveryInstance(t *testing.T) {
	e := labeledEdge("a", "b", "2")
	e.Attrs.Color = "red"
	e.Attrs.Constraint = "true"
	g := buildGraph(t, []string{"a", "b"}, []graph.Edge{e})

	out, err := Unfold(g, 3, LabelVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}

	for _, ue := range out.Edges() {
		if ue.Attrs.Color != "red" || ue.Attrs.Constraint != "true" {
			t.Errorf("edge %s->%s lost attrs: %+v", ue.From, ue.To, ue.Attrs)
		}
		if !ue.Attrs.HasLabel || ue.Attrs.Label != `"2"` {
			t.Errorf("edge %s->%s label = %q, want normalized %q", ue.From, ue.To, ue.Attrs.Label, `"2"`)
		}
	}
}

func TestUnfold_InvalidLabel(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, []graph.Edge{labeledEdge("a", "b", "abc")})

	_, err := Unfold(g, 2, LabelVariant())
	if !errors.Is(err, errors.ErrCodeInvalidLabel) {
		t.Errorf("Unfold(label=abc) = %v, want INVALID_LABEL", err)
	}
}

func TestUnfold_NegativeDelta(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, []graph.Edge{labeledEdge("a", "b", `"-2"`)})

	_, err := Unfold(g, 2, LabelVariant())
	if !errors.Is(err, errors.ErrCodeNegativeDelta) {
		t.Errorf("Unfold(label=-2) = %v, want NEGATIVE_DELTA", err)
	}
}

func TestUnfold_EmptyLabelIsInvalid(t *testing.T) {
	// An absent label means delta zero, but a present empty label is a
	// malformed delay, not a default.
	g := buildGraph(t, []string{"a", "b"}, []graph.Edge{labeledEdge("a", "b", "")})

	_, err := Unfold(g, 2, LabelVariant())
	if !errors.Is(err, errors.ErrCodeInvalidLabel) {
		t.Errorf("Unfold(label=\"\") = %v, want INVALID_LABEL", err)
	}
}

func TestUnfold_EndToEndConstraintVariant(t *testing.T) {
	// Input X -> Y [constraint=false], k=3 ⇒ X_0->Y_1 and X_1->Y_2 stripped,
	// X_2->Y_0 retains the attributes.
	e := graph.Edge{From: "X", To: "Y", Attrs: graph.Attrs{Constraint: "false", Color: "red"}}
	e.Attrs.SetLabel("1")
	g := buildGraph(t, []string{"X", "Y"}, []graph.Edge{e})

	out, err := Unfold(g, 3, ConstraintVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}

	edges := edgeSet(out)
	if len(edges) != 3 {
		t.Fatalf("edge count = %d, want 3", len(edges))
	}

	for _, key := range []string{"X_0->Y_1", "X_1->Y_2"} {
		ue, ok := edges[key]
		if !ok {
			t.Fatalf("missing edge %s", key)
		}
		if ue.Attrs.HasLabel || ue.Attrs.Color != "" || ue.Attrs.Constraint != "" {
			t.Errorf("edge %s should be bare, got %+v", key, ue.Attrs)
		}
	}

	wrap, ok := edges["X_2->Y_0"]
	if !ok {
		t.Fatalf("missing wraparound edge X_2->Y_0")
	}
	if wrap.Attrs.Constraint != "false" || wrap.Attrs.Color != "red" {
		t.Errorf("wraparound edge lost attrs: %+v", wrap.Attrs)
	}
	if !wrap.Attrs.HasLabel || wrap.Attrs.Label != `"1"` {
		t.Errorf("wraparound label = %q, want %q", wrap.Attrs.Label, `"1"`)
	}
}

func TestUnfold_ConstraintVariantRetainsExactlyOnce(t *testing.T) {
	e := graph.Edge{From: "X", To: "Y", Attrs: graph.Attrs{Constraint: "false"}}
	g := buildGraph(t, []string{"X", "Y"}, []graph.Edge{e})

	out, err := Unfold(g, 3, ConstraintVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}

	retained := 0
	for _, ue := range out.Edges() {
		if ue.Attrs.Constraint != "" {
			retained++
		}
	}
	if retained != 1 {
		t.Errorf("constraint attr retained on %d of %d instances, want exactly 1", retained, out.EdgeCount())
	}
}

func TestUnfold_ConstraintVariantFactorOne(t *testing.T) {
	// With k=1 the wraparound instance is the only instance, so the
	// attributes survive.
	e := graph.Edge{From: "X", To: "Y", Attrs: graph.Attrs{Constraint: "false"}}
	g := buildGraph(t, []string{"X", "Y"}, []graph.Edge{e})

	out, err := Unfold(g, 1, ConstraintVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}
	edges := out.Edges()
	if len(edges) != 1 {
		t.Fatalf("edge count = %d, want 1", len(edges))
	}
	if edges[0].Attrs.Constraint != "false" {
		t.Errorf("k=1 wraparound lost constraint attr: %+v", edges[0].Attrs)
	}
}

func TestUnfold_ConstraintVariantPlainEdge(t *testing.T) {
	e := graph.Edge{From: "a", To: "b", Attrs: graph.Attrs{Constraint: "true", Color: "black"}}
	g := buildGraph(t, []string{"a", "b"}, []graph.Edge{e})

	out, err := Unfold(g, 2, ConstraintVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}

	edges := edgeSet(out)
	for c := 0; c < 2; c++ {
		key := fmt.Sprintf("a_%d->b_%d", c, c)
		ue, ok := edges[key]
		if !ok {
			t.Fatalf("missing edge %s", key)
		}
		if ue.Attrs.Constraint != "true" || ue.Attrs.Color != "black" {
			t.Errorf("plain edge %s lost attrs: %+v", key, ue.Attrs)
		}
	}
}

func TestUnfold_ConstraintVariantCopiesNodeAttrs(t *testing.T) {
	g := graph.New()
	n := graph.Node{ID: "n1"}
	n.Attrs.SetLabel("mul")
	g.AddNode(n)

	out, err := Unfold(g, 2, ConstraintVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}

	for _, id := range []string{"n1_0", "n1_1"} {
		copyNode, ok := out.Node(id)
		if !ok {
			t.Fatalf("missing node %s", id)
		}
		if !copyNode.Attrs.HasLabel || copyNode.Attrs.Label != "mul" {
			t.Errorf("node %s attrs = %+v, want label mul", id, copyNode.Attrs)
		}
	}
}

func TestUnfold_LabelVariantDoesNotCopyNodeAttrs(t *testing.T) {
	g := graph.New()
	n := graph.Node{ID: "n1"}
	n.Attrs.SetLabel("mul")
	g.AddNode(n)

	out, err := Unfold(g, 2, LabelVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}

	copyNode, ok := out.Node("n1_0")
	if !ok {
		t.Fatalf("missing node n1_0")
	}
	if copyNode.Attrs.HasLabel {
		t.Errorf("label variant copied node attrs: %+v", copyNode.Attrs)
	}
}

func TestUnfold_ConstraintVariantPassesExtrasThrough(t *testing.T) {
	// Unrecognized attributes are not scheduling attributes; they survive
	// even on stripped instances.
	e := graph.Edge{From: "X", To: "Y", Attrs: graph.Attrs{
		Constraint: "false",
		Extra:      map[string]string{"style": "dashed"},
	}}
	g := buildGraph(t, []string{"X", "Y"}, []graph.Edge{e})

	out, err := Unfold(g, 3, ConstraintVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}
	for _, ue := range out.Edges() {
		if ue.Attrs.Extra["style"] != "dashed" {
			t.Errorf("edge %s->%s lost extra attr: %+v", ue.From, ue.To, ue.Attrs.Extra)
		}
	}
}

func TestEdgeAttrs_InvariantViolation(t *testing.T) {
	// A non-constraint edge landing in a different cycle is a structural
	// should-never-happen; the rewriter reports it as a hard fault rather
	// than producing a silently wrong graph.
	e := graph.Edge{From: "a", To: "b"}

	_, err := edgeAttrs(e, DeltaConstraint, map[[2]string]bool{}, 0, 1, 3)
	if !errors.Is(err, errors.ErrCodeInvariant) {
		t.Errorf("edgeAttrs(crossing non-constraint edge) = %v, want INVARIANT_VIOLATION", err)
	}
}

func TestNormalizeLabel_Idempotent(t *testing.T) {
	inputs := []string{`1`, `"1"`, `""`, `a"b`, `"nested "quotes""`}
	for _, in := range inputs {
		once := graph.NormalizeLabel(in)
		twice := graph.NormalizeLabel(once)
		if once != twice {
			t.Errorf("NormalizeLabel not idempotent for %q: %q != %q", in, once, twice)
		}
	}
	if got := graph.NormalizeLabel(`1`); got != `"1"` {
		t.Errorf("NormalizeLabel(1) = %s, want \"1\"", got)
	}
}

func TestUnfold_NoSharedStateBetweenCalls(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, []graph.Edge{labeledEdge("a", "b", "1")})

	first, err := Unfold(g, 2, LabelVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}
	second, err := Unfold(g, 3, LabelVariant())
	if err != nil {
		t.Fatalf("Unfold() = %v", err)
	}

	if first.NodeCount() != 4 || second.NodeCount() != 6 {
		t.Errorf("counts = %d, %d, want 4, 6", first.NodeCount(), second.NodeCount())
	}
	// Input graph untouched.
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("input graph mutated: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}
