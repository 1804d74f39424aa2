package unfold

import (
	"fmt"
	"strconv"

	"github.com/foldlab/cyclefold/pkg/errors"
	"github.com/foldlab/cyclefold/pkg/graph"
)

// DefaultSeparator joins a base name with its cycle index in generated
// identifiers and splits temporal suffixes off input identifiers.
const DefaultSeparator = "_"

// DeltaPolicy selects how the number of periods an edge crosses is derived.
// The two policies come from two incompatible conventions for encoding
// inter-iteration dependencies and must never be mixed within one run.
type DeltaPolicy int

const (
	// DeltaLabel reads an explicit integer delay from the edge's label
	// attribute. A missing label means delay zero. A label that does not
	// parse as an integer is an INVALID_LABEL error; a negative value is a
	// NEGATIVE_DELTA error.
	DeltaLabel DeltaPolicy = iota

	// DeltaConstraint derives the delay from the constraint attribute:
	// edges carrying constraint=false are period-crossing constraint edges
	// with delay 1, everything else has delay 0. The value "false" marking a
	// constraint edge is counter-intuitive but deliberate: it tells layout
	// tools not to use the wraparound edge for ranking.
	DeltaConstraint
)

// String returns the policy name used in flags and config files.
func (p DeltaPolicy) String() string {
	switch p {
	case DeltaConstraint:
		return "constraint"
	default:
		return "label"
	}
}

// Options configures an unfolding run. The zero value is the label variant
// with the default separator.
type Options struct {
	// Delta selects the delta-derivation policy.
	Delta DeltaPolicy

	// Identity selects how base names are derived from node identifiers.
	Identity IdentityPolicy

	// Separator joins base names with cycle indices. Defaults to "_".
	Separator string

	// CopyNodeAttrs copies each original node's attributes onto every
	// generated copy. Node attributes are period-independent by convention,
	// so the copies are identical.
	CopyNodeAttrs bool
}

// LabelVariant returns the options matching the explicit-delay convention:
// integer delays in edge labels, trailing-index identity, bare node copies.
func LabelVariant() Options {
	return Options{
		Delta:     DeltaLabel,
		Identity:  IdentityTrailingIndex,
		Separator: DefaultSeparator,
	}
}

// ConstraintVariant returns the options matching the constraint-flag
// convention: constraint=false marks a delay-1 wraparound edge,
// first-segment identity, node attributes preserved.
func ConstraintVariant() Options {
	return Options{
		Delta:         DeltaConstraint,
		Identity:      IdentityFirstSegment,
		Separator:     DefaultSeparator,
		CopyNodeAttrs: true,
	}
}

// Unfold expands a periodic dependency graph into k temporal copies.
//
// Every original node yields k copies named base<sep>cycle for cycle in
// [0,k). Every original edge yields k copies, one per source cycle c, with
// the destination rewired to cycle (c + delta) mod k where delta is derived
// per the configured policy. Under DeltaConstraint, the scheduling attributes
// of a constraint edge survive only on the wraparound instance (c == k-1,
// destination cycle 0); all other instances are stripped to bare structural
// edges, and a non-constraint edge that would cross a cycle boundary is an
// INVARIANT_VIOLATION.
//
// Unfold never returns a partial graph: all validation happens before the
// result is handed back, and a failed call returns nil.
func Unfold(g *graph.Digraph, k int, opts Options) (*graph.Digraph, error) {
	if k < 1 {
		return nil, errors.New(errors.ErrCodeInvalidFactor, "unfolding factor must be a positive integer, got %d", k)
	}
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}

	// Constraint edges are detected once, from the original graph, before any
	// rewriting happens.
	var constraintEdges map[[2]string]bool
	if opts.Delta == DeltaConstraint {
		constraintEdges = detectConstraintEdges(g)
	}

	out := graph.New()

	for cycle := 0; cycle < k; cycle++ {
		for _, n := range g.Nodes() {
			base := BaseName(opts.Identity, n.ID, opts.Separator)
			copyNode := out.EnsureNode(copyName(base, cycle, opts.Separator))
			if opts.CopyNodeAttrs {
				copyNode.Attrs = n.Attrs.Clone()
			}
		}
	}

	for cycle := 0; cycle < k; cycle++ {
		for _, e := range g.Edges() {
			delta, err := edgeDelta(e, opts.Delta, constraintEdges)
			if err != nil {
				return nil, err
			}
			dstCycle := (cycle + delta) % k

			attrs, err := edgeAttrs(e, opts.Delta, constraintEdges, cycle, dstCycle, k)
			if err != nil {
				return nil, err
			}

			src := copyName(BaseName(opts.Identity, e.From, opts.Separator), cycle, opts.Separator)
			dst := copyName(BaseName(opts.Identity, e.To, opts.Separator), dstCycle, opts.Separator)
			if err := out.AddEdge(graph.Edge{From: src, To: dst, Attrs: attrs}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "emit edge %s->%s", src, dst)
			}
		}
	}

	return out, nil
}

// detectConstraintEdges returns the set of node pairs connected by at least
// one edge whose constraint attribute equals "false".
func detectConstraintEdges(g *graph.Digraph) map[[2]string]bool {
	set := make(map[[2]string]bool)
	for _, e := range g.Edges() {
		if e.Attrs.IsConstraintFalse() {
			set[[2]string{e.From, e.To}] = true
		}
	}
	return set
}

// edgeDelta derives the number of periods the edge crosses.
func edgeDelta(e graph.Edge, policy DeltaPolicy, constraintEdges map[[2]string]bool) (int, error) {
	if policy == DeltaConstraint {
		if constraintEdges[[2]string{e.From, e.To}] {
			return 1, nil
		}
		return 0, nil
	}

	if !e.Attrs.HasLabel {
		return 0, nil
	}
	delta, err := strconv.Atoi(graph.UnquoteValue(e.Attrs.Label))
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidLabel, "invalid label value %q on edge %s->%s", graph.UnquoteValue(e.Attrs.Label), e.From, e.To)
	}
	if delta < 0 {
		return 0, errors.New(errors.ErrCodeNegativeDelta, "negative delta %d on edge %s->%s", delta, e.From, e.To)
	}
	return delta, nil
}

// edgeAttrs builds the attribute set for one generated edge instance,
// applying the retention rule and label quote normalization.
func edgeAttrs(e graph.Edge, policy DeltaPolicy, constraintEdges map[[2]string]bool, cycle, dstCycle, k int) (graph.Attrs, error) {
	attrs := e.Attrs.Clone()

	if policy == DeltaConstraint {
		if constraintEdges[[2]string{e.From, e.To}] {
			// Scheduling attributes describe the periodic relationship, which
			// exists once per full unfolding cycle: only the wraparound
			// instance keeps them.
			if !(cycle == k-1 && dstCycle == 0) {
				attrs.Label = ""
				attrs.HasLabel = false
				attrs.Color = ""
				attrs.Constraint = ""
			}
		} else if dstCycle != cycle {
			return graph.Attrs{}, errors.New(errors.ErrCodeInvariant,
				"non-constraint edge %s->%s crossed cycle boundary (%d -> %d)", e.From, e.To, cycle, dstCycle)
		}
	}

	if attrs.HasLabel {
		attrs.Label = graph.NormalizeLabel(attrs.Label)
	}
	return attrs, nil
}

// copyName names the cycle'th copy of a base entity.
func copyName(base string, cycle int, sep string) string {
	return fmt.Sprintf("%s%s%d", base, sep, cycle)
}
