// Package unfold implements periodic dependency-graph unfolding.
//
// Unfolding replicates every node of a periodic graph k times, once per
// scheduling period, and rewires each edge into the copy selected by the
// number of periods its dependency spans (modulo k). The result exposes
// inter-iteration dependencies as ordinary edges over a finite window of k
// iterations, which is what a downstream scheduler consumes.
//
// Two encoding conventions for the period span exist in the wild and are
// supported as explicit policies (never inferred from the data): an integer
// delay in the edge's label attribute ([DeltaLabel]), or a constraint=false
// flag marking a single-period wraparound edge ([DeltaConstraint]). Each
// pairs with its own base-name derivation; [LabelVariant] and
// [ConstraintVariant] bundle the conventional pairings.
package unfold
