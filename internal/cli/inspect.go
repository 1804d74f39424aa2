package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/foldlab/cyclefold/pkg/dot"
	"github.com/foldlab/cyclefold/pkg/graph"
)

// inspectCommand creates the inspect command for examining a graph before
// unfolding it.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [input.dot]",
		Short: "Show structure and delay statistics of a periodic graph",
		Long: `Show structure and delay statistics of a periodic graph.

Reports node and edge counts, the number of constraint edges
(constraint=false), and a histogram of integer delays found in edge
labels. Useful for picking the right --policy before unfolding.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0])
		},
	}
}

func (c *CLI) runInspect(input string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	g, err := dot.Decode(data)
	if err != nil {
		return err
	}

	constraintEdges := 0
	deltas := make(map[int]int)
	unparsable := 0
	for _, e := range g.Edges() {
		if e.Attrs.IsConstraintFalse() {
			constraintEdges++
		}
		if e.Attrs.HasLabel {
			if d, err := strconv.Atoi(graph.UnquoteValue(e.Attrs.Label)); err == nil {
				deltas[d]++
			} else {
				unparsable++
			}
		}
	}

	fmt.Println(StyleTitle.Render(input))
	printKeyValue("nodes", strconv.Itoa(g.NodeCount()))
	printKeyValue("edges", strconv.Itoa(g.EdgeCount()))
	printKeyValue("constraint edges", strconv.Itoa(constraintEdges))

	if len(deltas) > 0 {
		keys := make([]int, 0, len(deltas))
		for d := range deltas {
			keys = append(keys, d)
		}
		sort.Ints(keys)
		for _, d := range keys {
			printKeyValue(fmt.Sprintf("delay %d", d), strconv.Itoa(deltas[d]))
		}
	}
	if unparsable > 0 {
		printDetail("%d edge label(s) do not parse as integers; the label policy would reject this graph", unparsable)
	}
	return nil
}
