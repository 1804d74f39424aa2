package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foldlab/cyclefold/pkg/pipeline"
)

// unfoldCommand creates the unfold command, the tool's main operation.
func (c *CLI) unfoldCommand() *cobra.Command {
	var (
		formatsStr string
		noCache    bool
	)
	opts := pipeline.Options{
		Policy:    c.Config.Policy,
		Separator: c.Config.Separator,
		OutputDir: c.Config.OutputDir,
	}

	cmd := &cobra.Command{
		Use:   "unfold [input.dot]",
		Short: "Unfold a periodic dependency graph into k temporal copies",
		Long: `Unfold a periodic dependency graph into k temporal copies.

Every node is replicated once per scheduling period and every edge is
rewired into the copy selected by its delay, so inter-iteration
dependencies become ordinary edges over a window of k iterations.

Two delay conventions are supported via --policy:

  label       integer delay in the edge's label attribute
  constraint  constraint=false marks a one-period wraparound edge

The output file takes the input's name with an _unfold<k> suffix;
rerunning on an already unfolded file replaces the suffix instead of
stacking another one. Results are cached locally for faster reruns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.InputPath = args[0]
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runUnfold(cmd.Context(), opts, noCache)
		},
	}

	cmd.Flags().IntVarP(&opts.K, "factor", "k", 0, "unfolding factor (required, positive integer)")
	cmd.Flags().StringVar(&opts.Policy, "policy", opts.Policy, "delay policy: label, constraint")
	cmd.Flags().StringVar(&opts.Separator, "separator", opts.Separator, "identifier separator")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", opts.OutputDir, "output directory (default: input's directory)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): dot (default), json, svg, png (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")
	_ = cmd.MarkFlagRequired("factor")

	return cmd
}

// runUnfold executes the pipeline and reports the written artifacts.
func (c *CLI) runUnfold(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Unfolding %s (k=%d)...", opts.InputPath, opts.K))
	spinner.Start()

	result, err := runner.Process(ctx, opts)
	if err != nil {
		spinner.StopWithError("Unfolding failed")
		return err
	}
	spinner.Stop()

	printSuccess("Unfolded %s", opts.InputPath)
	printStats(result.Stats.OutputNodes, result.Stats.OutputEdges, result.CacheHit)
	for _, format := range opts.Formats {
		printFile(result.OutputPaths[format])
	}
	return nil
}
