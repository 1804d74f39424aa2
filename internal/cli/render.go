package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foldlab/cyclefold/pkg/dot"
	"github.com/foldlab/cyclefold/pkg/pipeline"
)

// renderCommand creates the render command for producing images from graph
// text, typically an unfolded output.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "render [graph.dot]",
		Short: "Render graph text to an SVG or PNG image",
		Long: `Render graph text to an SVG or PNG image via Graphviz.

Handy for eyeballing an unfolded graph: wraparound constraint edges keep
their color, so the k-1 → 0 backedges stand out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], format, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "image format: svg, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input with image extension)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, format, output string) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	var img []byte
	switch format {
	case pipeline.FormatSVG:
		img, err = dot.RenderSVG(ctx, src)
	case pipeline.FormatPNG:
		img, err = dot.RenderPNG(ctx, src)
	default:
		return fmt.Errorf("invalid image format: %q (must be svg or png)", format)
	}
	if err != nil {
		return err
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	if err := os.WriteFile(output, img, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Rendered %s", input)
	printFile(output)
	return nil
}
