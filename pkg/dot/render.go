package dot

import (
	"bytes"
	"context"

	"github.com/goccy/go-graphviz"

	"github.com/foldlab/cyclefold/pkg/errors"
)

// RenderSVG lays out a graph description with Graphviz and returns SVG bytes.
func RenderSVG(ctx context.Context, src []byte) ([]byte, error) {
	return render(ctx, src, graphviz.SVG)
}

// RenderPNG lays out a graph description with Graphviz and returns PNG bytes.
func RenderPNG(ctx context.Context, src []byte) ([]byte, error) {
	return render(ctx, src, graphviz.PNG)
}

func render(ctx context.Context, src []byte, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "initialize graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse graph for rendering")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}
