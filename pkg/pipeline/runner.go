package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/foldlab/cyclefold/pkg/cache"
	"github.com/foldlab/cyclefold/pkg/dot"
	"github.com/foldlab/cyclefold/pkg/errors"
	"github.com/foldlab/cyclefold/pkg/graph"
	"github.com/foldlab/cyclefold/pkg/unfold"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Logger: logger,
	}
}

// Process runs the complete read → unfold → write pipeline.
//
// The input file is read from opts.InputPath, the unfolded graph is encoded
// in every requested format, and each artifact is written to opts.OutputDir
// under the input's stem with an `_unfold<k>` suffix. No file is written
// until every artifact has been produced.
func (r *Runner) Process(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	src, err := readInput(opts.InputPath)
	if err != nil {
		return nil, err
	}

	result, err := r.Execute(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	stem := OutputStem(opts.InputPath, opts.K)
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create output directory %s", opts.OutputDir)
	}

	result.OutputPaths = make(map[string]string, len(result.Artifacts))
	for _, format := range opts.Formats {
		path := filepath.Join(opts.OutputDir, stem+"."+format)
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s artifact", format)
		}
		result.OutputPaths[format] = path
		opts.Logger.Info("wrote artifact", "format", format, "path", path)
	}

	return result, nil
}

// Execute runs the unfolding pipeline on in-memory graph text without
// touching the filesystem. The API server uses this directly.
func (r *Runner) Execute(ctx context.Context, src []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
		InputHash: cache.Hash(src),
	}

	// Try to serve every format from cache before doing any work.
	if !opts.Refresh {
		allCached := true
		for _, format := range opts.Formats {
			key := cache.ArtifactKey(result.InputHash, opts.K, opts.Policy, opts.Separator, format)
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				allCached = false
				break
			}
			result.Artifacts[format] = data
		}
		if allCached && len(result.Artifacts) == len(opts.Formats) {
			result.CacheHit = true
			opts.Logger.Debug("cache hit", "input_hash", result.InputHash, "k", opts.K)
			return result, nil
		}
		clear(result.Artifacts)
	}

	in, err := dot.Decode(src)
	if err != nil {
		return nil, err
	}
	result.Stats.InputNodes = in.NodeCount()
	result.Stats.InputEdges = in.EdgeCount()

	out, err := unfold.Unfold(in, opts.K, opts.EngineOptions())
	if err != nil {
		return nil, err
	}
	result.Stats.OutputNodes = out.NodeCount()
	result.Stats.OutputEdges = out.EdgeCount()

	opts.Logger.Info("unfolded graph",
		"k", opts.K,
		"policy", opts.Policy,
		"nodes", out.NodeCount(),
		"edges", out.EdgeCount())

	for _, format := range opts.Formats {
		data, err := encodeArtifact(ctx, out, format)
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = data

		key := cache.ArtifactKey(result.InputHash, opts.K, opts.Policy, opts.Separator, format)
		_ = r.Cache.Set(ctx, key, data, cache.DefaultTTL)
	}

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// encodeArtifact serializes the unfolded graph in one output format.
func encodeArtifact(ctx context.Context, g *graph.Digraph, format string) ([]byte, error) {
	switch format {
	case FormatDOT:
		return dot.Encode(g), nil
	case FormatJSON:
		return graph.Marshal(g)
	case FormatSVG:
		return dot.RenderSVG(ctx, dot.Encode(g))
	case FormatPNG:
		return dot.RenderPNG(ctx, dot.Encode(g))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}

// readInput loads the graph text, mapping a missing file to FILE_NOT_FOUND.
func readInput(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no input file given")
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "input file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read input file %s", path)
	}
	return data, nil
}

// unfoldSuffixRe matches the unfolding suffixes this tool (and its
// predecessors) append to output stems, so repeated runs do not stack them.
var unfoldSuffixRe = regexp.MustCompile(`_unfold(?:ingFactor_)?\d+$`)

// OutputStem derives the output file stem for an input path: the input's
// stem with any existing unfolding suffix collapsed and `_unfold<k>`
// appended.
func OutputStem(inputPath string, k int) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	for {
		trimmed := unfoldSuffixRe.ReplaceAllString(stem, "")
		if trimmed == stem {
			break
		}
		stem = trimmed
	}
	return fmt.Sprintf("%s_unfold%d", stem, k)
}
