// Package pipeline provides the core unfolding pipeline for cyclefold.
//
// This package implements the complete read → unfold → write pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read and parse the input graph text
//  2. Unfold: Expand the graph into k temporal copies
//  3. Emit: Encode the result in the requested output formats
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    InputPath: "loop.dot",
//	    K:         3,
//	    Policy:    "constraint",
//	    Formats:   []string{"dot"},
//	}
//	result, err := runner.Process(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
package pipeline

import (
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/foldlab/cyclefold/pkg/errors"
	"github.com/foldlab/cyclefold/pkg/unfold"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatJSON: true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// Policy constants for the delta-derivation policy.
const (
	PolicyLabel      = "label"
	PolicyConstraint = "constraint"
)

// DefaultPolicy is the policy used when none is configured.
const DefaultPolicy = PolicyLabel

// Options contains all configuration for one unfolding run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// InputPath is the graph text file to unfold.
	InputPath string `json:"input_path"`

	// K is the unfolding factor (number of temporal copies).
	K int `json:"k"`

	// Policy selects the delta-derivation convention: "label" or "constraint".
	Policy string `json:"policy,omitempty"`

	// Separator joins base names with cycle indices. Defaults to "_".
	Separator string `json:"separator,omitempty"`

	// OutputDir is where artifacts are written. Defaults to the input's
	// directory.
	OutputDir string `json:"output_dir,omitempty"`

	// Formats lists the artifact formats to emit. Defaults to ["dot"].
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses the cache and recomputes all artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Artifacts contains encoded outputs keyed by format.
	Artifacts map[string][]byte

	// OutputPaths lists the files written, keyed by format. Empty when the
	// run did not write to disk.
	OutputPaths map[string]string

	// InputHash is the content hash of the input graph text.
	InputHash string

	// Stats contains size and timing information.
	Stats Stats

	// CacheHit reports whether every artifact came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	InputNodes  int
	InputEdges  int
	OutputNodes int
	OutputEdges int
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: dot, json, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParsePolicy maps a policy name to the engine's option preset.
func ParsePolicy(policy string) (unfold.Options, error) {
	switch policy {
	case PolicyLabel:
		return unfold.LabelVariant(), nil
	case PolicyConstraint:
		return unfold.ConstraintVariant(), nil
	default:
		return unfold.Options{}, errors.New(errors.ErrCodeInvalidPolicy,
			"invalid policy: %q (must be one of: label, constraint)", policy)
	}
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.K < 1 {
		return errors.New(errors.ErrCodeInvalidFactor,
			"unfolding factor must be a positive integer, got %d", o.K)
	}
	if o.Policy == "" {
		o.Policy = DefaultPolicy
	}
	if _, err := ParsePolicy(o.Policy); err != nil {
		return err
	}
	if o.Separator == "" {
		o.Separator = unfold.DefaultSeparator
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDOT}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.OutputDir == "" && o.InputPath != "" {
		o.OutputDir = filepath.Dir(o.InputPath)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// EngineOptions returns the unfold.Options for this run. Options must have
// been validated first.
func (o *Options) EngineOptions() unfold.Options {
	engine, _ := ParsePolicy(o.Policy)
	engine.Separator = o.Separator
	return engine
}
