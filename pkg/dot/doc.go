// Package dot reads and writes dependency graphs in a restricted
// attributed-digraph text format, and renders them to images through
// Graphviz. Decode and Encode are not byte-inverse: Encode emits a fixed
// canonical layout regardless of how the input was formatted.
package dot
