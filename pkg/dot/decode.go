package dot

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/foldlab/cyclefold/pkg/errors"
	"github.com/foldlab/cyclefold/pkg/graph"
)

// headerRe matches the opening line of a digraph description.
var headerRe = regexp.MustCompile(`^(strict\s+)?digraph(\s+("[^"]*"|[A-Za-z0-9_.]+))?\s*\{$`)

// Decode parses an attributed-digraph description into a Digraph.
//
// The accepted format is the statement-per-line subset emitted by common
// graph tooling: a `digraph name {` header, node statements
// (`id [label="text"];`), edge statements
// (`src -> dst [constraint=bool, color=value, label="delay"];`) and a closing
// brace. `//` and `#` comments and blank lines are skipped, as are
// graph-level attribute statements and `node`/`edge` default statements.
//
// Attribute handling follows the model's conventions: label values are kept
// verbatim (quotes included) so quote normalization stays observable,
// constraint and color are unquoted, unrecognized attributes pass through
// verbatim via Attrs.Extra.
//
// Malformed text yields a PARSE_ERROR with the offending line.
func Decode(data []byte) (*graph.Digraph, error) {
	g := graph.New()

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	sawHeader := false
	sawClose := false

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "//") || strings.HasPrefix(text, "#") {
			continue
		}

		if !sawHeader {
			if !headerRe.MatchString(text) {
				return nil, errors.New(errors.ErrCodeParse, "line %d: expected digraph header, got %q", line, text)
			}
			sawHeader = true
			continue
		}

		if sawClose {
			return nil, errors.New(errors.ErrCodeParse, "line %d: statement after closing brace: %q", line, text)
		}
		if text == "}" {
			sawClose = true
			continue
		}

		if err := parseStatement(g, text, line); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read graph text")
	}

	if !sawHeader {
		return nil, errors.New(errors.ErrCodeParse, "empty input: no digraph header")
	}
	if !sawClose {
		return nil, errors.New(errors.ErrCodeParse, "unexpected end of input: missing closing brace")
	}

	return g, nil
}

// parseStatement handles one node or edge statement.
func parseStatement(g *graph.Digraph, text string, line int) error {
	text = strings.TrimSuffix(text, ";")
	text = strings.TrimSpace(text)

	// Split off the attribute list, if any.
	head := text
	var attrs graph.Attrs
	if i := strings.Index(text, "["); i >= 0 {
		if !strings.HasSuffix(text, "]") {
			return errors.New(errors.ErrCodeParse, "line %d: unterminated attribute list: %q", line, text)
		}
		head = strings.TrimSpace(text[:i])
		parsed, err := parseAttrList(text[i+1:len(text)-1], line)
		if err != nil {
			return err
		}
		attrs = parsed
	}

	if head == "" {
		return errors.New(errors.ErrCodeParse, "line %d: statement without subject: %q", line, text)
	}

	// Default-attribute statements apply to rendering, not structure.
	if head == "node" || head == "edge" || head == "graph" {
		return nil
	}

	if from, to, ok := splitEdge(head); ok {
		if from == "" || to == "" {
			return errors.New(errors.ErrCodeParse, "line %d: edge with empty endpoint: %q", line, text)
		}
		g.EnsureNode(from)
		g.EnsureNode(to)
		return g.AddEdge(graph.Edge{From: from, To: to, Attrs: attrs})
	}

	// Bare `key=value` statements are graph-level attributes; skip them.
	if strings.Contains(head, "=") {
		return nil
	}

	id := graph.UnquoteValue(head)
	n := g.EnsureNode(id)
	mergeAttrs(&n.Attrs, attrs)
	return nil
}

// splitEdge splits "src -> dst" into its endpoints, respecting quotes.
func splitEdge(head string) (from, to string, ok bool) {
	inQuote := false
	for i := 0; i+1 < len(head); i++ {
		switch head[i] {
		case '"':
			inQuote = !inQuote
		case '-':
			if !inQuote && head[i+1] == '>' {
				from = graph.UnquoteValue(strings.TrimSpace(head[:i]))
				to = graph.UnquoteValue(strings.TrimSpace(head[i+2:]))
				return from, to, true
			}
		}
	}
	return "", "", false
}

// parseAttrList parses the inside of a [...] attribute list.
func parseAttrList(s string, line int) (graph.Attrs, error) {
	var attrs graph.Attrs

	for _, pair := range splitQuoted(s, ',') {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		eq := indexQuoted(pair, '=')
		if eq < 0 {
			return graph.Attrs{}, errors.New(errors.ErrCodeParse, "line %d: malformed attribute %q", line, pair)
		}
		key := strings.TrimSpace(pair[:eq])
		value := strings.TrimSpace(pair[eq+1:])
		if key == "" {
			return graph.Attrs{}, errors.New(errors.ErrCodeParse, "line %d: attribute with empty key: %q", line, pair)
		}

		switch key {
		case "label":
			attrs.SetLabel(value)
		case "color":
			attrs.Color = graph.UnquoteValue(value)
		case "constraint":
			attrs.Constraint = graph.UnquoteValue(value)
		default:
			if attrs.Extra == nil {
				attrs.Extra = make(map[string]string)
			}
			attrs.Extra[key] = value
		}
	}

	return attrs, nil
}

// mergeAttrs overlays src onto dst, later statements updating earlier ones.
func mergeAttrs(dst *graph.Attrs, src graph.Attrs) {
	if src.HasLabel {
		dst.SetLabel(src.Label)
	}
	if src.Color != "" {
		dst.Color = src.Color
	}
	if src.Constraint != "" {
		dst.Constraint = src.Constraint
	}
	for k, v := range src.Extra {
		if dst.Extra == nil {
			dst.Extra = make(map[string]string)
		}
		dst.Extra[k] = v
	}
}

// splitQuoted splits s on sep occurrences outside double quotes.
func splitQuoted(s string, sep byte) []string {
	var parts []string
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case sep:
			if !inQuote {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// indexQuoted returns the index of the first sep outside double quotes, or -1.
func indexQuoted(s string, sep byte) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case sep:
			if !inQuote {
				return i
			}
		}
	}
	return -1
}
