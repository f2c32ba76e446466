package pathspec

import (
	"regexp"
	"strings"
)

// Parse splits a path-spec string into segments, compiling each capture's
// inner regex to report an invalid one; Compile then assembles the full
// anchored pattern and compiles it once.
func Parse(spec string) ([]Segment, error) {
	var segments []Segment
	seen := make(map[string]bool)

	i := 0
	for i < len(spec) {
		switch {
		case strings.HasPrefix(spec[i:], "(?<"):
			seg, next, err := parseCapture(spec, i)
			if err != nil {
				return nil, err
			}
			if seen[seg.Name] {
				return nil, newParseError(ErrDuplicateCapture, i, spec, "capture name \""+seg.Name+"\" used more than once")
			}
			seen[seg.Name] = true
			segments = append(segments, seg)
			i = next

		case strings.HasPrefix(spec[i:], "**"):
			segments = append(segments, Segment{Kind: SegmentGlobRecursive})
			i += 2

		case spec[i] == '*':
			segments = append(segments, Segment{Kind: SegmentGlobSingle})
			i++

		default:
			lit, next := parseLiteral(spec, i)
			segments = append(segments, Segment{Kind: SegmentLiteral, Literal: lit})
			i = next
		}
	}

	return segments, nil
}

// parseCapture parses "(?<name>pattern)" starting at position i, where
// spec[i:i+3] == "(?<". The inner pattern is taken with a balance-free
// scan to the next ")" — nested parens inside a capture's regex are not
// supported by this grammar.
func parseCapture(spec string, i int) (Segment, int, error) {
	nameStart := i + 3
	closeAngle := strings.IndexByte(spec[nameStart:], '>')
	if closeAngle == -1 {
		return Segment{}, 0, newParseError(ErrMissingCaptureClose, i, spec, "no closing '>' for capture name")
	}
	name := spec[nameStart : nameStart+closeAngle]
	if name == "" {
		return Segment{}, 0, newParseError(ErrEmptyCaptureName, i, spec, "capture name is empty")
	}

	patStart := nameStart + closeAngle + 1
	closeParen := strings.IndexByte(spec[patStart:], ')')
	if closeParen == -1 {
		return Segment{}, 0, newParseError(ErrMissingParenClose, i, spec, "no closing ')' for capture")
	}
	pattern := spec[patStart : patStart+closeParen]

	if _, err := regexp.Compile(pattern); err != nil {
		return Segment{}, 0, newParseError(ErrInvalidInnerRegex, patStart, spec, err.Error())
	}

	return Segment{Kind: SegmentCapture, Name: name, Pattern: pattern}, patStart + closeParen + 1, nil
}

// parseLiteral consumes a run of plain characters starting at i, up to
// (but not including) the next special prefix.
func parseLiteral(spec string, i int) (string, int) {
	start := i
	for i < len(spec) {
		if strings.HasPrefix(spec[i:], "(?<") || spec[i] == '*' {
			break
		}
		i++
	}
	return spec[start:i], i
}

// Compile parses and compiles a path-spec string into a PathSpec for the
// given source type and metadata/strategy parameters. The regex is built
// as a single anchored pattern over complete paths and compiled once.
func Compile(spec string, sourceType SourceType, baseMetadata map[string]string, strategy string, strategyParams map[string]string, watch Watch) (*PathSpec, error) {
	segments, err := Parse(spec)
	if err != nil {
		return nil, err
	}

	var pattern strings.Builder
	pattern.WriteByte('^')
	var base strings.Builder
	stillPrefix := true
	for _, seg := range segments {
		switch seg.Kind {
		case SegmentLiteral:
			pattern.WriteString(regexp.QuoteMeta(seg.Literal))
			if stillPrefix {
				base.WriteString(seg.Literal)
			}
		case SegmentGlobSingle:
			pattern.WriteString(`[^/]*`)
			stillPrefix = false
		case SegmentGlobRecursive:
			pattern.WriteString(`.*?`)
			stillPrefix = false
		case SegmentCapture:
			pattern.WriteString("(?P<")
			pattern.WriteString(seg.Name)
			pattern.WriteString(">")
			pattern.WriteString(seg.Pattern)
			pattern.WriteString(")")
			stillPrefix = false
		}
	}
	pattern.WriteByte('$')

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, newParseError(ErrPatternCompile, 0, spec, err.Error())
	}

	meta := make(map[string]string, len(baseMetadata))
	for k, v := range baseMetadata {
		meta[k] = v
	}

	return &PathSpec{
		Raw:            spec,
		SourceType:     sourceType,
		Segments:       segments,
		BasePrefix:     base.String(),
		CompiledRegexp: re,
		BaseMetadata:   meta,
		Strategy:       strategy,
		StrategyParams: strategyParams,
		Watch:          watch,
	}, nil
}

// Match tests a complete path against the compiled pattern and returns the
// named captures on success. ok is false if the path does not match.
func (p *PathSpec) Match(path string) (captures map[string]string, ok bool) {
	m := p.CompiledRegexp.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	names := p.CompiledRegexp.SubexpNames()
	captures = make(map[string]string)
	for i, name := range names {
		if name == "" {
			continue
		}
		captures[name] = m[i]
	}
	return captures, true
}
