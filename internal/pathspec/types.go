// Package pathspec compiles the path-specification language used to
// enumerate files and extract per-file metadata: literals, globs, and
// named captures combine into an anchored regular expression.
package pathspec

import "regexp"

// SourceType identifies where a PathSpec's files live.
type SourceType string

const (
	SourceFilesystem SourceType = "filesystem"
	SourceClasspath  SourceType = "classpath"
)

// SegmentKind identifies the kind of a parsed path-spec segment.
type SegmentKind int

const (
	// SegmentLiteral is a run of plain characters, regex-escaped on compile.
	SegmentLiteral SegmentKind = iota
	// SegmentGlobSingle matches a single path component ("*" -> `[^/]*`).
	SegmentGlobSingle
	// SegmentGlobRecursive matches across path components ("**" -> `.*?`).
	SegmentGlobRecursive
	// SegmentCapture is a named regex group contributing metadata.
	SegmentCapture
)

// Segment is one element of a parsed path-spec.
type Segment struct {
	Kind    SegmentKind
	Literal string // set when Kind == SegmentLiteral
	Name    string // set when Kind == SegmentCapture
	Pattern string // set when Kind == SegmentCapture: the inner regex
}

// Watch is the tri-state watch setting a source may declare.
type Watch int

const (
	WatchDefault Watch = iota
	WatchEnabled
	WatchDisabled
)

// Resolve returns the effective watch state given the global default.
func (w Watch) Resolve(globalDefault bool) bool {
	switch w {
	case WatchEnabled:
		return true
	case WatchDisabled:
		return false
	default:
		return globalDefault
	}
}

// PathSpec is the compiled form of a user-provided path pattern.
// It is created once at configuration parse time and never mutated.
type PathSpec struct {
	Raw            string
	SourceType     SourceType
	Segments       []Segment
	BasePrefix     string
	CompiledRegexp *regexp.Regexp
	BaseMetadata   map[string]string
	Strategy       string
	StrategyParams map[string]string
	Watch          Watch
}

// CaptureNames returns the ordered list of named capture groups declared
// by the spec.
func (p *PathSpec) CaptureNames() []string {
	var names []string
	for _, seg := range p.Segments {
		if seg.Kind == SegmentCapture {
			names = append(names, seg.Name)
		}
	}
	return names
}
