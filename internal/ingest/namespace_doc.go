package ingest

import (
	"context"
	"strings"

	amanerrors "github.com/Aman-CERP/mcp-vector-search/internal/errors"
)

// NamespaceDoc implements the "namespace-doc" strategy:
// a single segment for a code file whose leading form declares a
// namespace and docstring, shaped like `(ns NAME "DOC" ...)`. The first
// token after `(ns` is the namespace name; the next string literal is
// the docstring. text_to_embed is the docstring; content_to_store is
// the unmodified file content; metadata gains "namespace".
func NamespaceDoc(ctx context.Context, in FileInput) ([]SegmentDescriptor, error) {
	name, doc, ok := parseNamespaceForm(in.Content)
	if !ok {
		return nil, amanerrors.New(amanerrors.ErrCodeParseFailed,
			"no (ns NAME \"DOC\" ...) form with a docstring found", nil)
	}

	meta := baseSegmentMetadata(in, in.FileID)
	meta[MetaNamespace] = name

	return []SegmentDescriptor{{
		FileID:         in.FileID,
		SegmentID:      in.FileID,
		TextToEmbed:    doc,
		ContentToStore: in.Content,
		Metadata:       meta,
	}}, nil
}

// parseNamespaceForm scans for a leading `(ns name "docstring" ...)`
// form, returning the namespace name and docstring. ok is false when no
// such form is present or the docstring is missing.
func parseNamespaceForm(content string) (name, doc string, ok bool) {
	s := strings.TrimLeft(content, " \t\r\n")
	if !strings.HasPrefix(s, "(ns") {
		return "", "", false
	}
	s = s[len("(ns"):]

	s = skipWhitespace(s)
	nameEnd := 0
	for nameEnd < len(s) && !isFormDelimiter(s[nameEnd]) {
		nameEnd++
	}
	if nameEnd == 0 {
		return "", "", false
	}
	name = s[:nameEnd]
	s = skipWhitespace(s[nameEnd:])

	if len(s) == 0 || s[0] != '"' {
		return "", "", false
	}
	doc, _, ok = readStringLiteral(s)
	if !ok || strings.TrimSpace(doc) == "" {
		return "", "", false
	}
	return name, doc, true
}

func isFormDelimiter(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '(' || b == ')'
}

func skipWhitespace(s string) string {
	return strings.TrimLeft(s, " \t\r\n")
}

// readStringLiteral reads a double-quoted, backslash-escaped string
// literal starting at s[0] == '"', returning its unescaped contents and
// the remainder of s after the closing quote.
func readStringLiteral(s string) (value, rest string, ok bool) {
	if len(s) == 0 || s[0] != '"' {
		return "", s, false
	}
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '"' {
			return b.String(), s[i+1:], true
		}
		b.WriteByte(c)
		i++
	}
	return "", s, false
}
