// Package chunk implements the recursive, paragraph-preferring text
// splitter used by the ingestion dispatcher's "chunked" strategy.
// Boundary choice is fixed (paragraph > sentence > word > hard cut,
// may under-overlap at a chosen boundary) but not the exact output —
// two correct splitters may choose different boundaries for the same
// input.
package chunk

import (
	"regexp"
	"strings"
)

// Chunk is one window produced by Split.
type Chunk struct {
	Text   string
	Offset int // byte offset into the original content
}

// sentenceEnd matches a sentence terminator followed by whitespace or the
// end of the window, used as the second-preference split boundary.
var sentenceEnd = regexp.MustCompile(`[.!?](\s|$)`)

// minBoundaryFraction bounds how far back from the target cut a semantic
// boundary may be chosen before the splitter gives up and hard-cuts
// instead — without it, a boundary search could collapse chunks to a
// handful of characters on content with sparse punctuation.
const minBoundaryFraction = 0.5

// Split divides content into overlapping windows of approximately
// chunkSize characters, preferring to end each window on a paragraph
// break, then a sentence end, then a word boundary, falling back to a
// hard character cut. Adjacent chunks overlap by approximately
// chunkOverlap characters (less when a semantic boundary is chosen).
// Every returned chunk satisfies content[c.Offset:c.Offset+len(c.Text)]
// == c.Text by construction. Callers are expected to have validated
// 0 <= chunkOverlap < chunkSize.
func Split(content string, chunkSize, chunkOverlap int) []Chunk {
	n := len(content)
	if n == 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}

	var chunks []Chunk
	pos := 0
	for pos < n {
		target := pos + chunkSize
		var end int
		if target >= n {
			end = n
		} else {
			end = chooseBoundary(content, pos, target)
		}
		if end <= pos {
			end = min(pos+chunkSize, n)
			if end <= pos {
				end = n
			}
		}

		chunks = append(chunks, Chunk{Text: content[pos:end], Offset: pos})

		if end >= n {
			break
		}

		next := end - chunkOverlap
		if next <= pos {
			next = end
		}
		pos = next
	}
	return chunks
}

// chooseBoundary finds the best cut point in (start, target] preferring,
// in order: a paragraph break, a sentence end, a word boundary. It falls
// back to target (a hard cut) when no boundary falls within the accepted
// range [start + minBoundaryFraction*(target-start), target].
func chooseBoundary(content string, start, target int) int {
	minCut := start + int(float64(target-start)*minBoundaryFraction)
	window := content[start:target]

	if idx := strings.LastIndex(window, "\n\n"); idx >= 0 {
		cut := start + idx + 2
		if cut >= minCut && cut > start {
			return cut
		}
	}

	if loc := lastMatchIndex(sentenceEnd, window); loc >= 0 {
		cut := start + loc
		if cut >= minCut && cut > start {
			return cut
		}
	}

	if idx := strings.LastIndexAny(window, " \t\n"); idx >= 0 {
		cut := start + idx
		if cut >= minCut && cut > start {
			return cut
		}
	}

	return target
}

// lastMatchIndex returns the end offset of the last regexp match in s, or
// -1 if there is no match.
func lastMatchIndex(re *regexp.Regexp, s string) int {
	matches := re.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return -1
	}
	return matches[len(matches)-1][1]
}
