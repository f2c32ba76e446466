package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aman-CERP/mcp-vector-search/internal/codeanalysis"
	amanerrors "github.com/Aman-CERP/mcp-vector-search/internal/errors"
)

var defaultLanguages = codeanalysis.NewLanguageRegistry()

var validElementTypes = map[string]bool{
	string(codeanalysis.ElementNamespace):   true,
	string(codeanalysis.ElementClass):       true,
	string(codeanalysis.ElementVar):         true,
	string(codeanalysis.ElementMacro):       true,
	string(codeanalysis.ElementMethod):      true,
	string(codeanalysis.ElementField):       true,
	string(codeanalysis.ElementConstructor): true,
}

// CodeAnalysis implements the "code-analysis" strategy:
// analyzes a source file with the language's tree-sitter grammar and
// emits one segment per recognized element, restricted by visibility
// and element-types. On parse failure, no segments are emitted and the
// dispatcher's caller surfaces an analysis-error.
func CodeAnalysis(ctx context.Context, in FileInput) ([]SegmentDescriptor, error) {
	visibility := codeanalysis.Visibility(paramOr(in.Params, "visibility", string(codeanalysis.VisibilityAll)))
	if visibility != codeanalysis.VisibilityAll && visibility != codeanalysis.VisibilityPublicOnly {
		return nil, amanerrors.New(amanerrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown visibility parameter %q", visibility), nil)
	}

	allowedTypes, err := parseElementTypes(in.Params["element-types"])
	if err != nil {
		return nil, err
	}

	language := defaultLanguages.LanguageForPath(in.FileID)
	if language == "" {
		return nil, amanerrors.New(amanerrors.ErrCodeAnalysisFailed,
			fmt.Sprintf("no code-analysis grammar registered for %q", in.FileID), nil)
	}

	analysis, err := codeanalysis.Analyze(ctx, []byte(in.Content), language, defaultLanguages, visibility)
	if err != nil {
		return nil, amanerrors.New(amanerrors.ErrCodeAnalysisFailed, err.Error(), err)
	}

	segments := make([]SegmentDescriptor, 0, len(analysis.Elements))
	for i, elem := range analysis.Elements {
		if allowedTypes != nil && !allowedTypes[string(elem.Type)] {
			continue
		}

		textToEmbed := strings.TrimSpace(elem.Docstring)
		if textToEmbed == "" {
			textToEmbed = elem.QualifiedName
		}

		segmentID := fmt.Sprintf("%s#element-%d", in.FileID, i)
		meta := baseSegmentMetadata(in, segmentID)
		meta[MetaElementType] = string(elem.Type)
		meta[MetaElementName] = elem.QualifiedName
		meta[MetaLanguage] = analysis.Language
		meta[MetaVisibility] = string(visibility)
		if elem.Namespace != "" {
			meta[MetaNamespace] = elem.Namespace
		}

		segments = append(segments, SegmentDescriptor{
			FileID:         in.FileID,
			SegmentID:      segmentID,
			TextToEmbed:    textToEmbed,
			ContentToStore: elem.Source,
			Metadata:       meta,
		})
	}
	return segments, nil
}

// parseElementTypes parses a comma-separated element-types restriction,
// returning nil when unset (meaning "all types").
func parseElementTypes(raw string) (map[string]bool, error) {
	if raw == "" {
		return nil, nil
	}
	allowed := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		t := strings.TrimSpace(part)
		if !validElementTypes[t] {
			return nil, amanerrors.New(amanerrors.ErrCodeInvalidInput,
				fmt.Sprintf("unknown element-types value %q", t), nil)
		}
		allowed[t] = true
	}
	return allowed, nil
}
