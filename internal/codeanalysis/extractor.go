package codeanalysis

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// Analyze parses source with the tree-sitter grammar registered for
// language and extracts the elements matched by that language's rules,
// filtered by visibility. It returns an error (surfaced by the
// dispatcher as an analysis-error segment) when the file cannot be
// parsed or the language is unsupported.
func Analyze(ctx context.Context, source []byte, language string, registry *LanguageRegistry, visibility Visibility) (*Analysis, error) {
	tsLang := registry.treeSitterLanguage(language)
	if tsLang == nil {
		return nil, fmt.Errorf("codeanalysis: unsupported language %q", language)
	}
	rules := registry.elementRules(language)
	ruleByType := make(map[string]elementRule, len(rules))
	for _, r := range rules {
		ruleByType[r.nodeType] = r
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsLang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("codeanalysis: parse %s: %w", language, err)
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, fmt.Errorf("codeanalysis: parse %s: empty tree", language)
	}

	ex := &extraction{
		source:     source,
		language:   language,
		ruleByType: ruleByType,
		publicOnly: visibility == VisibilityPublicOnly,
	}
	ex.walk(tree.RootNode(), "")

	return &Analysis{Language: language, Elements: ex.elements}, nil
}

type extraction struct {
	source     []byte
	language   string
	ruleByType map[string]elementRule
	publicOnly bool
	elements   []Element
}

func (ex *extraction) walk(node *sitter.Node, enclosing string) {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		rule, matched := ex.ruleByType[child.Type()]
		nextEnclosing := enclosing
		if matched {
			elem := ex.buildElement(child, rule, enclosing)
			if !ex.publicOnly || elem.Exported {
				ex.elements = append(ex.elements, elem)
			}
			if elem.Type == ElementNamespace {
				nextEnclosing = elem.Name
			} else if elem.Type == ElementClass {
				nextEnclosing = elem.QualifiedName
			}
		}
		ex.walk(child, nextEnclosing)
	}
}

func (ex *extraction) buildElement(node *sitter.Node, rule elementRule, enclosing string) Element {
	name := extractName(node, rule, ex.source)
	elemType := rule.elementType
	if rule.isConstructor != nil && rule.isConstructor(name) {
		elemType = ElementConstructor
	}

	qualified := name
	if enclosing != "" && name != "" {
		qualified = enclosing + "." + name
	}

	return Element{
		Type:          elemType,
		Name:          name,
		QualifiedName: qualified,
		Namespace:     enclosing,
		Docstring:     precedingComment(node, ex.source),
		StartLine:     int(node.StartPoint().Row) + 1,
		EndLine:       int(node.EndPoint().Row) + 1,
		Exported:      isExported(ex.language, name),
		Source:        strings.TrimSpace(node.Content(ex.source)),
	}
}

// extractName pulls the declared identifier out of node, using the named
// field when the language's grammar exposes one, falling back to the
// first *_identifier child (used for Go's package_clause, which has no
// named field for its identifier).
func extractName(node *sitter.Node, rule elementRule, source []byte) string {
	if rule.nameField != "" {
		if field := node.ChildByFieldName(rule.nameField); field != nil {
			return field.Content(source)
		}
	}
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		if child != nil && strings.HasSuffix(child.Type(), "identifier") {
			return child.Content(source)
		}
	}
	return ""
}

// precedingComment collects contiguous comment siblings immediately
// above node, joined in source order, used as the element's docstring.
func precedingComment(node *sitter.Node, source []byte) string {
	var comments []string
	for sib := node.PrevSibling(); sib != nil && isCommentType(sib.Type()); sib = sib.PrevSibling() {
		comments = append([]string{strings.TrimSpace(sib.Content(source))}, comments...)
	}
	return strings.Join(comments, "\n")
}

func isCommentType(nodeType string) bool {
	return strings.Contains(nodeType, "comment")
}

// isExported applies the language's visibility convention: Go's
// exported-uppercase-identifier rule for Go, leading-underscore-is-
// private for the rest.
func isExported(language, name string) bool {
	if name == "" {
		return false
	}
	if language == "go" {
		r, _ := utf8.DecodeRuneInString(name)
		return unicode.IsUpper(r)
	}
	return !strings.HasPrefix(name, "_")
}
