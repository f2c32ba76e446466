package codeanalysis

import (
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// LanguageRegistry maps file extensions to tree-sitter languages and
// their element-extraction rules.
type LanguageRegistry struct {
	mu        sync.RWMutex
	tsLangs   map[string]*sitter.Language
	extToLang map[string]string
	rules     map[string][]elementRule
}

// elementRule maps one tree-sitter node type to a spec element type, with
// the field name used to pull the element's name out of the node.
type elementRule struct {
	nodeType      string
	elementType   ElementType
	nameField     string // field name holding the identifier, "" => first *identifier named child
	isConstructor func(name string) bool
}

// NewLanguageRegistry builds the default registry covering Go, Python,
// JavaScript and TypeScript.
func NewLanguageRegistry() *LanguageRegistry {
	r := &LanguageRegistry{
		tsLangs:   make(map[string]*sitter.Language),
		extToLang: make(map[string]string),
		rules:     make(map[string][]elementRule),
	}

	r.register("go", golang.GetLanguage(), []string{".go"}, []elementRule{
		{nodeType: "package_clause", elementType: ElementNamespace},
		{nodeType: "function_declaration", elementType: ElementMethod, nameField: "name"},
		{nodeType: "method_declaration", elementType: ElementMethod, nameField: "name"},
		{nodeType: "type_declaration", elementType: ElementClass},
		{nodeType: "const_declaration", elementType: ElementVar},
		{nodeType: "var_declaration", elementType: ElementVar},
	})

	r.register("python", python.GetLanguage(), []string{".py"}, []elementRule{
		{nodeType: "class_definition", elementType: ElementClass, nameField: "name"},
		{
			nodeType: "function_definition", elementType: ElementMethod, nameField: "name",
			isConstructor: func(name string) bool { return name == "__init__" },
		},
	})

	r.register("javascript", javascript.GetLanguage(), []string{".js", ".jsx", ".mjs"}, []elementRule{
		{nodeType: "class_declaration", elementType: ElementClass, nameField: "name"},
		{nodeType: "function_declaration", elementType: ElementMethod, nameField: "name"},
		{
			nodeType: "method_definition", elementType: ElementMethod, nameField: "name",
			isConstructor: func(name string) bool { return name == "constructor" },
		},
	})

	r.register("typescript", typescript.GetLanguage(), []string{".ts", ".tsx"}, []elementRule{
		{nodeType: "class_declaration", elementType: ElementClass, nameField: "name"},
		{nodeType: "interface_declaration", elementType: ElementClass, nameField: "name"},
		{nodeType: "function_declaration", elementType: ElementMethod, nameField: "name"},
		{
			nodeType: "method_definition", elementType: ElementMethod, nameField: "name",
			isConstructor: func(name string) bool { return name == "constructor" },
		},
	})

	return r
}

func (r *LanguageRegistry) register(name string, lang *sitter.Language, exts []string, rules []elementRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tsLangs[name] = lang
	r.rules[name] = rules
	for _, ext := range exts {
		r.extToLang[ext] = name
	}
}

// LanguageForPath returns the registered language name for a file path's
// extension, or "" if unsupported.
func (r *LanguageRegistry) LanguageForPath(path string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := strings.LastIndexByte(path, '.')
	if idx == -1 {
		return ""
	}
	return r.extToLang[strings.ToLower(path[idx:])]
}

func (r *LanguageRegistry) treeSitterLanguage(name string) *sitter.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tsLangs[name]
}

func (r *LanguageRegistry) elementRules(name string) []elementRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules[name]
}
