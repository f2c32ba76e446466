package codeanalysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_GoFile_ExtractsNamespaceAndMethods(t *testing.T) {
	source := `package widgets

// Greet returns a greeting for name.
func Greet(name string) string {
	return "hello " + name
}

func lowercase() {}
`
	registry := NewLanguageRegistry()
	analysis, err := Analyze(context.Background(), []byte(source), "go", registry, VisibilityAll)
	require.NoError(t, err)
	assert.Equal(t, "go", analysis.Language)

	var namespace, greet, lower *Element
	for i := range analysis.Elements {
		e := &analysis.Elements[i]
		switch e.Name {
		case "widgets":
			namespace = e
		case "Greet":
			greet = e
		case "lowercase":
			lower = e
		}
	}

	require.NotNil(t, namespace)
	assert.Equal(t, ElementNamespace, namespace.Type)

	require.NotNil(t, greet)
	assert.Equal(t, ElementMethod, greet.Type)
	assert.True(t, greet.Exported)
	assert.Contains(t, greet.Docstring, "Greet returns a greeting")

	require.NotNil(t, lower)
	assert.False(t, lower.Exported)
}

func TestAnalyze_GoFile_PublicOnlyFiltersUnexported(t *testing.T) {
	source := `package widgets

func Public() {}
func private() {}
`
	registry := NewLanguageRegistry()
	analysis, err := Analyze(context.Background(), []byte(source), "go", registry, VisibilityPublicOnly)
	require.NoError(t, err)

	for _, e := range analysis.Elements {
		if e.Type == ElementNamespace {
			continue
		}
		assert.True(t, e.Exported, "unexpected unexported element %q in public-only analysis", e.Name)
	}
}

func TestAnalyze_PythonFile_ConstructorDetected(t *testing.T) {
	source := `class Widget:
    def __init__(self, name):
        self.name = name

    def greet(self):
        return self.name
`
	registry := NewLanguageRegistry()
	analysis, err := Analyze(context.Background(), []byte(source), "python", registry, VisibilityAll)
	require.NoError(t, err)

	var class, ctor, method *Element
	for i := range analysis.Elements {
		e := &analysis.Elements[i]
		switch e.Name {
		case "Widget":
			class = e
		case "__init__":
			ctor = e
		case "greet":
			method = e
		}
	}

	require.NotNil(t, class)
	assert.Equal(t, ElementClass, class.Type)

	require.NotNil(t, ctor)
	assert.Equal(t, ElementConstructor, ctor.Type)
	assert.Equal(t, "Widget.__init__", ctor.QualifiedName)

	require.NotNil(t, method)
	assert.Equal(t, ElementMethod, method.Type)
}

func TestAnalyze_UnsupportedLanguage_ReturnsError(t *testing.T) {
	registry := NewLanguageRegistry()
	_, err := Analyze(context.Background(), []byte("whatever"), "cobol", registry, VisibilityAll)
	assert.Error(t, err)
}

func TestLanguageRegistry_LanguageForPath(t *testing.T) {
	registry := NewLanguageRegistry()
	assert.Equal(t, "go", registry.LanguageForPath("internal/foo/bar.go"))
	assert.Equal(t, "python", registry.LanguageForPath("scripts/build.py"))
	assert.Equal(t, "typescript", registry.LanguageForPath("src/app.tsx"))
	assert.Equal(t, "", registry.LanguageForPath("README.md"))
}
