package parsers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/dice/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the JavaScript Parser:
// - Finds nested function declarations inside an IIFE (original app file)
// - Finds member assignments ($scope.addName = function ...)
// - Finds declarations, var/const bound expressions and arrows
// - Named function expressions yield both the binding and the own name
// - Object literal pairs and methods, class methods (static stripped)
// - Accessors are skipped
// - Candidates come back in source order with accurate lines
// - Files with syntax errors still yield the intact functions
// - Cancelled context aborts parsing
// - "use strict" files, .mjs modules, classes and strict functions mark nested candidates strict

func parseJSFixture(t *testing.T, name string) []extraction.FunctionDef {
	t.Helper()

	path := filepath.Join("../../../testdata/code/javascript", name)
	source, err := os.ReadFile(path)
	require.NoError(t, err)

	defs, err := NewJavaScriptParser().ParseFile(context.Background(), path, source)
	require.NoError(t, err)
	return defs
}

func findDef(defs []extraction.FunctionDef, name string) *extraction.FunctionDef {
	for i := range defs {
		if defs[i].Name == name {
			return &defs[i]
		}
	}
	return nil
}

func defNames(defs []extraction.FunctionDef) []string {
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}

func TestJavaScriptParser_OriginalApp(t *testing.T) {
	t.Parallel()

	defs := parseJSFixture(t, "app.js")
	assert.Equal(t, []string{"nextName", "addName"}, defNames(defs))

	next := findDef(defs, "nextName")
	require.NotNil(t, next)
	assert.Equal(t, extraction.KindDeclaration, next.Kind)
	assert.Equal(t, extraction.LanguageJavaScript, next.Language)
	assert.Equal(t, 2, next.StartLine)
	assert.Equal(t, 4, next.EndLine)
	assert.Contains(t, next.Code, "return 'World';")
	assert.Equal(t, "("+next.Code+")", next.Expr)

	add := findDef(defs, "addName")
	require.NotNil(t, add)
	assert.Equal(t, extraction.KindExpression, add.Kind)
	assert.Equal(t, 8, add.StartLine)
	assert.Contains(t, add.Code, "$scope.addName = function")
}

func TestJavaScriptParser_Forms(t *testing.T) {
	t.Parallel()

	defs := parseJSFixture(t, "forms.js")
	assert.Equal(t, []string{
		"greet", "shout", "add", "counter", "count",
		"double", "triple", "square", "fail", "spin", "usesOuter",
	}, defNames(defs))

	add := findDef(defs, "add")
	require.NotNil(t, add)
	assert.Equal(t, extraction.KindArrow, add.Kind)
	assert.Equal(t, "((a, b) => a + b)", add.Expr)

	triple := findDef(defs, "triple")
	require.NotNil(t, triple)
	assert.Equal(t, extraction.KindMethod, triple.Kind)
	assert.Equal(t, 19, triple.StartLine)
	assert.Equal(t, 21, triple.EndLine)

	square := findDef(defs, "square")
	require.NotNil(t, square)
	assert.NotContains(t, square.Expr, "static")
	assert.Contains(t, square.Expr, ").square")

	assert.Nil(t, findDef(defs, "size"), "getters are not callable candidates")
	assert.Nil(t, findDef(defs, "helpers"), "object literals are not functions")
	assert.Nil(t, findDef(defs, "outerValue"))
}

func TestJavaScriptParser_DuplicateNames(t *testing.T) {
	t.Parallel()

	defs := parseJSFixture(t, "dupes.js")
	require.Len(t, defs, 2)
	assert.Equal(t, "pick", defs[0].Name)
	assert.Equal(t, 1, defs[0].StartLine)
	assert.Equal(t, "pick", defs[1].Name)
	assert.Equal(t, 6, defs[1].StartLine)
}

func TestJavaScriptParser_SameNameBindingAndExpression(t *testing.T) {
	t.Parallel()

	source := []byte("var same = function same() { return 1; };\n")
	defs, err := NewJavaScriptParser().ParseFile(context.Background(), "same.js", source)
	require.NoError(t, err)
	assert.Len(t, defs, 1, "one function bound twice under the same name is a single candidate")
}

func TestJavaScriptParser_SyntaxErrorsKeepIntactFunctions(t *testing.T) {
	t.Parallel()

	defs := parseJSFixture(t, "broken.js")
	intact := findDef(defs, "intact")
	require.NotNil(t, intact)
	assert.Equal(t, 1, intact.StartLine)
}

func TestJavaScriptParser_EmptySource(t *testing.T) {
	t.Parallel()

	defs, err := NewJavaScriptParser().ParseFile(context.Background(), "empty.js", []byte(""))
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestJavaScriptParser_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJavaScriptParser().ParseFile(ctx, "app.js", []byte("function a() {}"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJavaScriptParser_StrictMode(t *testing.T) {
	t.Parallel()

	for _, file := range []string{"strict.js", "strict.mjs"} {
		defs := parseJSFixture(t, file)
		require.Len(t, defs, 2, file)
		for _, def := range defs {
			assert.True(t, def.Strict, "%s in %s", def.Name, file)
			assert.True(t, strings.HasPrefix(def.Expr, "\"use strict\";\n"), def.Expr)
		}
	}

	defs := parseJSFixture(t, "scopes.js")
	strict := map[string]bool{}
	for _, def := range defs {
		strict[def.Name] = def.Strict
	}
	assert.Equal(t, map[string]bool{
		"sloppyThis": false,
		"outer":      false, // its directive is part of its own source
		"inner":      true,
		"isStrict":   true,
	}, strict)

	sloppy := findDef(defs, "sloppyThis")
	require.NotNil(t, sloppy)
	assert.Equal(t, "("+sloppy.Code+")", sloppy.Expr)
}
