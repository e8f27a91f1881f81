package parsers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mvp-joe/dice/internal/extraction"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Node kinds that evaluate to a function value.
var jsFunctionValues = map[string]string{
	"function_expression": extraction.KindExpression,
	"function":            extraction.KindExpression,
	"generator_function":  extraction.KindExpression,
	"arrow_function":      extraction.KindArrow,
}

// javaScriptParser finds named functions in JavaScript files.
type javaScriptParser struct {
	*treeSitterParser
}

// NewJavaScriptParser creates a new JavaScript parser. JavaScript is parsed
// with the TypeScript grammar, which accepts plain JS.
func NewJavaScriptParser() *javaScriptParser {
	lang := sitter.NewLanguage(typescript.LanguageTypescript())
	return &javaScriptParser{
		treeSitterParser: newTreeSitterParser(lang, extraction.LanguageJavaScript),
	}
}

// ParseFile parses a JavaScript source file and returns its function candidates.
// Trees with syntax errors are still walked; the intact parts yield candidates.
func (p *javaScriptParser) ParseFile(ctx context.Context, filePath string, source []byte) ([]extraction.FunctionDef, error) {
	tree, err := p.parse(source)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s file: %s", p.lang, filePath)
	}
	defer tree.Close()

	// ES modules are always strict
	strict := strings.EqualFold(filepath.Ext(filePath), ".mjs") || hasUseStrict(tree.RootNode(), source)

	c := &jsCollector{
		filePath:   filePath,
		source:     source,
		fileStrict: strict,
		seen:       make(map[string]bool),
	}

	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		c.visit(n)
		return true
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(c.defs, func(i, j int) bool {
		return c.defs[i].StartByte < c.defs[j].StartByte
	})
	return c.defs, nil
}

type jsCollector struct {
	filePath   string
	source     []byte
	fileStrict bool
	defs       []extraction.FunctionDef
	seen       map[string]bool // name@byte of the function node
}

func (c *jsCollector) visit(n *sitter.Node) {
	switch n.Kind() {
	case "function_declaration", "generator_function_declaration":
		c.add(n, n, n.ChildByFieldName("name"), extraction.KindDeclaration, "("+extractNodeText(n, c.source)+")")

	case "function_expression", "function", "generator_function":
		// Named function expressions carry their own name: (function nextName() {})
		if name := n.ChildByFieldName("name"); name != nil {
			c.add(n, n, name, extraction.KindExpression, "("+extractNodeText(n, c.source)+")")
		}

	case "variable_declarator":
		name := n.ChildByFieldName("name")
		if name == nil || name.Kind() != "identifier" {
			return
		}
		c.addValue(n, name, n.ChildByFieldName("value"))

	case "assignment_expression":
		left := n.ChildByFieldName("left")
		if left == nil {
			return
		}
		switch left.Kind() {
		case "identifier":
			c.addValue(n, left, n.ChildByFieldName("right"))
		case "member_expression":
			c.addValue(n, left.ChildByFieldName("property"), n.ChildByFieldName("right"))
		}

	case "pair":
		key := n.ChildByFieldName("key")
		if key == nil || (key.Kind() != "property_identifier" && key.Kind() != "identifier") {
			return
		}
		c.addValue(n, key, n.ChildByFieldName("value"))

	case "method_definition":
		c.addMethod(n)
	}
}

// addValue records binding when value is a function.
func (c *jsCollector) addValue(binding, name, value *sitter.Node) {
	if name == nil || value == nil {
		return
	}
	kind, ok := jsFunctionValues[value.Kind()]
	if !ok {
		return
	}
	c.add(binding, value, name, kind, "("+extractNodeText(value, c.source)+")")
}

// addMethod records a class or object-literal method. Accessors are skipped;
// they are not callable on their own.
func (c *jsCollector) addMethod(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	if name == nil || name.Kind() != "property_identifier" {
		return
	}
	if findChildByType(n, "get") != nil || findChildByType(n, "set") != nil {
		return
	}

	// Rebuild without modifiers like "static" that an object literal rejects.
	prefix := ""
	if findChildByType(n, "async") != nil {
		prefix += "async "
	}
	if findChildByType(n, "*") != nil {
		prefix += "*"
	}
	method := prefix + string(c.source[name.StartByte():n.EndByte()])
	ident := extractNodeText(name, c.source)
	c.add(n, n, name, extraction.KindMethod, "({ "+method+" })."+ident)
}

func (c *jsCollector) add(binding, fn, nameNode *sitter.Node, kind, expr string) {
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, c.source)
	key := fmt.Sprintf("%s@%d", name, fn.StartByte())
	if c.seen[key] {
		return
	}
	c.seen[key] = true

	strict := c.fileStrict || inStrictScope(fn, c.source)
	if strict {
		expr = "\"use strict\";\n" + expr
	}

	startLine, endLine := nodeLines(binding)
	c.defs = append(c.defs, extraction.FunctionDef{
		Name:      name,
		Kind:      kind,
		Language:  extraction.LanguageJavaScript,
		FilePath:  c.filePath,
		Code:      extractNodeText(binding, c.source),
		Expr:      expr,
		StartLine: startLine,
		EndLine:   endLine,
		StartByte: int(binding.StartByte()),
		Strict:    strict,
	})
}

// Node kinds whose body may open with a directive prologue.
var jsFunctionKinds = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

// inStrictScope reports whether fn is nested in a class or in a function
// whose body starts with "use strict". A directive in fn's own body travels
// with its source text and needs no help.
func inStrictScope(fn *sitter.Node, source []byte) bool {
	for n := fn.Parent(); n != nil; n = n.Parent() {
		if n.Kind() == "class_body" {
			return true
		}
		if jsFunctionKinds[n.Kind()] && hasUseStrict(n.ChildByFieldName("body"), source) {
			return true
		}
	}
	return false
}

// hasUseStrict reports whether the directive prologue of a program or
// statement block contains "use strict".
func hasUseStrict(block *sitter.Node, source []byte) bool {
	if block == nil || (block.Kind() != "program" && block.Kind() != "statement_block") {
		return false
	}

	for i := uint(0); i < block.NamedChildCount(); i++ {
		stmt := block.NamedChild(i)
		switch stmt.Kind() {
		case "comment", "hash_bang_line":
			continue
		case "expression_statement":
		default:
			return false
		}

		str := stmt.NamedChild(0)
		if str == nil || str.Kind() != "string" || stmt.NamedChildCount() != 1 {
			return false
		}
		text := extractNodeText(str, source)
		if len(text) >= 2 && text[1:len(text)-1] == "use strict" {
			return true
		}
	}
	return false
}
