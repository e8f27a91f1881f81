package parsers

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"regexp"
	"sort"
	"strconv"

	"github.com/mvp-joe/dice/internal/extraction"
)

var majorVersionRe = regexp.MustCompile(`^v[0-9]+$`)

// goParser finds named functions in Go files using go/ast.
type goParser struct{}

// NewGoParser creates a new Go parser.
func NewGoParser() *goParser {
	return &goParser{}
}

// goImport is an import spec keyed by the name it is referenced with.
type goImport struct {
	local string
	spec  string // as written in an import block: `name "path"` or `"path"`
}

// ParseFile parses a Go source file. Methods are skipped: they cannot be
// called without their receiver type.
func (p *goParser) ParseFile(ctx context.Context, filePath string, source []byte) ([]extraction.FunctionDef, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, source, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	imports := collectImports(file)
	src := string(source)

	var defs []extraction.FunctionDef
	add := func(name string, node ast.Node, kind, code, expr string) {
		start := fset.Position(node.Pos())
		defs = append(defs, extraction.FunctionDef{
			Name:      name,
			Kind:      kind,
			Language:  extraction.LanguageGo,
			FilePath:  filePath,
			Code:      code,
			Expr:      expr,
			StartLine: start.Line,
			EndLine:   fset.Position(node.End()).Line,
			StartByte: start.Offset,
			Imports:   referencedImports(node, imports),
		})
	}
	bindLiteral := func(ident *ast.Ident, lit *ast.FuncLit, binding ast.Node) {
		if ident == nil || ident.Name == "_" {
			return
		}
		litSrc := sliceByPos(src, fset, lit.Pos(), lit.End())
		add(ident.Name, binding, extraction.KindLiteral,
			sliceByPos(src, fset, binding.Pos(), binding.End()),
			"var "+ident.Name+" = "+litSrc)
	}

	ast.Inspect(file, func(n ast.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		switch decl := n.(type) {
		case *ast.FuncDecl:
			if decl.Recv != nil || decl.Name == nil || decl.Body == nil {
				return true
			}
			code := sliceByPos(src, fset, decl.Pos(), decl.End())
			add(decl.Name.Name, decl, extraction.KindDeclaration, code, code)
		case *ast.ValueSpec:
			for i, name := range decl.Names {
				if i < len(decl.Values) {
					if lit, ok := decl.Values[i].(*ast.FuncLit); ok {
						bindLiteral(name, lit, decl)
					}
				}
			}
		case *ast.AssignStmt:
			if len(decl.Lhs) != len(decl.Rhs) {
				return true
			}
			for i, lhs := range decl.Lhs {
				ident, ok := lhs.(*ast.Ident)
				if !ok {
					continue
				}
				if lit, ok := decl.Rhs[i].(*ast.FuncLit); ok {
					bindLiteral(ident, lit, decl)
				}
			}
		}
		return true
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].StartByte < defs[j].StartByte
	})
	return defs, nil
}

// collectImports maps each import's reference name to its spec.
func collectImports(file *ast.File) map[string]goImport {
	out := make(map[string]goImport, len(file.Imports))
	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		local := path.Base(importPath)
		if majorVersionRe.MatchString(local) {
			local = path.Base(path.Dir(importPath))
		}
		written := spec.Path.Value
		if spec.Name != nil {
			if spec.Name.Name == "_" || spec.Name.Name == "." {
				continue
			}
			local = spec.Name.Name
			written = spec.Name.Name + " " + spec.Path.Value
		}
		out[local] = goImport{local: local, spec: written}
	}
	return out
}

// referencedImports returns the import specs node refers to through
// selector expressions such as strings.ToUpper.
func referencedImports(node ast.Node, imports map[string]goImport) []string {
	used := make(map[string]bool)
	ast.Inspect(node, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if x, ok := sel.X.(*ast.Ident); ok {
			if _, ok := imports[x.Name]; ok {
				used[x.Name] = true
			}
		}
		return true
	})

	specs := make([]string, 0, len(used))
	for local := range used {
		specs = append(specs, imports[local].spec)
	}
	sort.Strings(specs)
	return specs
}

func sliceByPos(src string, fset *token.FileSet, start, end token.Pos) string {
	p0 := fset.PositionFor(start, true).Offset
	p1 := fset.PositionFor(end, true).Offset
	if p0 < 0 || p1 > len(src) || p0 > p1 {
		return ""
	}
	return src[p0:p1]
}
