package extraction

import (
	"path/filepath"
	"strings"
)

// Languages understood by the extractor.
const (
	LanguageJavaScript = "javascript"
	LanguageGo         = "go"
)

// Function kinds.
const (
	KindDeclaration = "declaration" // function name() {} / func name() {}
	KindExpression  = "expression"  // function expression bound to a name
	KindArrow       = "arrow"       // arrow function bound to a name
	KindMethod      = "method"      // object literal or class method
	KindLiteral     = "literal"     // Go function literal bound to a name
)

// FunctionDef represents a single function candidate found in a source file.
type FunctionDef struct {
	Name      string
	Kind      string // "declaration", "expression", "arrow", "method", "literal"
	Language  string
	FilePath  string
	Code      string // The function exactly as written in the file
	Expr      string // Self-contained form used for isolated evaluation
	StartLine int
	EndLine   int
	StartByte int
	Strict    bool     // JavaScript only: defined in strict mode code
	Imports   []string // Go only: import specs the function refers to
}

// DetectLanguage detects the language based on file extension.
// Returns an empty string for unsupported files.
func DetectLanguage(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".js", ".mjs", ".cjs":
		return LanguageJavaScript
	case ".go":
		return LanguageGo
	default:
		return ""
	}
}
