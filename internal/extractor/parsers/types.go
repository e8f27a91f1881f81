package parsers

import (
	"context"

	"github.com/mvp-joe/dice/internal/extraction"
)

// Parser discovers the function candidates of one language.
type Parser interface {
	// ParseFile returns every named function in source, in source order.
	ParseFile(ctx context.Context, filePath string, source []byte) ([]extraction.FunctionDef, error)
}

// ForLanguage returns the parser for a language, or nil if unsupported.
func ForLanguage(language string) Parser {
	switch language {
	case extraction.LanguageJavaScript:
		return NewJavaScriptParser()
	case extraction.LanguageGo:
		return NewGoParser()
	default:
		return nil
	}
}
