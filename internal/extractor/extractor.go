// Package extractor locates a single named function in a source file and
// materializes it, alone, in a fresh interpreter so tests can call it without
// loading the module around it.
package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mvp-joe/dice/internal/extraction"
	"github.com/mvp-joe/dice/internal/extractor/parsers"
)

// Policy decides what Locate does when several functions share a name.
type Policy int

const (
	// PolicyStrict fails with an AmbiguousMatchError.
	PolicyStrict Policy = iota
	// PolicyFirst picks the match that starts earliest in the file.
	PolicyFirst
)

// ParsePolicy parses "strict" or "first".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "strict", "":
		return PolicyStrict, nil
	case "first":
		return PolicyFirst, nil
	default:
		return PolicyStrict, fmt.Errorf("unknown ambiguity policy %q (want strict or first)", s)
	}
}

func (p Policy) String() string {
	if p == PolicyFirst {
		return "first"
	}
	return "strict"
}

// Extractor locates functions and wraps them in handles.
type Extractor struct {
	policy    Policy
	logger    *zap.Logger
	timeout   time.Duration
	cacheSize int
	cache     *parseCache
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPolicy sets the ambiguity policy. Default PolicyStrict.
func WithPolicy(p Policy) Option {
	return func(e *Extractor) { e.policy = p }
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTimeout bounds each JavaScript invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.timeout = d }
}

// WithCache caches parsed files, up to size entries (at least 10). Zero (the default)
// parses on every call. Call Close to release a cache.
func WithCache(size int) Option {
	return func(e *Extractor) { e.cacheSize = size }
}

// New creates an extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		policy: PolicyStrict,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.cacheSize > 0 {
		cache, err := newParseCache(e.cacheSize)
		if err != nil {
			e.logger.Warn("parse cache disabled", zap.Error(err))
		} else {
			e.cache = cache
		}
	}
	return e
}

// Close releases the parse cache, if any.
func (e *Extractor) Close() {
	if e.cache != nil {
		e.cache.close()
	}
}

// Locate finds the function named by locator in filePath and returns a handle
// to it. It fails with a ReadError, NotFoundError or AmbiguousMatchError
// (strict policy), and with a LoadError when the function cannot stand alone.
func (e *Extractor) Locate(ctx context.Context, filePath, locator string) (*Handle, error) {
	loc, err := extraction.ParseLocator(locator)
	if err != nil {
		return nil, err
	}

	defs, err := e.List(ctx, filePath)
	if err != nil {
		return nil, err
	}

	def, err := e.choose(filePath, loc, defs)
	if err != nil {
		return nil, err
	}

	fn, err := load(def)
	if err != nil {
		return nil, &LoadError{Path: filePath, Name: def.Name, Err: err}
	}

	e.logger.Debug("Located function",
		zap.String("file", filePath),
		zap.String("name", def.Name),
		zap.String("kind", def.Kind),
		zap.Int("line", def.StartLine))

	return &Handle{def: def, fn: fn, timeout: e.timeout}, nil
}

// List returns every function candidate in filePath, in source order.
func (e *Extractor) List(ctx context.Context, filePath string) ([]extraction.FunctionDef, error) {
	language := extraction.DetectLanguage(filePath)
	parser := parsers.ForLanguage(language)

	f, err := os.Open(filePath)
	if err != nil {
		return nil, &ReadError{Path: filePath, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &ReadError{Path: filePath, Err: err}
	}
	if info.IsDir() {
		return nil, &ReadError{Path: filePath, Err: fmt.Errorf("is a directory")}
	}

	if parser == nil {
		return nil, &UnsupportedLanguageError{Path: filePath}
	}

	key := cacheKey(filePath)
	if e.cache != nil {
		if defs, ok := e.cache.get(key, info.Size(), info.ModTime()); ok {
			e.logger.Debug("Parse cache hit", zap.String("file", filePath), zap.Int("functions", len(defs)))
			return defs, nil
		}
	}

	source, err := io.ReadAll(f)
	if err != nil {
		return nil, &ReadError{Path: filePath, Err: err}
	}

	defs, err := parser.ParseFile(ctx, filePath, source)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &ParseError{Path: filePath, Err: err}
	}

	e.logger.Debug("Parsed file",
		zap.String("file", filePath),
		zap.String("language", language),
		zap.Int("functions", len(defs)))

	if e.cache != nil && !e.cache.set(key, info.Size(), info.ModTime(), defs) {
		e.logger.Debug("Parse cache rejected entry", zap.String("file", filePath))
	}
	return defs, nil
}

// choose applies the locator and ambiguity policy to the candidates.
func (e *Extractor) choose(filePath string, loc extraction.Locator, defs []extraction.FunctionDef) (extraction.FunctionDef, error) {
	var matches []extraction.FunctionDef
	for _, def := range defs {
		if def.Name == loc.Name {
			matches = append(matches, def)
		}
	}

	switch {
	case len(matches) == 0:
		available := make([]string, 0, len(defs))
		for _, def := range defs {
			available = append(available, def.Name)
		}
		return extraction.FunctionDef{}, &NotFoundError{Path: filePath, Name: loc.Name, Available: available}
	case len(matches) == 1 || e.policy == PolicyFirst:
		// defs are in source order, so matches[0] starts earliest
		return matches[0], nil
	default:
		lines := make([]int, len(matches))
		for i, m := range matches {
			lines[i] = m.StartLine
		}
		return extraction.FunctionDef{}, &AmbiguousMatchError{Path: filePath, Name: loc.Name, Lines: lines}
	}
}

func load(def extraction.FunctionDef) (invoker, error) {
	switch def.Language {
	case extraction.LanguageJavaScript:
		return loadJS(def)
	case extraction.LanguageGo:
		return loadGo(def)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, def.Language)
	}
}

func cacheKey(filePath string) string {
	if abs, err := filepath.Abs(filePath); err == nil {
		return abs
	}
	return filePath
}

var defaultExtractor = New()

// Locate finds a function using a default strict, uncached extractor.
func Locate(ctx context.Context, filePath, locator string) (*Handle, error) {
	return defaultExtractor.Locate(ctx, filePath, locator)
}
