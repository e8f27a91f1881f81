package extractor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRead indicates the source file could not be read
	ErrRead = errors.New("read failed")

	// ErrNotFound indicates no function matches the locator
	ErrNotFound = errors.New("function not found")

	// ErrAmbiguousMatch indicates more than one function matches the locator
	ErrAmbiguousMatch = errors.New("ambiguous locator")

	// ErrUnsupportedLanguage indicates a file type with no parser
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrParse indicates the source file could not be parsed
	ErrParse = errors.New("parse failed")

	// ErrLoad indicates the isolated function could not be materialized
	ErrLoad = errors.New("load failed")

	// ErrArgCount indicates a call with the wrong number of arguments
	ErrArgCount = errors.New("wrong argument count")

	// ErrArgType indicates an argument that cannot be passed to the function
	ErrArgType = errors.New("wrong argument type")
)

// ReadError reports an I/O failure reading the source file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error        { return e.Err }
func (e *ReadError) Is(target error) bool { return target == ErrRead }

// NotFoundError reports a locator that matched nothing. Available lists the
// function names the file does contain.
type NotFoundError struct {
	Path      string
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("function %s() not found in %s", e.Name, e.Path)
	if len(e.Available) > 0 {
		msg += " (available: " + strings.Join(e.Available, ", ") + ")"
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AmbiguousMatchError reports a locator that matched several functions.
type AmbiguousMatchError struct {
	Path  string
	Name  string
	Lines []int
}

func (e *AmbiguousMatchError) Error() string {
	lines := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = fmt.Sprint(l)
	}
	return fmt.Sprintf("function %s() matches %d definitions in %s (lines %s)",
		e.Name, len(e.Lines), e.Path, strings.Join(lines, ", "))
}

func (e *AmbiguousMatchError) Is(target error) bool { return target == ErrAmbiguousMatch }

// UnsupportedLanguageError reports a file the extractor has no parser for.
type UnsupportedLanguageError struct {
	Path string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("no parser for %s", e.Path)
}

func (e *UnsupportedLanguageError) Is(target error) bool { return target == ErrUnsupportedLanguage }

// ParseError reports a source file the parser rejected.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error        { return e.Err }
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// LoadError reports a located function that failed to compile in isolation,
// typically because it depends on declarations outside itself.
type LoadError struct {
	Path string
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s() from %s: %v", e.Name, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error        { return e.Err }
func (e *LoadError) Is(target error) bool { return target == ErrLoad }
