// Package dicetest runs unit tests against single functions cut out of a
// source file.
package dicetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/dice/internal/extractor"
)

// Suite describes one extracted function and the tests that exercise it.
type Suite struct {
	// File is the source file to extract from.
	File string
	// Extract is the locator, e.g. "nextName()".
	Extract string
	// Options configure the extractor, e.g. extractor.WithPolicy.
	Options []extractor.Option
	// Tests receives extract, which returns a fresh handle on every call.
	// Pass the calling test, or subtest, to extract.
	Tests func(t *testing.T, extract func(t *testing.T) *extractor.Handle)
}

// Run locates the function once up front, failing t immediately if that
// fails, then hands the suite an extract func.
func Run(t *testing.T, s Suite) {
	t.Helper()

	ex := extractor.New(s.Options...)
	t.Cleanup(ex.Close)

	_, err := ex.Locate(context.Background(), s.File, s.Extract)
	require.NoError(t, err, "extract %s from %s", s.Extract, s.File)

	extract := func(t *testing.T) *extractor.Handle {
		t.Helper()

		h, err := ex.Locate(context.Background(), s.File, s.Extract)
		require.NoError(t, err, "extract %s from %s", s.Extract, s.File)
		return h
	}

	if s.Tests != nil {
		s.Tests(t, extract)
	}
}

// MustLocate returns a handle or fails t.
func MustLocate(t *testing.T, file, locator string) *extractor.Handle {
	t.Helper()

	h, err := extractor.Locate(context.Background(), file, locator)
	require.NoError(t, err, "extract %s from %s", locator, file)
	return h
}
