package extractor

import (
	"slices"
	"time"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/dice/internal/extraction"
)

// minCacheCapacity is the smallest capacity otter admits entries at: one
// entry's cost may not exceed a tenth of the capacity.
const minCacheCapacity = 10

// parseCache holds parsed candidates per file. An entry is only reused while
// the file's size and modification time are unchanged.
type parseCache struct {
	entries otter.Cache[string, cachedParse]
}

type cachedParse struct {
	size    int64
	modTime time.Time
	defs    []extraction.FunctionDef
}

func newParseCache(capacity int) (*parseCache, error) {
	capacity = max(capacity, minCacheCapacity)
	entries, err := otter.MustBuilder[string, cachedParse](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, err
	}
	return &parseCache{entries: entries}, nil
}

// get returns a copy of the cached candidates, so callers may modify them.
func (c *parseCache) get(path string, size int64, modTime time.Time) ([]extraction.FunctionDef, bool) {
	entry, ok := c.entries.Get(path)
	if !ok || entry.size != size || !entry.modTime.Equal(modTime) {
		return nil, false
	}
	return cloneDefs(entry.defs), true
}

// set stores a copy of defs and reports whether the cache accepted it.
func (c *parseCache) set(path string, size int64, modTime time.Time, defs []extraction.FunctionDef) bool {
	return c.entries.Set(path, cachedParse{size: size, modTime: modTime, defs: cloneDefs(defs)})
}

func (c *parseCache) hits() int64 {
	return c.entries.Stats().Hits()
}

func (c *parseCache) close() {
	c.entries.Close()
}

func cloneDefs(defs []extraction.FunctionDef) []extraction.FunctionDef {
	out := slices.Clone(defs)
	for i := range out {
		out[i].Imports = slices.Clone(out[i].Imports)
	}
	return out
}
