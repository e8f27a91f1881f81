package extraction

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidLocator indicates a locator that does not name a function.
var ErrInvalidLocator = errors.New("invalid locator")

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Locator identifies which function to extract, e.g. "nextName()".
type Locator struct {
	Name string
	Raw  string
}

// ParseLocator parses "name()" or a bare "name".
func ParseLocator(raw string) (Locator, error) {
	name := strings.TrimSpace(raw)
	name = strings.TrimSuffix(name, "()")
	name = strings.TrimSpace(name)
	if !identRe.MatchString(name) {
		return Locator{}, fmt.Errorf("%w: %q", ErrInvalidLocator, raw)
	}
	return Locator{Name: name, Raw: raw}, nil
}

func (l Locator) String() string {
	return l.Name + "()"
}
