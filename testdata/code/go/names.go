package names

import (
	"errors"
	"fmt"
	str "strings"
)

var ErrEmpty = errors.New("empty name")

type Roster struct {
	names []string
}

func nextName() string {
	return "World"
}

func (r *Roster) Add(name string) {
	r.names = append(r.names, name)
}

func Greet(name string) string {
	return fmt.Sprintf("Hello, %s!", name)
}

func Upper(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty name")
	}
	return str.ToUpper(name), nil
}

func Join(sep string, parts ...string) string {
	return str.Join(parts, sep)
}

func Split(s string) (string, string) {
	i := str.Index(s, " ")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

func Boom() {
	panic("boom")
}

func Sum(a, b int) int {
	return a + b
}

var Double = func(n int) int {
	return n * 2
}

func usesPackageState() error {
	return ErrEmpty
}

func outer() int {
	triple := func(n int) int { return n * 3 }
	return triple(1)
}
