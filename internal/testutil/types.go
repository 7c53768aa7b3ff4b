// Package testutil defines support code for unit tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/Markkimotho/json-parser/ast"
)

// NestedArrays returns an input of depth nested empty arrays, "[[...]]".
func NestedArrays(depth int) string {
	return strings.Repeat("[", depth) + strings.Repeat("]", depth)
}

// NestedObjects returns an input of depth nested objects, each holding the
// next under key "k": {"k":{"k":{}}}.
func NestedObjects(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(`{"k":`, depth-1) + "{}" + strings.Repeat("}", depth-1)
}

// MustParse parses input under cfg, and fails t if that is not possible.
func MustParse(t testing.TB, input string, cfg ast.Config) ast.Value {
	t.Helper()
	v, err := ast.Parse(input, cfg)
	if err != nil {
		t.Fatalf("Parse %#q: unexpected error: %v", input, err)
	}
	return v
}
