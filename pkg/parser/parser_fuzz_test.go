package parser_test

import (
	"testing"

	"github.com/thomasrohde/dirac/pkg/parser"
)

// FuzzParse feeds random inputs to the parser to catch panics.
// Invalid input must produce an error, never a panic.
func FuzzParse(f *testing.F) {
	seeds := []string{
		`|0>`,
		`<0|1>`,
		`|0><1|`,
		`(|0> + |1>)/2`,
		`2|0> - 3|1>`,
		`|0> x |1> x |0>`,
		`||0>|1>|`,
		`|10.5|`,
		`|0>' - <0|`,
		`-(|00> + |11>)`,
		`|| |0> | |`,
		// Edge cases
		``,
		`|`,
		`||`,
		`<`,
		`<|`,
		`|>`,
		`(((`,
		`)))`,
		`|0 1>`,
		`<0|1`,
		`1e999`,
		`|2|0>|`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse panicked on input %q: %v", input, r)
				}
			}()
			expr, err := parser.Parse(input, "fuzz.dirac")
			if (expr == nil) == (err == nil) {
				t.Fatalf("Parse(%q) returned expr=%v err=%v", input, expr, err)
			}
		}()
	})
}
