package dirac_test

import (
	"testing"

	"github.com/thomasrohde/dirac"
)

func FuzzInterpret(f *testing.F) {
	for _, seed := range []string{
		"(|0> + |1>) / | |0> + |1> |",
		"<0|1>",
		"|1><0|",
		"3|0>",
		"|0>|1>",
		"|0> x <1| / 2'",
		"||0>| - -|1|",
		"(|0",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, src string) {
		got, err := dirac.Interpret(src)
		if err == nil && got.Len() != got.Shape().Len() {
			t.Fatalf("%q: %d elements for shape %s", src, got.Len(), got.Shape())
		}
	})
}
