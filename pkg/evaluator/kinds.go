package evaluator

// The tables here decide result kinds from operand kinds. The evaluator
// and the static checker share them.

// Juxtaposition names the operation two adjacent operands denote.
type Juxtaposition int

const (
	JuxtInvalid    Juxtaposition = iota
	JuxtScaleLeft                // scalar · x
	JuxtScaleRight               // x · scalar
	JuxtInner                    // <a| |b>
	JuxtOuter                    // |a> <b|
)

// ResolveJuxtaposition returns the operation and result kind of l·r.
// JuxtInvalid means the pair has no meaning.
func ResolveJuxtaposition(l, r Kind) (Juxtaposition, Kind) {
	switch {
	case l == KindScalar:
		return JuxtScaleLeft, r
	case r == KindScalar:
		return JuxtScaleRight, l
	case l == KindBra && r == KindKet:
		return JuxtInner, KindScalar
	case l == KindKet && r == KindBra:
		return JuxtOuter, KindMatrix
	}
	return JuxtInvalid, KindMatrix
}

// SumKind is the kind of l+r and l-r.
func SumKind(l, r Kind) Kind {
	if l == r {
		return l
	}
	return KindMatrix
}

// KronKind is the kind of l x r.
func KronKind(l, r Kind) Kind {
	switch {
	case l == KindKet && r == KindKet:
		return KindKet
	case l == KindBra && r == KindBra:
		return KindBra
	case l == KindScalar && r == KindScalar:
		return KindScalar
	}
	return KindMatrix
}

// DaggerKind is the kind of k'.
func DaggerKind(k Kind) Kind {
	switch k {
	case KindKet:
		return KindBra
	case KindBra:
		return KindKet
	}
	return k
}

// HasNorm reports whether |x| is defined for kind k.
func HasNorm(k Kind) bool {
	return k != KindMatrix
}
