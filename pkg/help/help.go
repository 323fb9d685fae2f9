// Package help holds the reference text shown by `dirac topics` and the
// REPL's :help command.
package help

import (
	"fmt"
	"sort"
	"strings"
)

// Version is the notation and tool version reported by the CLI.
const Version = "v0.1.0"

// QUICKREF is the one-screen summary printed when no topic is given.
var QUICKREF = `dirac ` + Version + ` - Dirac notation calculator

  |0>  |101>        kets (column basis vectors)
  <0|  <11|         bras (row basis vectors)
  <0|1>  |0><1|     inner and outer products by juxtaposition
  |0> x |1>         kronecker (tensor) product
  |a|               norm of a ket, bra or scalar
  a'                conjugate transpose
  + - / -a  2|0>    arithmetic and scaling

Topics: syntax, kinds, operators, budget, diagnostics, examples
Run 'dirac topics <name>' for details.
`

// TopicList is the display order of Topics.
var TopicList = []string{"syntax", "kinds", "operators", "budget", "diagnostics", "examples"}

// Topics maps topic names to their text.
var Topics = map[string]string{
	"syntax": `SYNTAX

  expr      := additive
  additive  := juxt (('+' | '-') juxt)*
  juxt      := kron (['*' | '.'] kron)*
  kron      := quotient ('x' quotient)*
  quotient  := unary ('/' unary)*
  unary     := '-' unary | postfix
  postfix   := primary ("'")*
  primary   := '|' BITS '>' | '<' BITS '|' | '|' expr '|' | '(' expr ')' | NUMBER

Whitespace is ignored. Numbers are real decimals such as 2, 0.5 or 1e-3.
Inside a norm the next bar that does not open a ket closes it, so
| |0> + |1> | is the norm of a sum. Use parentheses to nest norms.
`,
	"kinds": `KINDS

  ket     column vector, shape (2^n, 1)
  bra     row vector, shape (1, 2^n)
  scalar  shape (1, 1)
  matrix  anything else, such as the outer product |0><1|

The dagger ' swaps ket and bra. A norm is always a scalar.
`,
	"operators": `OPERATORS (loosest first)

  a + b, a - b   elementwise; shapes must match exactly
  a b, a * b     juxtaposition, also written a . b:
                   scalar with anything   scaling
                   bra then ket           inner product
                   ket then bra           outer product
                   anything else          error (use x for ket x ket)
  a x b          kronecker product
  a / b          b must be a non-zero scalar
  -a             negation
  a'             conjugate transpose
`,
	"budget": `BUDGET

Registers are dense, so memory grows as 2^n. The default budget allows
kets of up to 20 qubits and tensors of up to 4194304 elements. Override it
with [eval] max_qubits and max_elements in the config file or with
DIRAC_MAX_QUBITS and DIRAC_MAX_ELEMENTS. Zero means unlimited.
`,
	"diagnostics": `DIAGNOSTICS

  E_LEX        unrecognized character or malformed number
  E_PARSE      syntax error, such as an unmatched bracket
  E_SHAPE      operand shapes are incompatible
  E_DIMENSION  norm of a matrix
  E_OPERAND    operation not defined for the operand kinds
  E_DIV_ZERO   divisor evaluates to zero
  E_BUDGET     result would exceed the evaluation budget

'dirac check' reports shape and kind errors without evaluating.
Exit codes: 1 usage, 2 lex/parse, 3 evaluation, 4 other.
`,
	"examples": `EXAMPLES

  dirac eval '<0|1>'                       0+0i
  dirac eval '(|0> + |1>) / ||0> + |1>|'   normalized plus state
  dirac eval --format table '|1><0|'
  dirac eval '|0> x |1>'                   same as |01>
  dirac fmt '( |0>+|1> )/2'                (|0> + |1>) / 2
  dirac check '|0> + |01>'                 E_SHAPE
`,
}

// MatchTopic resolves name by exact match, then by unique prefix.
func MatchTopic(name string) (string, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if content, ok := Topics[name]; ok {
		return name, content, nil
	}
	var matches []string
	for _, topic := range TopicList {
		if strings.HasPrefix(topic, name) {
			matches = append(matches, topic)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown topic %q (available: %s)", name, strings.Join(TopicList, ", "))
	}
	sort.Strings(matches)
	return "", "", fmt.Errorf("ambiguous topic %q matches %s", name, strings.Join(matches, ", "))
}
