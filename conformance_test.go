package dirac_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/thomasrohde/dirac/internal/testutil"
	"github.com/thomasrohde/dirac/pkg/diagnostics"
	"github.com/thomasrohde/dirac/pkg/evaluator"
	"github.com/thomasrohde/dirac/pkg/formatter"
	"github.com/thomasrohde/dirac/pkg/parser"
	"github.com/thomasrohde/dirac/pkg/runtime"
	"github.com/thomasrohde/dirac/pkg/tensor"
	"github.com/thomasrohde/dirac/pkg/validator"
)

func TestConformance(t *testing.T) {
	scenarios, err := testutil.LoadAll(testutil.ScenariosDir)
	if err != nil {
		t.Fatalf("failed to load scenarios: %v", err)
	}
	if len(scenarios) == 0 {
		t.Fatal("no scenarios found")
	}

	for _, s := range scenarios {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			switch s.Cmd {
			case "eval":
				runEvalScenario(t, &s)
			case "check":
				runCheckScenario(t, &s)
			case "fmt":
				runFmtScenario(t, &s)
			default:
				t.Fatalf("%s: unsupported command: %s", s.File, s.Cmd)
			}
		})
	}
}

func runEvalScenario(t *testing.T, s *testutil.Scenario) {
	t.Helper()

	rt := runtime.New(runtime.WithBudget(s.EvalBudget()), runtime.WithRunID("test"))
	result, err := rt.Run(context.Background(), s.Input)
	if err != nil {
		checkErrorExpectations(t, err, s)
		return
	}
	checkExitCode(t, diagnostics.ExitOK, s)

	v := result.Value
	if s.Expect.Kind != "" && v.Kind.String() != s.Expect.Kind {
		t.Errorf("kind: got %s, want %s", v.Kind, s.Expect.Kind)
	}
	checkShape(t, v.Shape(), s)
	if s.Expect.Data != nil {
		got := make([]string, 0, v.Tensor.Len())
		for _, c := range v.Tensor.Data() {
			got = append(got, tensor.FormatComplex(c))
		}
		if strings.Join(got, " ") != strings.Join(s.Expect.Data, " ") {
			t.Errorf("data:\n  got:  %v\n  want: %v", got, s.Expect.Data)
		}
	}
}

func runCheckScenario(t *testing.T, s *testutil.Scenario) {
	t.Helper()

	expr, err := parser.Parse(s.Input, "")
	if err != nil {
		checkErrorExpectations(t, err, s)
		return
	}
	info, diags := validator.CheckWithBudget(expr, s.EvalBudget())
	if len(diags) > 0 {
		checkErrorExpectations(t, validator.Err(diags), s)
		return
	}
	checkExitCode(t, diagnostics.ExitOK, s)
	if s.Expect.Kind != "" && info.Kind.String() != s.Expect.Kind {
		t.Errorf("kind: got %s, want %s", info.Kind, s.Expect.Kind)
	}
	checkShape(t, info.Shape, s)
}

func runFmtScenario(t *testing.T, s *testutil.Scenario) {
	t.Helper()

	expr, err := parser.Parse(s.Input, "")
	if err != nil {
		checkErrorExpectations(t, err, s)
		return
	}
	checkExitCode(t, diagnostics.ExitOK, s)
	if got := formatter.Format(expr); got != s.Expect.Text {
		t.Errorf("fmt: got %q, want %q", got, s.Expect.Text)
	}
}

func checkErrorExpectations(t *testing.T, err error, s *testutil.Scenario) {
	t.Helper()

	diag := diagnostics.FromError(err)
	checkExitCode(t, diagnostics.ExitCode(diag.Code), s)
	if s.Expect.ExitCode == diagnostics.ExitOK {
		t.Errorf("unexpected error: %v", err)
		return
	}

	if s.Expect.Code != "" && diag.Code != s.Expect.Code {
		t.Errorf("code: got %s, want %s (%v)", diag.Code, s.Expect.Code, err)
	}
	if s.Expect.Error != "" {
		var ee *evaluator.EvalError
		if !errors.As(err, &ee) {
			t.Errorf("expected *evaluator.EvalError, got %T: %v", err, err)
		} else if string(ee.Kind) != s.Expect.Error {
			t.Errorf("error kind: got %s, want %s", ee.Kind, s.Expect.Error)
		}
	}
	if s.Expect.ErrorContains != "" && !strings.Contains(err.Error(), s.Expect.ErrorContains) {
		t.Errorf("error should contain %q, got: %v", s.Expect.ErrorContains, err)
	}
	if s.Expect.Offset != nil {
		if diag.Span == nil {
			t.Errorf("offset: diagnostic has no span, want %d", *s.Expect.Offset)
		} else if diag.Span.Offset != *s.Expect.Offset {
			t.Errorf("offset: got %d, want %d", diag.Span.Offset, *s.Expect.Offset)
		}
	}
}

func checkExitCode(t *testing.T, got int, s *testutil.Scenario) {
	t.Helper()
	if got != s.Expect.ExitCode {
		t.Errorf("exit code: got %d, want %d", got, s.Expect.ExitCode)
	}
}

func checkShape(t *testing.T, got tensor.Shape, s *testutil.Scenario) {
	t.Helper()
	if s.Expect.Shape == nil {
		return
	}
	if len(s.Expect.Shape) != 2 {
		t.Fatalf("%s: shape must have two entries", s.File)
	}
	want := tensor.Shape{Rows: s.Expect.Shape[0], Cols: s.Expect.Shape[1]}
	if got != want {
		t.Errorf("shape: got %s, want %s", got, want)
	}
}

// Every reference scenario must be present.
func TestReferenceScenariosPresent(t *testing.T) {
	if _, err := os.Stat(testutil.ScenariosDir); err != nil {
		t.Fatalf("scenarios directory not found: %v", err)
	}
	scenarios, err := testutil.LoadAll(testutil.ScenariosDir)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, s := range scenarios {
		for _, tag := range s.Tags {
			if tag == "reference" {
				n++
			}
		}
	}
	if n != 6 {
		t.Errorf("expected 6 reference scenarios, got %d", n)
	}
}
