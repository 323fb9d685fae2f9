// Command dirac is the Dirac notation CLI entry point.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/thomasrohde/dirac/internal/config"
	"github.com/thomasrohde/dirac/internal/logger"
	"github.com/thomasrohde/dirac/pkg/diagnostics"
	"github.com/thomasrohde/dirac/pkg/encoding"
	"github.com/thomasrohde/dirac/pkg/evaluator"
	"github.com/thomasrohde/dirac/pkg/formatter"
	"github.com/thomasrohde/dirac/pkg/help"
	"github.com/thomasrohde/dirac/pkg/runtime"
	"github.com/thomasrohde/dirac/pkg/validator"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// reported marks an error whose message has already been written.
func reported(code int) error { return &exitError{code: code} }

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath  string
	logLevel    string
	logPretty   bool
	pretty      bool
	maxQubits   int
	maxElements int

	cfg *config.Config
	log zerolog.Logger
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return diagnostics.ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, "error:", ee.err)
		}
		return ee.code
	}
	// Anything cobra rejects before a command runs is a usage error.
	fmt.Fprintln(stderr, "error:", err)
	return diagnostics.ExitUsage
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "dirac",
		Short: "Evaluate Dirac (bra-ket) notation",
		Long: `dirac parses and evaluates expressions in Dirac notation such as
(|0> + |1>) / | |0> + |1> | into dense complex tensors.

Run 'dirac topics' for the notation reference.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: $DIRAC_CONFIG)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&a.logPretty, "log-pretty", false, "human readable log output")
	pf.BoolVar(&a.pretty, "pretty", false, "render errors for humans instead of JSON")
	pf.IntVar(&a.maxQubits, "max-qubits", 0, "largest ket register allowed (0 = unlimited)")
	pf.IntVar(&a.maxElements, "max-elements", 0, "largest tensor allowed (0 = unlimited)")

	root.AddCommand(
		a.evalCommand(),
		a.checkCommand(),
		a.fmtCommand(),
		a.parseCommand(),
		a.replCommand(),
		a.topicsCommand(),
		a.versionCommand(),
	)
	return root
}

// setup loads configuration and applies flag overrides.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotenv(); err != nil {
		return &exitError{code: diagnostics.ExitOther, err: err}
	}
	cfg, err := config.LoadOrDefault(config.Path(a.configPath))
	if err != nil {
		return &exitError{code: diagnostics.ExitOther, err: err}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return &exitError{code: diagnostics.ExitOther, err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-pretty") {
		cfg.Log.Pretty = a.logPretty
	}
	if flags.Changed("pretty") {
		cfg.Output.PrettyErrors = a.pretty
	}
	if flags.Changed("max-qubits") {
		cfg.Eval.MaxQubits = a.maxQubits
	}
	if flags.Changed("max-elements") {
		cfg.Eval.MaxElements = a.maxElements
	}
	if err := cfg.Validate(); err != nil {
		return &exitError{code: diagnostics.ExitUsage, err: err}
	}

	a.cfg = cfg
	a.log = logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}, a.stderr)
	return nil
}

func (a *app) runtime(extra ...runtime.Option) *runtime.Runtime {
	opts := []runtime.Option{
		runtime.WithBudget(a.cfg.Eval),
		runtime.WithLogger(a.log),
	}
	return runtime.New(append(opts, extra...)...)
}

// report writes the diagnostic for err and returns its exit code.
func (a *app) report(err error, source string) int {
	d := diagnostics.FromError(err)
	a.printDiagnostics([]diagnostics.Diagnostic{d}, source)
	return diagnostics.ExitCode(d.Code)
}

func (a *app) printDiagnostics(diags []diagnostics.Diagnostic, source string) {
	if !a.cfg.Output.PrettyErrors {
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics(diags, false))
		return
	}
	red := color.New(color.FgRed)
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(a.stderr)
		}
		red.Fprintln(a.stderr, diagnostics.FormatWithSource(d, source))
	}
}

// sources returns the command arguments, or the non-blank lines of stdin
// when there are none.
func (a *app) sources(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var lines []string
	sc := bufio.NewScanner(a.stdin)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &exitError{code: diagnostics.ExitOther, err: fmt.Errorf("reading stdin: %w", err)}
	}
	return lines, nil
}

func (a *app) evalCommand() *cobra.Command {
	var format string
	var staticCheck, normalize bool
	cmd := &cobra.Command{
		Use:   "eval [expr...]",
		Short: "Evaluate expressions (from stdin when none are given)",
		Example: `  dirac eval '<0|1>'
  dirac eval --format table '|1><0|'
  echo '3|0>' | dirac eval --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Output.Format
			}
			sources, err := a.sources(args)
			if err != nil {
				return err
			}
			rt := a.runtime(runtime.WithStaticCheck(staticCheck))
			for _, src := range sources {
				res, err := rt.Run(cmd.Context(), src)
				if err != nil {
					return reported(a.report(err, src))
				}
				v := res.Value
				if normalize {
					unit, err := v.Tensor.Unit()
					if err != nil {
						return &exitError{code: diagnostics.ExitEval, err: fmt.Errorf("cannot normalize %s: %w", src, err)}
					}
					v = &evaluator.Value{Tensor: unit, Kind: v.Kind}
				}
				if err := encoding.Write(a.stdout, format, v); err != nil {
					return &exitError{code: diagnostics.ExitUsage, err: err}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: "+strings.Join(encoding.Formats, ", "))
	cmd.Flags().BoolVar(&staticCheck, "check", false, "check kinds and shapes before evaluating")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "scale each result to unit norm")
	return cmd
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <expr>",
		Short: "Check kinds and shapes without evaluating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			expr, err := a.runtime().Parse(src)
			if err != nil {
				return reported(a.report(err, src))
			}
			info, diags := validator.CheckWithBudget(expr, a.cfg.Eval)
			if len(diags) > 0 {
				a.printDiagnostics(diags, src)
				return reported(diagnostics.ExitCode(diags[0].Code))
			}
			if a.cfg.Output.PrettyErrors {
				fmt.Fprintf(a.stdout, "ok: %s %s\n", info.Kind, info.Shape)
			} else {
				fmt.Fprintln(a.stdout, "[]")
			}
			return nil
		},
	}
}

func (a *app) fmtCommand() *cobra.Command {
	var sexpr bool
	cmd := &cobra.Command{
		Use:   "fmt <expr>",
		Short: "Print an expression in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			expr, err := a.runtime().Parse(src)
			if err != nil {
				return reported(a.report(err, src))
			}
			if sexpr {
				fmt.Fprintln(a.stdout, formatter.SExpr(expr))
			} else {
				fmt.Fprintln(a.stdout, formatter.Format(expr))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sexpr, "sexpr", false, "print the tree as an S-expression")
	return cmd
}

func (a *app) parseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <expr>",
		Short: "Print the expression tree as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			expr, err := a.runtime().Parse(src)
			if err != nil {
				return reported(a.report(err, src))
			}
			b, err := json.MarshalIndent(formatter.Tree(expr), "", "  ")
			if err != nil {
				return &exitError{code: diagnostics.ExitOther, err: err}
			}
			fmt.Fprintln(a.stdout, string(b))
			return nil
		},
	}
}

func (a *app) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.startREPL(cmd.Context())
		},
	}
}

func (a *app) topicsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "topics [name]",
		Short: "Show the notation reference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprint(a.stdout, help.QUICKREF)
				return nil
			}
			_, content, err := help.MatchTopic(args[0])
			if err != nil {
				return &exitError{code: diagnostics.ExitUsage, err: err}
			}
			fmt.Fprint(a.stdout, content)
			return nil
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(a.stdout, "dirac", help.Version)
			return nil
		},
	}
}
