// Package runtime provides the top-level Dirac runtime orchestrator.
package runtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"github.com/thomasrohde/dirac/pkg/ast"
	"github.com/thomasrohde/dirac/pkg/diagnostics"
	"github.com/thomasrohde/dirac/pkg/evaluator"
	"github.com/thomasrohde/dirac/pkg/formatter"
	"github.com/thomasrohde/dirac/pkg/parser"
	"github.com/thomasrohde/dirac/pkg/validator"
)

// Trace event names, in emission order.
const (
	EventRunStart = "run_start"
	EventParseEnd = "parse_end"
	EventCheckEnd = "check_end"
	EventEvalEnd  = "eval_end"
	EventRunEnd   = "run_end"
)

// TraceEvent records one stage of a run.
type TraceEvent struct {
	Timestamp time.Time
	RunID     string
	Event     string
	Span      *ast.Span
	Err       error
}

// Result holds the outcome of an evaluation.
type Result struct {
	Value    *evaluator.Value
	Expr     ast.Expr
	RunID    string
	Duration time.Duration
}

// Runtime wires together the lexer, parser, checker and evaluator.
type Runtime struct {
	budget      evaluator.Budget
	log         zerolog.Logger
	cache       *lru.Cache
	runID       string
	trace       func(event TraceEvent)
	staticCheck bool
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithBudget sets the evaluation budget.
func WithBudget(b evaluator.Budget) Option {
	return func(rt *Runtime) {
		rt.budget = b
	}
}

// WithLogger sets the logger used for stage timings.
func WithLogger(l zerolog.Logger) Option {
	return func(rt *Runtime) {
		rt.log = l
	}
}

// WithParseCache keeps up to size parsed expressions keyed by source text.
// A size of zero or less disables the cache.
func WithParseCache(size int) Option {
	return func(rt *Runtime) {
		if size <= 0 {
			rt.cache = nil
			return
		}
		c, err := lru.New(size)
		if err != nil {
			return
		}
		rt.cache = c
	}
}

// WithRunID fixes the run ID for every run. By default each run gets a
// fresh UUID.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithStaticCheck enables the static kind and shape check before evaluation.
func WithStaticCheck(enabled bool) Option {
	return func(rt *Runtime) {
		rt.staticCheck = enabled
	}
}

// New creates a new Runtime with the given options.
// By default the budget is evaluator.DefaultBudget, logging is disabled and
// there is no parse cache.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		budget: evaluator.DefaultBudget(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Run parses, optionally checks, and evaluates source.
func (rt *Runtime) Run(ctx context.Context, source string) (*Result, error) {
	start := time.Now()
	runID := rt.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := rt.log.With().Str("run_id", runID).Logger()
	rt.emit(runID, EventRunStart, nil, nil)

	res, err := rt.run(ctx, log, runID, source)
	var span *ast.Span
	if res != nil {
		s := res.Expr.NodeSpan()
		span = &s
	}
	rt.emit(runID, EventRunEnd, span, err)
	log.Debug().Str("source", source).Dur("duration", time.Since(start)).Err(err).Msg("run")
	if err != nil {
		return nil, err
	}
	res.Duration = time.Since(start)
	return res, nil
}

func (rt *Runtime) run(ctx context.Context, log zerolog.Logger, runID, source string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t := time.Now()
	expr, cached, err := rt.parse(source)
	log.Debug().Str("stage", "parse").Bool("cached", cached).Dur("duration", time.Since(t)).Msg("stage")
	rt.emit(runID, EventParseEnd, nil, err)
	if err != nil {
		return nil, err
	}

	if rt.staticCheck {
		t = time.Now()
		_, diags := validator.CheckWithBudget(expr, rt.budget)
		err := validator.Err(diags)
		log.Debug().Str("stage", "check").Int("diagnostics", len(diags)).Dur("duration", time.Since(t)).Msg("stage")
		rt.emit(runID, EventCheckEnd, nil, err)
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t = time.Now()
	v, err := evaluator.Evaluate(expr, evaluator.Options{Budget: rt.budget})
	log.Debug().Str("stage", "evaluate").Dur("duration", time.Since(t)).Msg("stage")
	rt.emit(runID, EventEvalEnd, nil, err)
	if err != nil {
		return nil, err
	}
	return &Result{Value: v, Expr: expr, RunID: runID}, nil
}

// Parse returns the expression tree for source, from the cache when enabled.
func (rt *Runtime) Parse(source string) (ast.Expr, error) {
	expr, _, err := rt.parse(source)
	return expr, err
}

func (rt *Runtime) parse(source string) (ast.Expr, bool, error) {
	if rt.cache != nil {
		if v, ok := rt.cache.Get(source); ok {
			return v.(ast.Expr), true, nil
		}
	}
	expr, err := parser.Parse(source, "")
	if err != nil {
		return nil, false, err
	}
	if rt.cache != nil {
		rt.cache.Add(source, expr)
	}
	return expr, false, nil
}

// Check parses and statically checks source without evaluating it.
func (rt *Runtime) Check(source string) []diagnostics.Diagnostic {
	expr, _, err := rt.parse(source)
	if err != nil {
		return []diagnostics.Diagnostic{diagnostics.FromError(err)}
	}
	_, diags := validator.CheckWithBudget(expr, rt.budget)
	return diags
}

// Format parses source and renders it in canonical form.
func (rt *Runtime) Format(source string) (string, error) {
	expr, _, err := rt.parse(source)
	if err != nil {
		return "", err
	}
	return formatter.Format(expr), nil
}

func (rt *Runtime) emit(runID, event string, span *ast.Span, err error) {
	if rt.trace == nil {
		return
	}
	rt.trace(TraceEvent{
		Timestamp: time.Now(),
		RunID:     runID,
		Event:     event,
		Span:      span,
		Err:       err,
	})
}
