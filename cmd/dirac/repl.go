package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/thomasrohde/dirac/pkg/encoding"
	"github.com/thomasrohde/dirac/pkg/formatter"
	"github.com/thomasrohde/dirac/pkg/help"
	"github.com/thomasrohde/dirac/pkg/runtime"
)

const (
	banner = "dirac " + help.Version + " - type :help for commands, :quit to exit"
	prompt = "dirac> "
)

// prompter is the part of *liner.State the console loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func (a *app) startREPL(ctx context.Context) error {
	fmt.Fprintln(a.stdout, banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := a.cfg.HistoryPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	rt := a.runtime(runtime.WithParseCache(a.cfg.REPL.ParseCache))
	a.console(ctx, ln, rt)
	return nil
}

// console reads lines until :quit or end of input.
func (a *app) console(ctx context.Context, p prompter, rt *runtime.Runtime) {
	red := color.New(color.FgRed).SprintFunc()
	for {
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(a.stdout)
			return
		}
		if err != nil {
			fmt.Fprintln(a.stderr, red(err.Error()))
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		p.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			if quit := a.consoleCommand(line, rt); quit {
				return
			}
			continue
		}

		res, err := rt.Run(ctx, line)
		if err != nil {
			fmt.Fprintln(a.stderr, red(fmt.Sprintf("cannot interpret `%s` as dirac notation: %v", line, err)))
			continue
		}
		fmt.Fprintln(a.stdout, encoding.Text(res.Value))
	}
}

func (a *app) consoleCommand(line string, rt *runtime.Runtime) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case ":quit", ":q":
		return true
	case ":help":
		if arg == "" {
			fmt.Fprint(a.stdout, help.QUICKREF)
			fmt.Fprintln(a.stdout, "Console: :ast <expr>, :help [topic], :quit")
			return false
		}
		_, content, err := help.MatchTopic(arg)
		if err != nil {
			fmt.Fprintln(a.stderr, err)
			return false
		}
		fmt.Fprint(a.stdout, content)
	case ":ast":
		expr, err := rt.Parse(arg)
		if err != nil {
			fmt.Fprintf(a.stderr, "cannot parse `%s`: %v\n", arg, err)
			return false
		}
		fmt.Fprintln(a.stdout, formatter.SExpr(expr))
	default:
		fmt.Fprintf(a.stdout, "unknown command %s. Type :help for commands.\n", name)
	}
	return false
}
