package maincmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/chzyer/readline"
	"github.com/mna/mainer"

	"github.com/calla-lang/calla/internal/config"
	"github.com/calla-lang/calla/lang/compiler"
	"github.com/calla-lang/calla/lang/machine"
)

// repl reads lines and interprets each one against the same machine, so
// globals and interned strings persist for the whole session. Errors
// are non-fatal: the loop continues with a fresh line. EOF exits with
// success.
func (c *Cmd) repl(ctx context.Context, stdio mainer.Stdio, cfg *config.Config) mainer.ExitCode {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      cfg.REPL.Prompt,
		HistoryFile: cfg.REPL.HistoryFile,
		Stdout:      stdio.Stdout,
		Stderr:      stdio.Stderr,
	})
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return exitIO
	}
	defer rl.Close()

	m := &machine.Machine{
		Stdout: stdio.Stdout,
		Stderr: stdio.Stderr,
		Trace:  cfg.Debug.Trace,
	}

	for ctx.Err() == nil {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err != nil {
			// EOF or closed input ends the session
			break
		}

		if err := m.Interpret(ctx, "repl", []byte(line)); err != nil {
			var everr *machine.EvalError
			if !errors.As(err, &everr) {
				compiler.PrintError(stdio.Stderr, err)
			}
		}
	}
	return mainer.Success
}
