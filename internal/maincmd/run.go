package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/calla-lang/calla/internal/config"
	"github.com/calla-lang/calla/lang/machine"
)

func (c *Cmd) runFile(ctx context.Context, stdio mainer.Stdio, cfg *config.Config, path string) mainer.ExitCode {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return exitIO
	}

	m := &machine.Machine{
		Stdout: stdio.Stdout,
		Stderr: stdio.Stderr,
		Trace:  cfg.Debug.Trace,
	}
	if err := m.Interpret(ctx, path, src); err != nil {
		return exitCodeFor(stdio, err)
	}
	return mainer.Success
}
