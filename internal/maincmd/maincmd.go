// Package maincmd implements the command-line interface of the calla
// tool: flag handling, usage, and the file, REPL and tokenize modes.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/sirupsen/logrus"

	"github.com/calla-lang/calla/internal/config"
	"github.com/calla-lang/calla/lang/compiler"
	"github.com/calla-lang/calla/lang/machine"
)

const binName = "calla"

// sysexits-style exit codes.
const (
	exitUsage   mainer.ExitCode = 64 // command line usage error
	exitCompile mainer.ExitCode = 65 // source failed to compile
	exitRuntime mainer.ExitCode = 70 // program failed at runtime
	exitIO      mainer.ExitCode = 74 // an input file could not be read
)

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the %[1]s programming language.

With a <path>, compiles and runs the file. Without one, starts an
interactive session where each line is compiled and run against the
same machine state.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --config <path>           Load configuration from <path> instead
                                 of the default location.
       --debug                   Enable debug logging.
       --trace                   Log every instruction as it executes.
       --print-code              Log the disassembled bytecode after
                                 compiling.
       --tokenize                Print the token stream of <path>
                                 instead of running it.

More information on the %[1]s repository:
       https://github.com/calla-lang/calla
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help      bool   `flag:"h,help"`
	Version   bool   `flag:"v,version"`
	Config    string `flag:"config"`
	Debug     bool   `flag:"debug"`
	Trace     bool   `flag:"trace"`
	PrintCode bool   `flag:"print-code"`
	Tokenize  bool   `flag:"tokenize"`

	args []string
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) > 1 {
		return errors.New("at most one file may be provided")
	}
	if c.Tokenize && len(c.args) == 0 {
		return errors.New("tokenize: a file must be provided")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return exitUsage
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return exitIO
	}
	if c.Trace {
		cfg.Debug.Trace = true
	}
	if c.PrintCode {
		cfg.Debug.PrintCode = true
	}
	if c.Debug || cfg.Debug.Trace || cfg.Debug.PrintCode {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetOutput(stdio.Stderr)
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	switch {
	case c.Tokenize:
		return c.tokenize(stdio, c.args[0])
	case len(c.args) == 0:
		return c.repl(ctx, stdio, cfg)
	default:
		return c.runFile(ctx, stdio, cfg, c.args[0])
	}
}

// exitCodeFor prints pending compile diagnostics (runtime diagnostics
// are printed by the machine as they happen) and maps err to the exit
// code of the failed run.
func exitCodeFor(stdio mainer.Stdio, err error) mainer.ExitCode {
	var everr *machine.EvalError
	if errors.As(err, &everr) {
		return exitRuntime
	}
	compiler.PrintError(stdio.Stderr, err)
	return exitCompile
}
