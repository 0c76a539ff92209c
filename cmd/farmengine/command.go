// Command farmengine is a thin CLI wrapper over pkg/engine (spec.md
// §6.2's query/insert/index surface, plus export and join), using a
// pflag-based command dispatch and a liner-based REPL.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
)

// exitInvalidArgs and exitStorageError are spec.md §6.2's exit codes;
// 0 (success) is the zero value returned implicitly.
const (
	exitInvalidArgs  = 1
	exitStorageError = 2
)

// exitCodeFor classifies an operation error per spec.md §6.2: Corrupted,
// WrongInputFile, NoFields, and Incomplete are storage errors (exit 2);
// everything else is treated as a usage error (exit 1).
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, engineerr.ErrCorrupted),
		errors.Is(err, engineerr.ErrWrongInput),
		errors.Is(err, engineerr.ErrNoFields),
		errors.Is(err, engineerr.ErrIncomplete):
		return exitStorageError
	default:
		return exitInvalidArgs
	}
}

// command is one farmengine subcommand.
type command struct {
	name  string
	short string
	exec  func(args []string, out, errOut io.Writer) int
}

func commands() []command {
	return []command{
		{"index", "Bulk-index an input CSV and create/open its table", runIndex},
		{"insert", "AVL-insert a new gid and append its record", runInsert},
		{"query", "Look up a gid and print its joined record", runQuery},
		{"export", "Export a joined view to CSV or JSON", runExport},
		{"join", "Majority-vote merge two or more sources", runJoin},
		{"repl", "Start an interactive session against one source", runREPL},
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	cmds := commands()

	if len(args) == 0 {
		printUsage(errOut, cmds)
		return exitInvalidArgs
	}

	name := args[0]
	if name == "-h" || name == "--help" {
		printUsage(out, cmds)
		return 0
	}

	for _, c := range cmds {
		if c.name == name {
			return c.exec(args[1:], out, errOut)
		}
	}

	fmt.Fprintf(errOut, "error: unknown command %q\n", name)
	printUsage(errOut, cmds)
	return exitInvalidArgs
}

func printUsage(w io.Writer, cmds []command) {
	fmt.Fprintln(w, "Usage: farmengine <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range cmds {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.short)
	}
}

// newFlagSet returns a pflag.FlagSet that writes its usage/error output
// to errOut.
func newFlagSet(name string, errOut io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)
	return fs
}
