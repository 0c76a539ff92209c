package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/engine"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/record"
)

// runREPL starts an interactive session against one source, modeled on
// the slotcache CLI's liner-based loop: history file, tab completion,
// and a command-per-line dispatch.
func runREPL(args []string, out, errOut io.Writer) int {
	fs := newFlagSet("repl", errOut)
	indexPath := fs.String("index", "", "path to the .fmbindex file")
	tablePath := fs.String("table", "", "path to the .fmtable file")
	inputPath := fs.String("input", "", "path to the source CSV")
	name := fs.String("name", "", "store name")
	fields := fs.StringArray("field", nil, "schema field, name:type[:cap] (repeatable, first run only)")

	if err := fs.Parse(args); err != nil {
		return exitInvalidArgs
	}
	if *indexPath == "" || *tablePath == "" || *inputPath == "" || *name == "" {
		fmt.Fprintln(errOut, "error: --index, --table, --input and --name are required")
		return exitInvalidArgs
	}

	schema, err := parseSchema(*fields)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitInvalidArgs
	}

	e, err := engine.Open(zap.NewNop(), fsx.NewReal(), *indexPath, *tablePath, *inputPath,
		*name, uuid.New(), schema, false, false)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitCodeFor(err)
	}

	r := &repl{e: e, out: out}
	return r.run()
}

type repl struct {
	e     *engine.Engine
	out   io.Writer
	liner *liner.State
}

func replHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".farmengine_history")
}

func (r *repl) run() int {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(replHistoryFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(r.out, "farmengine repl (indexed=%d records=%d)\n",
		r.e.Source.Index.Header().IndexedCount, r.e.Source.Table.Header().RecordCount)
	fmt.Fprintln(r.out, "Type 'help' for available commands.")

	for {
		line, err := r.liner.Prompt("farmengine> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Fprintln(r.out, "\nBye!")
				break
			}
			fmt.Fprintf(r.out, "error reading input: %v\n", err)
			return exitInvalidArgs
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			r.saveHistory()
			return 0
		case "help", "?":
			r.printHelp()
		case "query", "get":
			r.cmdQuery(args)
		case "insert", "put":
			r.cmdInsert(args)
		case "info":
			r.cmdInfo()
		default:
			fmt.Fprintf(r.out, "unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()
	return 0
}

func (r *repl) saveHistory() {
	if path := replHistoryFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *repl) completer(line string) []string {
	cmds := []string{"query", "get", "insert", "put", "info", "help", "exit", "quit", "q"}
	var out []string
	lower := strings.ToLower(line)
	for _, c := range cmds {
		if strings.HasPrefix(c, lower) {
			out = append(out, c)
		}
	}
	return out
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  query <gid>                    Look up a gid")
	fmt.Fprintln(r.out, "  insert <gid> [name=value ...]  AVL-insert a gid and set record fields")
	fmt.Fprintln(r.out, "  info                           Show store counts")
	fmt.Fprintln(r.out, "  help                           Show this help")
	fmt.Fprintln(r.out, "  exit / quit / q                Exit")
}

func (r *repl) cmdQuery(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(r.out, "Usage: query <gid>")
		return
	}

	slot, ok, err := r.e.Query(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return
	}
	if !ok {
		fmt.Fprintln(r.out, "(not found)")
		return
	}

	fmt.Fprintf(r.out, "status=%s spent_time=%d\n", slot.Index.Status, slot.Index.SpentTime)
	for _, f := range r.e.Source.Table.Schema().Fields() {
		if v, ok := slot.Record.Get(f.Name); ok {
			fmt.Fprintf(r.out, "  %s = %s\n", f.Name, v.String())
		}
	}
}

func (r *repl) cmdInsert(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(r.out, "Usage: insert <gid> [name=value ...]")
		return
	}

	gid := args[0]
	values := make(map[string]record.Value, len(args)-1)
	for _, kv := range args[1:] {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			fmt.Fprintf(r.out, "invalid field assignment %q, want name=value\n", kv)
			return
		}
		v, err := parseValue(r.e.Source.Table.Schema(), parts[0], parts[1])
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return
		}
		values[parts[0]] = v
	}

	slot, inserted, err := r.e.Insert(gid, values)
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return
	}
	if inserted {
		fmt.Fprintf(r.out, "OK: inserted %q at slot %d\n", gid, slot)
	} else {
		fmt.Fprintf(r.out, "OK: %q already indexed at slot %d\n", gid, slot)
	}
}

func (r *repl) cmdInfo() {
	fmt.Fprintf(r.out, "Indexed count: %s\n", humanize.Comma(int64(r.e.Source.Index.Header().IndexedCount)))
	fmt.Fprintf(r.out, "Record count:  %s\n", humanize.Comma(int64(r.e.Source.Table.Header().RecordCount)))
	fmt.Fprintf(r.out, "Input path:    %s\n", r.e.Source.InputPath)
}
