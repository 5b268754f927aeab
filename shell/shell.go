// Package shell implements the interactive namespace-operation REPL: it
// tokenizes a line, dispatches to a Session method, and prints the result
// the way the reference CLI does. It knows nothing about disk layout —
// every command is a thin wrapper over a Session call.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	unixfs "github.com/alveshenriique/unixfs"
)

// Shell drives one REPL session against a single mounted Session.
type Shell struct {
	session *unixfs.Session
	out     io.Writer
}

// New wraps a mounted session for interactive use. Output (prompts, command
// results, errors) is written to out.
func New(session *unixfs.Session, out io.Writer) *Shell {
	return &Shell{session: session, out: out}
}

// Run reads commands from in until EOF or an "exit" command, printing a
// prompt with the current path before each line.
func (sh *Shell) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		path, err := sh.session.GetCurrentPath()
		if err != nil {
			path = "?"
		}
		fmt.Fprintf(sh.out, "unixfs:%s$ ", path)

		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" {
			return nil
		}
		sh.dispatch(line)
	}
}

func (sh *Shell) dispatch(line string) {
	fields := splitArgs(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "ls":
		err = sh.cmdLs()
	case "mkdir":
		err = sh.requireArgs(args, 1, func() error { return sh.session.Mkdir(args[0]) })
	case "rmdir":
		err = sh.requireArgs(args, 1, func() error { return sh.session.Rmdir(args[0]) })
	case "cd":
		err = sh.requireArgs(args, 1, func() error { return sh.session.Cd(args[0]) })
	case "rm":
		err = sh.requireArgs(args, 1, func() error { return sh.session.Rm(args[0]) })
	case "delete":
		err = sh.requireArgs(args, 1, func() error { return sh.session.Delete(args[0]) })
	case "stat":
		err = sh.requireArgs(args, 1, func() error { return sh.cmdStat(args[0]) })
	case "cat":
		err = sh.requireArgs(args, 1, func() error { return sh.cmdCat(args[0]) })
	case "import":
		err = sh.requireArgs(args, 2, func() error { return sh.session.Import(args[0], args[1]) })
	case "rename":
		err = sh.requireArgs(args, 2, func() error { return sh.session.Rename(args[0], args[1]) })
	case "mv":
		err = sh.requireArgs(args, 2, func() error { return sh.session.Mv(args[0], args[1]) })
	case "echo":
		err = sh.cmdEcho(args)
	case "df":
		err = sh.cmdDf(args)
	case "set":
		err = sh.cmdSet(args)
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Fprintf(sh.out, "error: %s\n", err)
	}
}

func (sh *Shell) requireArgs(args []string, n int, f func() error) error {
	if len(args) < n {
		return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}
	return f()
}

func (sh *Shell) cmdLs() error {
	entries, err := sh.session.Ls()
	if err != nil {
		return err
	}
	for _, e := range entries {
		kind := "f"
		if e.Type == 1 {
			kind = "d"
		}
		fmt.Fprintf(sh.out, "%s  %s\n", kind, e.Name)
	}
	return nil
}

func (sh *Shell) cmdStat(name string) error {
	in, err := sh.session.Stat(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "type=%d size=%d links=%d created=%d modified=%d accessed=%d\n",
		in.Type, in.FileSize, in.LinkCount, in.CreatedAt, in.ModifiedAt, in.AccessedAt)
	return nil
}

func (sh *Shell) cmdCat(name string) error {
	data, err := sh.session.Cat(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, string(data))
	return nil
}

func (sh *Shell) cmdEcho(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf(`usage: echo "<text>" <> or >>> <file>`)
	}
	text, op, filename := args[0], args[1], args[2]
	var mode unixfs.WriteOp
	switch op {
	case ">":
		mode = unixfs.OpTruncate
	case ">>":
		mode = unixfs.OpAppend
	default:
		return fmt.Errorf("unknown redirection operator: %s", op)
	}
	return sh.session.Echo(filename, text, mode)
}

func (sh *Shell) cmdDf(args []string) error {
	info, err := sh.session.Df()
	if err != nil {
		return err
	}
	if len(args) > 0 && args[0] == "--export" {
		csv, err := unixfs.DfCSV(info)
		if err != nil {
			return err
		}
		fmt.Fprint(sh.out, csv)
		return nil
	}
	fmt.Fprintf(sh.out, "inodes: %d/%d used, blocks: %d/%d used, %dKB/%dKB\n",
		info.UsedInodes, info.TotalInodes, info.UsedBlocks, info.TotalBlocks, info.UsedKB, info.TotalKB)
	return nil
}

func (sh *Shell) cmdSet(args []string) error {
	if len(args) != 2 || args[0] != "verbose" {
		return fmt.Errorf("usage: set verbose <on|off>")
	}
	return sh.cmdVerbose(args[1])
}

func (sh *Shell) cmdVerbose(arg string) error {
	var on bool
	switch strings.ToLower(arg) {
	case "on":
		on = true
	case "off":
		on = false
	default:
		parsed, err := strconv.ParseBool(arg)
		if err != nil {
			return fmt.Errorf("verbose expects on/off or true/false, got %q", arg)
		}
		on = parsed
	}
	sh.session.SetVerbose(on)
	fmt.Fprintf(sh.out, "verbose logging %s\n", map[bool]string{true: "enabled", false: "disabled"}[on])
	return nil
}

// splitArgs tokenizes a line on whitespace, honoring double-quoted segments
// (so `echo "hello world" > file` keeps its text as one argument).
func splitArgs(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}
