// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// gosh is a proof of concept shell built on top of [interp].
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/google/renameio/v2"
	"golang.org/x/term"

	"github.com/shellgei/gosh/fileutil"
	"github.com/shellgei/gosh/interp"
	"github.com/shellgei/gosh/syntax"
)

// cliFlags holds the result of parsing gosh's getopts-style argument list:
// -c COMMAND, -s, -i, -l, -x, -v, -e, -u, -o OPTION (repeatable), and --.
type cliFlags struct {
	command     string
	hasCommand  bool
	stdinScript bool
	interactive bool
	login       bool
	setArgs     []string // collected -x/-v/-e/-u/-o flags, passed to interp.Params
	args        []string // remaining positional arguments: script path (maybe) + $1, $2, ...
}

func parseArgs(argv []string) (cliFlags, error) {
	var f cliFlags
	i := 0
	for ; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			i++
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			break
		}
		switch arg {
		case "-c":
			if i+1 >= len(argv) {
				return f, fmt.Errorf("-c: missing command argument")
			}
			i++
			f.command = argv[i]
			f.hasCommand = true
		case "-s":
			f.stdinScript = true
		case "-i":
			f.interactive = true
		case "-l", "--login":
			f.login = true
		case "-x", "-v", "-e", "-u":
			f.setArgs = append(f.setArgs, arg)
		case "-o", "+o":
			if i+1 >= len(argv) {
				return f, fmt.Errorf("%s: missing option name", arg)
			}
			i++
			f.setArgs = append(f.setArgs, arg, argv[i])
		default:
			return f, fmt.Errorf("unrecognized option: %q", arg)
		}
	}
	f.args = argv[i:]
	return f, nil
}

func main() {
	err := runAll(os.Args[1:])
	var es interp.ExitStatus
	if errors.As(err, &es) {
		os.Exit(int(es))
	}
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAll(argv []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags, err := parseArgs(argv)
	if err != nil {
		return err
	}

	opts := []interp.RunnerOption{
		interp.Interactive(flags.interactive),
		interp.StdIO(os.Stdin, os.Stdout, os.Stderr),
	}
	if len(flags.setArgs) > 0 {
		opts = append(opts, interp.Params(flags.setArgs...))
	}

	r, err := interp.New(opts...)
	if err != nil {
		return err
	}

	if flags.login {
		if err := sourceProfile(ctx, r); err != nil {
			return err
		}
	}

	if flags.hasCommand {
		name := "gosh"
		rest := flags.args
		if len(rest) > 0 {
			name, rest = rest[0], rest[1:]
		}
		if err := interp.Params(rest...)(r); err != nil {
			return err
		}
		return run(ctx, r, strings.NewReader(flags.command), name)
	}
	if flags.stdinScript || (!flags.interactive && len(flags.args) == 0 && !term.IsTerminal(int(os.Stdin.Fd()))) {
		return run(ctx, r, os.Stdin, "")
	}
	if len(flags.args) == 0 {
		if flags.interactive || term.IsTerminal(int(os.Stdin.Fd())) {
			return runInteractive(r, os.Stdin, os.Stdout, os.Stderr)
		}
		return run(ctx, r, os.Stdin, "")
	}
	if err := interp.Params(flags.args[1:]...)(r); err != nil {
		return err
	}
	return runPath(ctx, r, flags.args[0], true)
}

// sourceProfile runs the login-shell startup file, if one is found under the
// user's home directory. Absence of the file is not an error.
func sourceProfile(ctx context.Context, r *interp.Runner) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return runPath(ctx, r, home+"/.goshrc", false)
}

func run(ctx context.Context, r *interp.Runner, reader io.Reader, name string) error {
	src, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	prog, err := syntax.Parse(src, name, 0)
	if err != nil {
		return err
	}
	r.Reset()
	return r.Run(ctx, prog)
}

// runPath sources the file at path, skipping it silently if it doesn't
// exist. When requireScript is set (the path came straight off argv rather
// than from an internal lookup like sourceProfile's dotfile), a path that
// fileutil is certain isn't a shell script — a directory, a symlink, or a
// file with some other language's extension — is refused up front instead
// of being handed to the parser.
func runPath(ctx context.Context, r *interp.Runner, path string, requireScript bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if requireScript && fileutil.CouldBeScript(info) == fileutil.ConfNotScript {
		return fmt.Errorf("%s: not a shell script", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return run(ctx, r, f, path)
}

// historyPath locates gosh's persisted command history under the user's XDG
// state directory, creating the containing directory if needed.
func historyPath() string {
	path, err := xdg.StateFile("gosh/history")
	if err != nil {
		return ""
	}
	return path
}

// runInteractive drives an interactive session, accumulating input until the
// parser reports a complete program, at which point each resulting statement
// is run immediately so that side effects like directory changes are visible
// to the next prompt. When stdin is a real terminal, a line editor with
// history and line editing takes over; otherwise (pipes, the test suite) a
// plain line-at-a-time reader is used, since a terminal line editor cannot
// drive a non-terminal file descriptor.
func runInteractive(r *interp.Runner, stdin io.Reader, stdout, stderr io.Writer) error {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return runInteractiveReadline(r, stdout, stderr)
	}
	return runInteractivePlain(r, stdin, stdout, stderr)
}

// runInteractiveReadline is the rich interactive loop used when gosh owns a
// real terminal: it gets history persistence and line editing from
// [readline.Instance].
func runInteractiveReadline(r *interp.Runner, stdout, stderr io.Writer) error {
	histPath := historyPath()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptString(r, "PS1", "$ "),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          stdout,
		Stderr:          stderr,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	var history []string
	if data, err := os.ReadFile(histPath); err == nil {
		history = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		for _, line := range history {
			rl.SaveHistory(line)
		}
	}
	defer saveHistory(histPath, history)

	var buf strings.Builder
	for {
		rl.SetPrompt(promptString(r, "PS1", "$ "))
		if buf.Len() > 0 {
			rl.SetPrompt(promptString(r, "PS2", "> "))
		}
		line, err := rl.Readline()
		switch {
		case err == readline.ErrInterrupt:
			buf.Reset()
			continue
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		prog, perr := syntax.Parse([]byte(buf.String()), "", 0)
		if perr != nil {
			if incompleteErr(perr) {
				continue // wait for more input, keep buf around
			}
			color.New(color.FgRed).Fprintln(stderr, perr)
			buf.Reset()
			continue
		}

		if trimmed := strings.TrimSpace(buf.String()); trimmed != "" {
			history = append(history, trimmed)
			rl.SaveHistory(trimmed)
		}
		buf.Reset()

		err = r.Run(context.Background(), prog)
		if r.Exited() {
			return err
		}
		if err != nil {
			color.New(color.FgRed).Fprintln(stderr, err)
		}
	}
}

// runInteractivePlain drives the same accumulate-parse-run loop as
// [runInteractiveReadline] but over a plain [bufio.Reader], with no cursor
// control or history: the right fit for piped input, since a piped stdin
// can't be put in raw terminal mode.
func runInteractivePlain(r *interp.Runner, stdin io.Reader, stdout, stderr io.Writer) error {
	br := bufio.NewReader(stdin)
	var buf strings.Builder

	fmt.Fprint(stdout, promptString(r, "PS1", "$ "))
	for {
		line, rerr := br.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return rerr
		}
		buf.WriteString(line)

		if rerr == io.EOF && line == "" {
			if buf.Len() == 0 {
				return nil
			}
			_, perr := syntax.Parse([]byte(buf.String()), "", 0)
			if perr != nil {
				return perr
			}
			return nil
		}

		prog, perr := syntax.Parse([]byte(buf.String()), "", 0)
		if perr != nil {
			if incompleteErr(perr) {
				fmt.Fprint(stdout, promptString(r, "PS2", "> "))
				continue
			}
			fmt.Fprintln(stderr, perr)
			buf.Reset()
			fmt.Fprint(stdout, promptString(r, "PS1", "$ "))
			continue
		}
		buf.Reset()

		runErr := r.Run(context.Background(), prog)
		if r.Exited() {
			return runErr
		}
		if runErr != nil {
			fmt.Fprintln(stderr, runErr)
		}
		fmt.Fprint(stdout, promptString(r, "PS1", "$ "))
	}
}

// incompleteErr reports whether a parse error is the kind produced by a
// statement that is missing its closing token (an unterminated quote,
// here-doc, or compound command), meaning the line editor should keep
// reading more input instead of reporting the error.
func incompleteErr(err error) bool {
	var perr *syntax.ParseError
	if !errors.As(err, &perr) {
		return false
	}
	return strings.Contains(perr.Text, "EOF") || strings.Contains(perr.Text, "unclosed")
}

// saveHistory atomically persists the session's command history, so a
// crash mid-write never leaves a truncated or corrupted history file.
func saveHistory(path string, history []string) {
	if path == "" || len(history) == 0 {
		return
	}
	const limit = 2000
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	data := []byte(strings.Join(history, "\n") + "\n")
	_ = renameio.WriteFile(path, data, 0o600)
}

// promptString looks up a prompt variable such as PS1/PS2 in the process
// environment, falling back to a plain default if it is unset. Bash's prompt
// escapes such as "\w" are not expanded.
func promptString(r *interp.Runner, name, fallback string) string {
	if vr := r.Env.Get(name); vr.IsSet() {
		return vr.String()
	}
	return fallback
}
