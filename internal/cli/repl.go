package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/jseval"
	"github.com/aretw0/jseval/internal/presentation/tui"
	"github.com/aretw0/jseval/pkg/ports"
	"golang.org/x/term"
)

const replHelp = `# jseval REPL

Type a JavaScript expression and press **Enter** to evaluate it.
End a line with ` + "`\\`" + ` to continue the expression on the next line.

| Command | Description |
|---|---|
| ` + "`.help`" + ` | Show this help |
| ` + "`.bootstrap`" + ` | Print the script that installs the entry point in a host |
| ` + "`.journal [n]`" + ` | Show the last n journaled scripts (needs --journal) |
| ` + "`.exit`" + ` | Leave the REPL |
`

// REPL reads expressions line by line and prints their results.
type REPL struct {
	env         *environment
	opts        Options
	out         io.Writer
	style       tui.Styler
	render      func(string) (string, error)
	interactive bool
}

// RunREPL starts an interactive session over in and out. When in is a terminal the
// session shows a banner, colors and a prompt.
func RunREPL(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	env, err := setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	r := newREPL(env, opts, out, isTerminal(in))
	return handleExecutionError(r.Run(ctx, in))
}

func newREPL(env *environment, opts Options, out io.Writer, interactive bool) *REPL {
	r := &REPL{
		env:         env,
		opts:        opts,
		out:         out,
		style:       tui.NewStyler(interactive),
		interactive: interactive,
		render:      func(md string) (string, error) { return md, nil },
	}
	if interactive {
		r.render = tui.NewRenderer()
	}
	return r
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run processes input until .exit, end of input or cancellation of ctx.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	if r.interactive {
		tui.PrintBanner(r.out, jseval.Version)
	}

	scanner := bufio.NewScanner(NewInterruptibleReader(in, ctx.Done()))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var pending strings.Builder
	for {
		r.prompt(pending.Len() > 0)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return nil
		}

		line := scanner.Text()
		if strings.HasSuffix(line, "\\") {
			pending.WriteString(strings.TrimSuffix(line, "\\"))
			pending.WriteByte('\n')
			continue
		}
		pending.WriteString(line)
		input := strings.TrimSpace(pending.String())
		pending.Reset()

		if input == "" {
			continue
		}
		if strings.HasPrefix(input, ".") {
			if done := r.command(ctx, input); done {
				return nil
			}
			continue
		}
		r.evaluate(ctx, input)
	}
}

func (r *REPL) prompt(continuation bool) {
	if !r.interactive {
		return
	}
	if continuation {
		fmt.Fprint(r.out, r.style.Prompt("... "))
		return
	}
	fmt.Fprint(r.out, r.style.Prompt("> "))
}

func (r *REPL) evaluate(ctx context.Context, script string) {
	result, err := r.env.evaluate(ctx, script, r.opts)
	if err != nil {
		fmt.Fprintln(r.out, r.style.Error("error: "+err.Error()))
		return
	}
	fmt.Fprintln(r.out, r.style.Result(formatResult(result, false)))
}

// command runs a dot command and reports whether the session should end.
func (r *REPL) command(ctx context.Context, input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	switch name {
	case ".exit", ".quit":
		printSystemMessage(r.out, "Bye!")
		return true
	case ".help":
		text, err := r.render(replHelp)
		if err != nil {
			text = replHelp
		}
		fmt.Fprint(r.out, text)
	case ".bootstrap":
		fmt.Fprint(r.out, ports.Bootstrap)
	case ".journal":
		r.showJournal(ctx, strings.TrimSpace(arg))
	default:
		fmt.Fprintln(r.out, r.style.Error("unknown command "+name+", try .help"))
	}
	return false
}

func (r *REPL) showJournal(ctx context.Context, arg string) {
	if r.env.journal == nil {
		fmt.Fprintln(r.out, r.style.Error("journal disabled, start with --journal <path>"))
		return
	}
	limit := 10
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			fmt.Fprintln(r.out, r.style.Error("usage: .journal [n]"))
			return
		}
		limit = n
	}

	entries, err := r.env.journal.Entries(ctx, limit)
	if err != nil {
		fmt.Fprintln(r.out, r.style.Error("error: "+err.Error()))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(r.out, "%4d  %s  %s\n", e.ID, e.Timestamp.Format("15:04:05.000"), e.Script)
	}
}
