package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/jseval"
)

// EvalOptions select what the eval command runs.
type EvalOptions struct {
	Script string
	// File is read instead of Script; "-" reads stdin.
	File string
	// Compact prints results on a single line.
	Compact bool
}

// RunEval evaluates one script and prints its JSON result to out.
func RunEval(ctx context.Context, opts Options, eval EvalOptions, in io.Reader, out io.Writer) error {
	script, err := eval.source(in)
	if err != nil {
		return err
	}

	env, err := setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.evaluate(ctx, script, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatResult(result, eval.Compact))
	return nil
}

func (e EvalOptions) source(in io.Reader) (string, error) {
	switch e.File {
	case "":
		if e.Script == "" {
			return "", fmt.Errorf("nothing to evaluate: pass a script or --file")
		}
		return e.Script, nil
	case "-":
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(e.File)
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(data), nil
}

// evaluate sends script through a fresh recorder, bounded by the configured timeout.
func (e *environment) evaluate(ctx context.Context, script string, opts Options) (json.RawMessage, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return jseval.InvokeScript[json.RawMessage](ctx, e.newContext(), script)
}

func formatResult(raw json.RawMessage, compact bool) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if compact {
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	}
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
