package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/jseval/pkg/domain"
	"github.com/aretw0/jseval/pkg/ports"
)

// notFoundMarker is thrown by the launcher when the identifier does not resolve.
const notFoundMarker = "jseval: entry point not found"

// waitDelay bounds how long a killed host may keep its output pipes open.
const waitDelay = 2 * time.Second

// launcher installs the entry point, calls the identifier with the JSON-encoded
// arguments and prints the JSON result as the last line of stdout.
const launcher = `;(function (global, identifier, args) {
  var path = identifier.split(".");
  var owner = null, target = global;
  for (var i = 0; i < path.length && target !== null && target !== undefined; i++) {
    owner = target;
    target = target[path[i]];
  }
  if (typeof target !== "function") {
    throw new Error("` + notFoundMarker + `: " + identifier);
  }
  var out = JSON.stringify(target.apply(owner, args));
  console.log(out === undefined ? "null" : out);
})(typeof globalThis !== "undefined" ? globalThis : this, %s, %s);
`

// Host is an external JavaScript interpreter that reads a program from stdin,
// such as "node" or "deno run -".
type Host struct {
	Command string
	Args    []string
	Env     map[string]string
}

// ParseHost splits a command line such as "deno run -" into a Host.
func ParseHost(commandLine string) (Host, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return Host{}, fmt.Errorf("host command is empty")
	}
	return Host{Command: fields[0], Args: fields[1:]}, nil
}

// Channel evaluates every call in a fresh host process.
type Channel struct {
	host    Host
	baseDir string
}

// Option configures the channel.
type Option func(*Channel)

// WithBaseDir sets the working directory for host processes.
func WithBaseDir(dir string) Option {
	return func(c *Channel) {
		c.baseDir = dir
	}
}

// NewChannel creates a channel backed by host.
func NewChannel(host Host, opts ...Option) *Channel {
	c := &Channel{host: host}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ports.Channel = (*Channel)(nil)

// InvokeAsync runs the host with a program calling identifier. Cancelling ctx kills
// the process.
func (c *Channel) InvokeAsync(ctx context.Context, identifier string, args ...any) (json.RawMessage, error) {
	program, err := buildProgram(identifier, args)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.host.Command, c.host.Args...)
	cmd.Dir = c.baseDir
	cmd.Stdin = strings.NewReader(program)
	cmd.WaitDelay = waitDelay

	env := make([]string, 0, len(c.host.Env))
	for k, v := range c.host.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("host %s stopped: %w", c.host.Command, ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, notFoundMarker) {
			return nil, fmt.Errorf("%w: %s", domain.ErrEntryPointNotFound, identifier)
		}
		return nil, fmt.Errorf("host %s failed: %w. Stderr: %s", c.host.Command, err, msg)
	}

	return lastJSONLine(stdout.Bytes())
}

func buildProgram(identifier string, args []any) (string, error) {
	if args == nil {
		args = []any{}
	}
	id, err := json.Marshal(identifier)
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("failed to encode arguments: %w", err)
	}
	return ports.Bootstrap + fmt.Sprintf(launcher, id, encoded), nil
}

// lastJSONLine returns the final non-empty output line; earlier lines belong to the
// evaluated script.
func lastJSONLine(out []byte) (json.RawMessage, error) {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	last := bytes.TrimSpace(lines[len(lines)-1])
	if len(last) == 0 {
		return nil, errors.New("host produced no result")
	}
	if !json.Valid(last) {
		return nil, fmt.Errorf("host produced an invalid result: %q", last)
	}
	return json.RawMessage(last), nil
}
