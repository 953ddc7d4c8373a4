package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/jseval/pkg/adapters/goja"
	httpAdapter "github.com/aretw0/jseval/pkg/adapters/http"
	"github.com/aretw0/jseval/pkg/adapters/process"
	redisAdapter "github.com/aretw0/jseval/pkg/adapters/redis"
	"github.com/aretw0/jseval/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietOptions() Options {
	return Options{LogLevel: "error"}
}

func TestRunEval(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "script.js")
	require.NoError(t, os.WriteFile(file, []byte(`({ name: "jseval", tags: ["a", "b"] })`), 0o644))

	tests := []struct {
		name  string
		eval  EvalOptions
		stdin string
		want  string
	}{
		{
			name: "Inline compact",
			eval: EvalOptions{Script: "[1, 2].map(function (x) { return x * 2 })", Compact: true},
			want: "[2,4]\n",
		},
		{
			name: "Undefined prints null",
			eval: EvalOptions{Script: "var unused = 1"},
			want: "null\n",
		},
		{
			name: "File indented",
			eval: EvalOptions{File: file},
			want: "{\n  \"name\": \"jseval\",\n  \"tags\": [\n    \"a\",\n    \"b\"\n  ]\n}\n",
		},
		{
			name:  "Stdin",
			eval:  EvalOptions{File: "-", Compact: true},
			stdin: "'from ' + 'stdin'",
			want:  "\"from stdin\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := RunEval(context.Background(), quietOptions(), tt.eval, strings.NewReader(tt.stdin), &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunEval_Errors(t *testing.T) {
	var out bytes.Buffer

	err := RunEval(context.Background(), quietOptions(), EvalOptions{}, nil, &out)
	assert.ErrorContains(t, err, "nothing to evaluate")

	err = RunEval(context.Background(), quietOptions(), EvalOptions{File: filepath.Join(t.TempDir(), "missing.js")}, nil, &out)
	assert.ErrorContains(t, err, "failed to read script")

	err = RunEval(context.Background(), quietOptions(), EvalOptions{Script: "missing()"}, nil, &out)
	assert.ErrorContains(t, err, "ReferenceError")

	opts := quietOptions()
	opts.Timeout = 50 * time.Millisecond
	err = RunEval(context.Background(), opts, EvalOptions{Script: "for (;;) {}"}, nil, &out)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Empty(t, out.String())
}

func TestCreateChannel(t *testing.T) {
	logger := quietLogger(t)

	_, _, err := createChannel(Options{Remote: "http://localhost:1", Redis: "localhost:6379"}, logger)
	assert.ErrorContains(t, err, "mutually exclusive")
	_, _, err = createChannel(Options{Remote: "http://localhost:1", Host: "node"}, logger)
	assert.ErrorContains(t, err, "mutually exclusive")

	ch, release, err := createChannel(Options{Host: "node --no-warnings"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &process.Channel{}, ch)
	assert.NoError(t, release())

	ch, release, err = createChannel(Options{Remote: "http://localhost:1"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &httpAdapter.Client{}, ch)
	assert.NoError(t, release())

	mr := miniredis.RunT(t)
	ch, release, err = createChannel(Options{Redis: "redis://" + mr.Addr(), Prefix: "test:"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &redisAdapter.Client{}, ch)
	assert.NoError(t, release())

	ch, release, err = createChannel(Options{}, logger)
	require.NoError(t, err)
	assert.IsType(t, &goja.Runtime{}, ch)
	_, direct := ch.(ports.DirectChannel)
	assert.True(t, direct)
	assert.NoError(t, release())
}

func TestNewRedisClient(t *testing.T) {
	client, err := newRedisClient("redis://localhost:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)

	client, err = newRedisClient("cache:6379")
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", client.Options().Addr)

	_, err = newRedisClient("")
	assert.Error(t, err)
}

func TestREPL_Session(t *testing.T) {
	env, err := setup(quietOptions())
	require.NoError(t, err)
	defer env.Close()

	input := strings.Join([]string{
		"1 + 1",
		"var answer = 40 \\",
		"  + 2",
		"answer",
		"",
		"missing()",
		".bootstrap",
		".nope",
		".journal",
		".exit",
		"'never evaluated'",
	}, "\n")

	var out bytes.Buffer
	r := newREPL(env, quietOptions(), &out, false)
	require.NoError(t, r.Run(context.Background(), strings.NewReader(input)))

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "2\nnull\n42\n"), got)
	assert.Contains(t, got, "error: ")
	assert.Contains(t, got, "ReferenceError")
	assert.Contains(t, got, ports.Bootstrap)
	assert.Contains(t, got, "unknown command .nope")
	assert.Contains(t, got, "journal disabled")
	assert.Contains(t, got, ">>> Bye!")
	assert.NotContains(t, got, "never evaluated")
}

func TestREPL_HelpAndEOF(t *testing.T) {
	env, err := setup(quietOptions())
	require.NoError(t, err)
	defer env.Close()

	var out bytes.Buffer
	r := newREPL(env, quietOptions(), &out, false)
	require.NoError(t, r.Run(context.Background(), strings.NewReader(".help\n")))

	assert.Equal(t, replHelp, out.String())
}

func TestREPL_Journal(t *testing.T) {
	opts := quietOptions()
	opts.Journal = filepath.Join(t.TempDir(), "journal.db")

	env, err := setup(opts)
	require.NoError(t, err)
	defer env.Close()

	var out bytes.Buffer
	r := newREPL(env, opts, &out, false)
	input := "Math.max(3, 7)\n'second'\n.journal 1\n.journal x\n"
	require.NoError(t, r.Run(context.Background(), strings.NewReader(input)))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "7", lines[0])
	assert.Equal(t, `"second"`, lines[1])
	assert.Contains(t, lines[2], "'second'")
	assert.NotContains(t, lines[2], "Math.max")
	assert.Equal(t, "usage: .journal [n]", lines[3])
}

func TestREPL_Cancelled(t *testing.T) {
	env, err := setup(quietOptions())
	require.NoError(t, err)
	defer env.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	r := newREPL(env, quietOptions(), &out, false)
	err = r.Run(ctx, strings.NewReader("1 + 1\n"))
	assert.NoError(t, handleExecutionError(err))
	assert.Empty(t, out.String())
}

func TestNewServeHandler(t *testing.T) {
	env, err := setup(quietOptions())
	require.NoError(t, err)
	defer env.Close()

	handler, err := NewServeHandler(env, time.Second)
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	body, err := json.Marshal(httpAdapter.InvokeRequest{Args: []any{"6 * 7"}})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/invoke", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reply httpAdapter.InvokeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.JSONEq(t, "42", string(reply.Result))

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	text, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), `jseval_dispatches_total{mode="async",outcome="success"} 1`)
	assert.Contains(t, string(text), "go_goroutines")

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestRunWorker_RequiresRedis(t *testing.T) {
	err := RunWorker(context.Background(), quietOptions(), WorkerOptions{})
	assert.ErrorContains(t, err, "--redis is required")

	opts := quietOptions()
	opts.Redis = "localhost:6379"
	opts.Remote = "http://localhost:1"
	err = RunWorker(context.Background(), opts, WorkerOptions{})
	assert.ErrorContains(t, err, "are not supported")
}

func TestRunWorker_ServesQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	opts := quietOptions()
	opts.Redis = mr.Addr()
	opts.Prefix = "cli:"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunWorker(ctx, opts, WorkerOptions{Concurrency: 2}) }()

	client, release, err := createChannel(opts, quietLogger(t))
	require.NoError(t, err)
	defer release()

	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()
	result, err := client.InvokeAsync(callCtx, ports.EntryPoint, "'queued'.toUpperCase()")
	require.NoError(t, err)
	assert.JSONEq(t, `"QUEUED"`, string(result))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRunMCP_UnknownTransport(t *testing.T) {
	err := RunMCP(context.Background(), quietOptions(), MCPOptions{Transport: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unknown transport")
}

func quietLogger(t *testing.T) *slog.Logger {
	t.Helper()
	logger, err := quietOptions().createLogger()
	require.NoError(t, err)
	return logger
}
