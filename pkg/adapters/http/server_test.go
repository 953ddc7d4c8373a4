package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/jseval"
	"github.com/aretw0/jseval/pkg/adapters/goja"
	adapter "github.com/aretw0/jseval/pkg/adapters/http"
	"github.com/aretw0/jseval/pkg/domain"
	"github.com/aretw0/jseval/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...adapter.ServerOption) *httptest.Server {
	t.Helper()
	rt, err := goja.New()
	require.NoError(t, err)

	srv := httptest.NewServer(adapter.NewHandler(rt, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Contract(t *testing.T) {
	srv := newServer(t)
	ports.RunChannelContract(t, adapter.NewClient(srv.URL))
}

func TestClient_Errors(t *testing.T) {
	srv := newServer(t)
	client := adapter.NewClient(srv.URL + "/")
	ctx := context.Background()

	_, err := client.InvokeAsync(ctx, "Missing.evaluate", "1")
	assert.ErrorIs(t, err, domain.ErrRemote)
	assert.ErrorIs(t, err, domain.ErrEntryPointNotFound)

	_, err = client.InvokeAsync(ctx, ports.EntryPoint, "throw new Error('boom')")
	assert.ErrorIs(t, err, domain.ErrRemote)
	assert.ErrorContains(t, err, "status 422")
}

func TestClient_NotDirect(t *testing.T) {
	srv := newServer(t)
	ec := jseval.New(adapter.NewClient(srv.URL)).Member("document")

	assert.ErrorIs(t, ec.InvokeVoidSync(), domain.ErrSynchronousCallUnavailable)
}

func TestClient_WithRecorder(t *testing.T) {
	srv := newServer(t)
	client := adapter.NewClient(srv.URL, adapter.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	ctx := context.Background()

	require.NoError(t, jseval.New(client).Assign("var_totals", jseval.Expr().Call("new_Array")).InvokeVoid(ctx))
	require.NoError(t, jseval.New(client).Member("totals").Call("push", 3, 4).InvokeVoid(ctx))

	n, err := jseval.Invoke[int](ctx, jseval.New(client).Member("totals").Member("length"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestServer_Timeout(t *testing.T) {
	srv := newServer(t, adapter.WithTimeout(50*time.Millisecond))

	_, err := adapter.NewClient(srv.URL).InvokeAsync(context.Background(), ports.EntryPoint, "while (true) {}")
	assert.ErrorContains(t, err, "status 504")
}

func TestServer_InvalidBody(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/invoke", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out adapter.InvokeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "invalid request body", out.Error)
}

func TestServer_HealthAndInfo(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	info, err := http.Get(srv.URL + "/info")
	require.NoError(t, err)
	defer info.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(info.Body).Decode(&body))
	assert.Equal(t, ports.EntryPoint, body["entry_point"])
	assert.Equal(t, true, body["direct"])
	assert.Equal(t, strings.TrimSpace(jseval.Version), body["version"])
}

func TestServer_Events(t *testing.T) {
	srv := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())
	require.True(t, lines.Scan())
	assert.Equal(t, "data: connected", lines.Text())

	_, err = adapter.NewClient(srv.URL).InvokeAsync(context.Background(), ports.EntryPoint, "40 + 2")
	require.NoError(t, err)

	var data string
	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: ") {
			data = strings.TrimPrefix(lines.Text(), "data: ")
			break
		}
	}

	var event adapter.Event
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, ports.EntryPoint, event.Identifier)
	assert.Equal(t, "40 + 2", event.Script)
	assert.Empty(t, event.Error)
}

func TestStreamManager(t *testing.T) {
	sm := adapter.NewStreamManager()
	events, cancel := sm.Subscribe()
	assert.Equal(t, 1, sm.Subscribers())

	sm.Broadcast("hello")
	assert.Equal(t, "hello", <-events)

	cancel()
	cancel()
	assert.Zero(t, sm.Subscribers())
	_, ok := <-events
	assert.False(t, ok)
}

func TestServer_Hooks(t *testing.T) {
	events := make(chan domain.DispatchEvent, 1)
	srv := newServer(t, adapter.WithHooks(domain.Hooks{
		OnComplete: func(_ context.Context, e *domain.DispatchEvent) { events <- *e },
	}))

	_, err := adapter.NewClient(srv.URL).InvokeAsync(context.Background(), ports.EntryPoint, "'x'.repeat(3)")
	require.NoError(t, err)

	e := <-events
	assert.Equal(t, "'x'.repeat(3)", e.Script)
	assert.Equal(t, domain.ModeAsync, e.Mode)
	assert.NoError(t, e.Err)
}
