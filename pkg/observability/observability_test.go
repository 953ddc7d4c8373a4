package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/jseval"
	"github.com/aretw0/jseval/pkg/adapters/memory"
	"github.com/aretw0/jseval/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	ctx := context.Background()
	ok := memory.NewChannel()
	failing := memory.NewChannel(memory.WithError(errors.New("down")))

	require.NoError(t, jseval.New(ok, jseval.WithHooks(metrics.Hooks())).Member("a").InvokeVoid(ctx))
	require.NoError(t, jseval.New(ok, jseval.WithHooks(metrics.Hooks())).Member("b").InvokeVoidSync())
	require.Error(t, jseval.New(failing, jseval.WithHooks(metrics.Hooks())).Member("c").InvokeVoid(ctx))

	expected := `
# HELP jseval_dispatches_total Total number of scripts dispatched, by mode and outcome
# TYPE jseval_dispatches_total counter
jseval_dispatches_total{mode="async",outcome="error"} 1
jseval_dispatches_total{mode="async",outcome="success"} 1
jseval_dispatches_total{mode="sync",outcome="success"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "jseval_dispatches_total"))
	series, err := testutil.GatherAndCount(reg, "jseval_dispatch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, series)

	in, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range in {
		if mf.GetName() == "jseval_dispatches_in_flight" {
			assert.Zero(t, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.ErrorContains(t, err, "failed to register metric")
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LogHooks(logger)
	ctx := context.Background()

	require.NoError(t, jseval.New(memory.NewChannel(), jseval.WithHooks(hooks)).Member("ok").InvokeVoid(ctx))
	failing := memory.NewChannel(memory.WithError(errors.New("down")))
	require.Error(t, jseval.New(failing, jseval.WithHooks(hooks)).Member("bad").InvokeVoid(ctx))

	out := buf.String()
	assert.Contains(t, out, "msg=dispatch ")
	assert.Contains(t, out, "script=ok")
	assert.Contains(t, out, "msg=dispatch_complete")
	assert.Contains(t, out, "msg=dispatch_failed")
	assert.Contains(t, out, "err=down")
}
