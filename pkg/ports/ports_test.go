package ports_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/jseval/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestBootstrap_DefinesEntryPoint(t *testing.T) {
	// The bootstrap must define the exact member path the dispatcher targets.
	object, function, ok := strings.Cut(ports.EntryPoint, ".")
	assert.True(t, ok)
	assert.Contains(t, ports.Bootstrap, "global."+object)
	assert.Contains(t, ports.Bootstrap, "runtime."+function+" = function (script)")
}

func TestSinkFunc(t *testing.T) {
	var got []string
	var sink ports.Sink = ports.SinkFunc(func(ctx context.Context, identifier, script string) {
		got = append(got, identifier+": "+script)
	})

	sink.Record(context.Background(), ports.EntryPoint, "document.title")

	assert.Equal(t, []string{"DynamicJavascriptRuntime.evaluate: document.title"}, got)
}
