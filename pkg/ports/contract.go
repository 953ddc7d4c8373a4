package ports

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunChannelContract runs a suite of tests to verify that a Channel reaching a real
// interpreter with Bootstrap installed adheres to the interface contract.
func RunChannelContract(t *testing.T, ch Channel) {
	ctx := context.Background()

	decode := func(t *testing.T, raw json.RawMessage) any {
		t.Helper()
		var out any
		require.NoError(t, json.Unmarshal(raw, &out), "result must be valid JSON: %s", raw)
		return out
	}

	t.Run("Evaluate Number", func(t *testing.T) {
		raw, err := ch.InvokeAsync(ctx, EntryPoint, "1 + 1")
		require.NoError(t, err)
		assert.Equal(t, float64(2), decode(t, raw))
	})

	t.Run("Evaluate String", func(t *testing.T) {
		raw, err := ch.InvokeAsync(ctx, EntryPoint, "'con' + 'tract'")
		require.NoError(t, err)
		assert.Equal(t, "contract", decode(t, raw))
	})

	t.Run("Evaluate Object", func(t *testing.T) {
		raw, err := ch.InvokeAsync(ctx, EntryPoint, "({answer: 42, list: [1, 'two']})")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"answer": float64(42), "list": []any{float64(1), "two"}}, decode(t, raw))
	})

	t.Run("Undefined Is Null", func(t *testing.T) {
		raw, err := ch.InvokeAsync(ctx, EntryPoint, "undefined")
		require.NoError(t, err)
		assert.Nil(t, decode(t, raw))
	})

	t.Run("Declarations Persist", func(t *testing.T) {
		_, err := ch.InvokeAsync(ctx, EntryPoint, "var contractValue = 7")
		require.NoError(t, err)

		raw, err := ch.InvokeAsync(ctx, EntryPoint, "contractValue * 2")
		require.NoError(t, err)
		assert.Equal(t, float64(14), decode(t, raw))
	})

	t.Run("Script Error", func(t *testing.T) {
		_, err := ch.InvokeAsync(ctx, EntryPoint, "throw new Error('boom')")
		assert.Error(t, err)
	})

	t.Run("Unknown Entry Point", func(t *testing.T) {
		_, err := ch.InvokeAsync(ctx, "Missing.evaluate", "1")
		assert.Error(t, err)
	})

	t.Run("Canceled Context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := ch.InvokeAsync(canceled, EntryPoint, "1")
		assert.Error(t, err)
	})

	if direct, ok := ch.(DirectChannel); ok {
		t.Run("Direct Call", func(t *testing.T) {
			raw, err := direct.Invoke(EntryPoint, "2 * 3")
			require.NoError(t, err)
			assert.Equal(t, float64(6), decode(t, raw))
		})
	}
}
