package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/jseval"
	"github.com/aretw0/jseval/pkg/adapters/memory"
	"github.com/aretw0/jseval/pkg/adapters/sqlite"
	"github.com/aretw0/jseval/pkg/ports"
	"github.com/aretw0/jseval/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openJournal(t *testing.T, opts ...sqlite.Option) *sqlite.Journal {
	t.Helper()
	j, err := sqlite.Open(filepath.Join(t.TempDir(), "nested", "journal.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_AppendAndEntries(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, ports.EntryPoint, "a"))
	require.NoError(t, j.Append(ctx, ports.EntryPoint, "b"))
	j.Record(ctx, ports.EntryPoint, "c")

	entries, err := j.Entries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Script)
	assert.Equal(t, "c", entries[2].Script)
	assert.Equal(t, ports.EntryPoint, entries[1].Identifier)
	assert.False(t, entries[0].Timestamp.After(entries[2].Timestamp))

	latest, err := j.Entries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "b", latest[0].Script)
	assert.Equal(t, "c", latest[1].Script)
}

func TestJournal_MaxEntries(t *testing.T) {
	j := openJournal(t, sqlite.WithMaxEntries(2))
	ctx := context.Background()

	for _, s := range []string{"one", "two", "three"} {
		require.NoError(t, j.Append(ctx, ports.EntryPoint, s))
	}

	entries, err := j.Entries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "two", entries[0].Script)
	assert.Equal(t, "three", entries[1].Script)
}

func TestJournal_Clear(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, ports.EntryPoint, "x"))
	require.NoError(t, j.Clear(ctx))

	entries, err := j.Entries(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJournal_AsDebugSink(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()
	s := settings.New(settings.WithDebugLogging(true))

	ec := jseval.New(memory.NewChannel(), jseval.WithSettings(s), jseval.WithSink(j))
	require.NoError(t, ec.Member("document").Assign("title", "logged").InvokeVoid(ctx))

	entries, err := j.Entries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, `document.title = "logged"`, entries[0].Script)
}
