package kvstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type note struct {
	V    int    `json:"v"`
	ID   string `json:"id"`
	Body string `json:"body"`
}

func (n *note) Upgrade() error {
	if n.V > 1 {
		return errors.New("future note")
	}
	if n.ID == "" {
		return errors.New("note without id")
	}
	n.V = 1
	return nil
}

func noteID(n note) string { return n.ID }

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingBackend) Set(context.Context, string, []byte) error  { return errors.New("quota exceeded") }
func (failingBackend) Delete(context.Context, string) error       { return errors.New("disk gone") }
func (failingBackend) Close() error                               { return nil }

func newTestStore() (*Store, *MemoryBackend) {
	backend := NewMemoryBackend()
	return New(backend, DefaultPrefix, zap.NewNop()), backend
}

func TestLoadReturnsDefaultWhenMissing(t *testing.T) {
	store, _ := newTestStore()
	got := Load(context.Background(), store, "missing", note{ID: "default"})
	assert.Equal(t, "default", got.ID)
}

func TestSetUsesPrefix(t *testing.T) {
	store, backend := newTestStore()
	ctx := context.Background()

	store.Set(ctx, "session", note{ID: "a"})

	raw, err := backend.Get(ctx, "pos_session")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":0,"id":"a","body":""}`, string(raw))
}

func TestLoadCorruptJSONLogsAndReturnsDefault(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	backend := NewMemoryBackend()
	store := New(backend, DefaultPrefix, zap.New(core))
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "pos_broken", []byte("{not json")))

	got := Load(ctx, store, "broken", note{ID: "fallback"})
	assert.Equal(t, "fallback", got.ID)
	assert.Equal(t, 1, logs.FilterMessage("Corrupt record, using default").Len())
}

func TestLoadRejectsUnknownSchema(t *testing.T) {
	store, backend := newTestStore()
	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "pos_n", []byte(`{"v":7,"id":"x"}`)))

	got := Load(ctx, store, "n", note{})
	assert.Empty(t, got.ID)
}

func TestLoadUpgradesVersionZero(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	store.Set(ctx, "n", note{ID: "x"})

	got := Load(ctx, store, "n", note{})
	assert.Equal(t, 1, got.V)
}

func TestBackendFailuresAreSwallowed(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := New(failingBackend{}, DefaultPrefix, zap.New(core))
	ctx := context.Background()

	assert.NotPanics(t, func() {
		store.Set(ctx, "k", note{ID: "a"})
		store.Remove(ctx, "k")
	})
	got := Load(ctx, store, "k", note{ID: "def"})
	assert.Equal(t, "def", got.ID)
	assert.Empty(t, Append(ctx, store, "list", note{ID: "a"}))
	assert.GreaterOrEqual(t, logs.Len(), 4)
}

func TestListHelpers(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	Append(ctx, store, "notes", note{ID: "1", Body: "one"})
	Append(ctx, store, "notes", note{ID: "2", Body: "two"})

	list := Upsert(ctx, store, "notes", note{ID: "1", Body: "uno"}, noteID)
	require.Len(t, list, 2)
	assert.Equal(t, "uno", list[0].Body)

	list = Upsert(ctx, store, "notes", note{ID: "3", Body: "three"}, noteID)
	require.Len(t, list, 3)
	assert.Equal(t, "3", list[2].ID)

	list = DeleteByID(ctx, store, "notes", "2", noteID)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"1", "3"}, []string{list[0].ID, list[1].ID})

	list = DeleteByID(ctx, store, "notes", "missing", noteID)
	assert.Len(t, list, 2)
}

func TestLoadListSkipsBadElementsButKeepsThemOnWrite(t *testing.T) {
	store, backend := newTestStore()
	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "pos_notes", []byte(`[{"id":"1"},{"v":9,"id":"future"},{"id":""}]`)))

	assert.Len(t, LoadList[note](ctx, store, "notes"), 1)

	Append(ctx, store, "notes", note{ID: "2"})
	raw, err := backend.Get(ctx, "pos_notes")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"future"`)
}

func TestCorruptListReadsAsEmpty(t *testing.T) {
	store, backend := newTestStore()
	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "pos_notes", []byte(`{"id":"1"}`)))

	assert.Empty(t, LoadList[note](ctx, store, "notes"))
	assert.Len(t, Append(ctx, store, "notes", note{ID: "2"}), 1)
}

// Feature: pos-till, Property 6: Appends preserve count and insertion order
func TestProperty_AppendPreservesInsertionOrder(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("n appends yield n records in order", prop.ForAll(
		func(n int) bool {
			store, _ := newTestStore()
			ctx := context.Background()
			for i := 0; i < n; i++ {
				Append(ctx, store, "sales", note{ID: fmt.Sprintf("s-%d", i)})
			}
			list := LoadList[note](ctx, store, "sales")
			if len(list) != n {
				return false
			}
			for i, item := range list {
				if item.ID != fmt.Sprintf("s-%d", i) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
