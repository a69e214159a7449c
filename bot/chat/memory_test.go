package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"AnamBot/entity"
)

func TestMemoryStateStoreCreateAndUpdate(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	payload, version, err := store.Get(ctx, "c1", SlotWelcome)
	require.NoError(t, err)
	require.Nil(t, payload)
	require.Empty(t, version)

	v1, err := store.Put(ctx, "c1", SlotWelcome, []byte("true"), "")
	require.NoError(t, err)
	require.NotEmpty(t, v1)

	payload, version, err = store.Get(ctx, "c1", SlotWelcome)
	require.NoError(t, err)
	require.Equal(t, []byte("true"), payload)
	require.Equal(t, v1, version)

	v2, err := store.Put(ctx, "c1", SlotWelcome, []byte("false"), v1)
	require.NoError(t, err)
	require.NotEqual(t, v1, v2)
}

func TestMemoryStateStoreCreateIsExclusive(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	_, err := store.Put(ctx, "c1", SlotTurns, []byte("1"), "")
	require.NoError(t, err)

	// A second first-writer must lose.
	_, err = store.Put(ctx, "c1", SlotTurns, []byte("2"), "")
	require.ErrorIs(t, err, ErrConcurrency)
}

func TestMemoryStateStoreStaleVersionRejected(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	stale, err := store.Put(ctx, "c1", SlotTurns, []byte("1"), "")
	require.NoError(t, err)

	// Two writers race with the same token: exactly one wins.
	_, err = store.Put(ctx, "c1", SlotTurns, []byte("2"), stale)
	require.NoError(t, err)

	_, err = store.Put(ctx, "c1", SlotTurns, []byte("3"), stale)
	require.ErrorIs(t, err, ErrConcurrency)
}

func TestMemoryStateStoreScopesByConversation(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	_, err := store.Put(ctx, "c1", SlotTurns, []byte("1"), "")
	require.NoError(t, err)

	payload, _, err := store.Get(ctx, "c2", SlotTurns)
	require.NoError(t, err)
	require.Nil(t, payload)
}

func TestMemoryAnswerStoreAppendAndUpdate(t *testing.T) {
	store := NewMemoryAnswerStore()
	ctx := context.Background()

	id, err := store.Append(ctx, &entity.AnswerRecord{
		Question: "Quais sintomas você está sentindo?",
		Answer:   "tenho febre",
		Destiny:  "triagem",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	records, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "tenho febre", records[0].Answer)
	require.NotEmpty(t, records[0].Token)

	updated := records[0]
	updated.Answer = "tenho febre alta"
	newToken, err := store.Update(ctx, id, &updated, records[0].Token)
	require.NoError(t, err)
	require.NotEqual(t, records[0].Token, newToken)

	// The old token is stale now.
	_, err = store.Update(ctx, id, &updated, records[0].Token)
	require.ErrorIs(t, err, ErrConcurrency)

	records, err = store.List(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "tenho febre alta", records[0].Answer)
}
