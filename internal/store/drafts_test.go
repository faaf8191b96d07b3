package store_test

import (
	"context"
	"errors"
	"testing"

	"quote-drafter/internal/core"
	"quote-drafter/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftStores(t *testing.T) {
	impls := map[string]core.DraftStore{
		"file":   store.NewFileDraftStore(t.TempDir()),
		"memory": store.NewMemoryStore(),
	}
	for name, ds := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := "draft:alice/../x"

			_, err := ds.LoadDraft(ctx, key)
			assert.True(t, errors.Is(err, core.ErrNotFound))

			require.NoError(t, ds.SaveDraft(ctx, key, []byte(`{"customerName":"A"}`)))
			require.NoError(t, ds.SaveDraft(ctx, key, []byte(`{"customerName":"B"}`)))
			data, err := ds.LoadDraft(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, `{"customerName":"B"}`, string(data))

			require.NoError(t, ds.DeleteDraft(ctx, key))
			require.NoError(t, ds.DeleteDraft(ctx, key))
			_, err = ds.LoadDraft(ctx, key)
			assert.True(t, errors.Is(err, core.ErrNotFound))
		})
	}
}

func TestMemoryStore_VersionCheck(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	db, err := s.Load(ctx)
	require.NoError(t, err)
	db.Customers = append(db.Customers, core.Customer{ID: "c1", CustomerName: "Initech"})
	require.NoError(t, s.Save(ctx, db))
	assert.Equal(t, int64(1), db.Version)

	stale := core.EmptyDatabase()
	assert.ErrorIs(t, s.Save(ctx, stale), core.ErrConflict)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Initech", got.Customers[0].CustomerName)

	// Mutating a loaded copy does not touch the stored one.
	got.Customers[0].CustomerName = "changed"
	again, _ := s.Load(ctx)
	assert.Equal(t, "Initech", again.Customers[0].CustomerName)
}
