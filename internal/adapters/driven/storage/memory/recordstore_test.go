package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightway-xas/lightway/internal/core/domain"
)

func testTable(t *testing.T) *domain.Table {
	t.Helper()
	data, err := domain.TableFromColumns(
		[]string{"energy", "mu"},
		[][]float64{{8900, 8950, 9000}, {0.1, 0.5, 1.0}},
	)
	require.NoError(t, err)
	return data
}

func testMetadata(element, edge, dataset string) map[string]any {
	return map[string]any{
		"sample_metadata": map[string]any{"element": element, "edge": edge},
		"dataset":         dataset,
		"channel":         "transmission",
	}
}

var xasSpecs = []domain.Spec{{Name: domain.SpecExperimentalXAS}}

func TestRecordStore_WriteAndGet(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	data := testTable(t)
	md := testMetadata("Cu", "K", "raw")
	id, err := store.Write(ctx, data, md, xasSpecs)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, domain.StructureFamilyDataframe, rec.StructureFamily)
	assert.Equal(t, xasSpecs, rec.Specs)
	assert.Equal(t, md, rec.Metadata)
	assert.Equal(t, []string{"energy", "mu"}, rec.Data.Columns())
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
}

func TestRecordStore_IsolatesCopies(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	md := testMetadata("Cu", "K", "raw")
	id, err := store.Write(ctx, testTable(t), md, xasSpecs)
	require.NoError(t, err)

	md["dataset"] = "changed"
	md["sample_metadata"].(map[string]any)["element"] = "Fe"

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "raw", rec.Metadata["dataset"])
	rec.Metadata["dataset"] = "mutated"

	again, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "raw", again.Metadata["dataset"])
	element, _ := domain.Lookup(again.Metadata, "sample_metadata", "element")
	assert.Equal(t, "Cu", element)
}

func TestRecordStore_WriteIsNotIdempotent(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	id1, err := store.Write(ctx, testTable(t), testMetadata("Cu", "K", "raw"), xasSpecs)
	require.NoError(t, err)
	id2, err := store.Write(ctx, testTable(t), testMetadata("Cu", "K", "raw"), xasSpecs)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecordStore_WriteRejectsNilData(t *testing.T) {
	_, err := NewRecordStore().Write(context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordStore_Records(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	var ids []string
	for _, el := range []string{"Cu", "Fe", "Ni"} {
		id, err := store.Write(ctx, testTable(t), testMetadata(el, "K", "raw"), xasSpecs)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	var got []string
	for rec, err := range store.Records(ctx) {
		require.NoError(t, err)
		got = append(got, rec.ID)
		// Writes during iteration are not observed.
		_, err = store.Write(ctx, rec.Data, rec.Metadata, rec.Specs)
		require.NoError(t, err)
	}
	assert.Equal(t, ids, got)
}

func TestRecordStore_Search(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	_, err := store.Write(ctx, testTable(t), testMetadata("Cu", "K", "raw"), xasSpecs)
	require.NoError(t, err)
	_, err = store.Write(ctx, testTable(t), testMetadata("Fe", "K", "raw"), xasSpecs)
	require.NoError(t, err)
	_, err = store.Write(ctx, testTable(t), testMetadata("Cu", "L3", "StandardizeGrid"), xasSpecs)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query domain.RecordQuery
		want  int
	}{
		{"empty query", domain.RecordQuery{}, 3},
		{"element", domain.RecordQuery{Element: "Cu"}, 2},
		{"element and edge", domain.RecordQuery{Element: "Cu", Edge: "K"}, 1},
		{"dataset", domain.RecordQuery{Dataset: "StandardizeGrid"}, 1},
		{"channel", domain.RecordQuery{Channel: "transmission"}, 3},
		{"no match", domain.RecordQuery{Element: "Zn"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestRecordStore_UpdateMetadata(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	id, err := store.Write(ctx, testTable(t), testMetadata("Cu", "K", "raw"), xasSpecs)
	require.NoError(t, err)

	md := testMetadata("Cu", "K", "raw")
	md["quality"] = "good"
	require.NoError(t, store.UpdateMetadata(ctx, id, md))

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "good", rec.Metadata["quality"])
	assert.False(t, rec.UpdatedAt.Before(rec.CreatedAt))

	err = store.UpdateMetadata(ctx, "missing", md)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_Delete(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	id, err := store.Write(ctx, testTable(t), testMetadata("Cu", "K", "raw"), xasSpecs)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, id), domain.ErrNotFound)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	for range store.Records(ctx) {
		t.Fatal("deleted record yielded")
	}
}
