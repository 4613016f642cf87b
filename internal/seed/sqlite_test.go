package seed_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
	"finboard/internal/seed"
)

func TestSQLiteImportThenLoad(t *testing.T) {
	ctx := context.Background()
	want, err := seed.NewFileSource("testdata/seed.json").Load(ctx)
	require.NoError(t, err)

	src := seed.NewSQLiteSource(filepath.Join(t.TempDir(), "db", "seed.db"), nil)
	require.NoError(t, src.Import(ctx, want))

	got, err := src.Load(ctx)
	require.NoError(t, err)

	assert.True(t, want.Balance.Current.Equal(got.Balance.Current))
	require.Len(t, got.Transactions, len(want.Transactions))
	for i := range want.Transactions {
		assert.Equal(t, want.Transactions[i].Name, got.Transactions[i].Name)
		assert.Equal(t, want.Transactions[i].Category, got.Transactions[i].Category)
		assert.True(t, want.Transactions[i].Amount.Equal(got.Transactions[i].Amount))
		assert.True(t, want.Transactions[i].Date.Equal(got.Transactions[i].Date.Time))
	}
	require.Len(t, got.Pots, len(want.Pots))
	assert.Equal(t, want.Pots[1].ID, got.Pots[1].ID, "pot order follows the seed")
	assert.Equal(t, want.Pots[2].Theme, got.Pots[2].Theme)
	assert.Len(t, got.Budgets, len(want.Budgets))
	require.Len(t, got.Bills, 2)
	assert.True(t, got.Bills[1].Paid)
	assert.Equal(t, "2024-08-22", got.Bills[0].DueDate.String())

	// A second import replaces, never appends.
	require.NoError(t, src.Import(ctx, want))
	again, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, again.Transactions, len(want.Transactions))
}

func TestSQLiteLoadEmptyDatabase(t *testing.T) {
	src := seed.NewSQLiteSource(filepath.Join(t.TempDir(), "empty.db"), nil)
	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, core.ErrInvalidSeed)
}

func TestSQLiteLoadRejectsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.db")
	require.NoError(t, seed.NewSQLiteSource(path, nil).Migrate())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO balance (id, current, income, expenses) VALUES (1, '1', '2', '3')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO pots (position, id, name, total, target) VALUES (0, 1, 'Car', '10', '0')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = seed.NewSQLiteSource(path, nil).Load(context.Background())
	assert.ErrorIs(t, err, core.ErrInvalidSeed)
	assert.ErrorIs(t, err, core.ErrInvalidTarget)
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	src := seed.NewSQLiteSource(filepath.Join(t.TempDir(), "m.db"), nil)
	require.NoError(t, src.Migrate())
	require.NoError(t, src.Migrate())

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, core.ErrInvalidSeed, "migrated but empty database has no balance row")
}
