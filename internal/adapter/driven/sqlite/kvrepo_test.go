package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	version, err := RunMigrations(db.Writer)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestKVRepo_LoadMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewKVRepo(db)

	got, err := repo.Load(context.Background(), "settings")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestKVRepo_SaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewKVRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "dismissed-alerts", []byte(`["low-stock-1"]`)))

	got, err := repo.Load(ctx, "dismissed-alerts")
	require.NoError(t, err)
	assert.JSONEq(t, `["low-stock-1"]`, string(got))
}

func TestKVRepo_SaveReplacesWholeValue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewKVRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "settings", []byte(`{"lowStockThreshold":5,"expiryWarningDays":14}`)))
	require.NoError(t, repo.Save(ctx, "settings", []byte(`{"lowStockThreshold":7}`)))

	got, err := repo.Load(ctx, "settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"lowStockThreshold":7}`, string(got))
}

func TestKVRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewKVRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "k", []byte("v")))
	require.NoError(t, repo.Delete(ctx, "k"))

	got, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestKVRepo_Delete_NonExistent_NoError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewKVRepo(db)

	require.NoError(t, repo.Delete(context.Background(), "missing"))
}
