package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupSQLiteRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	r, err := NewSQLiteRepo(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRepo_Contract(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) TaskRepository {
		return setupSQLiteRepo(t)
	})
}

func TestSQLiteRepo_RetriesTakenID(t *testing.T) {
	r := setupSQLiteRepo(t)
	ids := []string{"aaaa0001", "aaaa0001", "bbbb0002"}
	r.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	ctx := context.Background()
	first, err := r.Create(ctx, "first", "")
	require.NoError(t, err)
	second, err := r.Create(ctx, "second", "")
	require.NoError(t, err)

	assert.Equal(t, "aaaa0001", first.ID)
	assert.Equal(t, "bbbb0002", second.ID)
}

func TestSQLiteRepo_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	r, err := NewSQLiteRepo(path, zap.NewNop())
	require.NoError(t, err)
	created, err := r.Create(ctx, "durable", "")
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = NewSQLiteRepo(path, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}
