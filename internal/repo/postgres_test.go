package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/testutil"
)

func TestPostgresRepo(t *testing.T) {
	pool, cleanup := testutil.SetupPostgres(t)
	defer cleanup()

	r := NewPostgresRepo(pool, zap.NewNop())
	require.NoError(t, r.EnsureSchema(context.Background()))

	runRepositoryContract(t, func(t *testing.T) TaskRepository {
		testutil.TruncateTasks(t, pool)
		return r
	})

	t.Run("retries taken id", func(t *testing.T) {
		testutil.TruncateTasks(t, pool)
		ids := []string{"aaaa0001", "aaaa0001", "bbbb0002"}
		r.newID = func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}
		defer func() { r.newID = model.NewID }()

		ctx := context.Background()
		first, err := r.Create(ctx, "first", "")
		require.NoError(t, err)
		second, err := r.Create(ctx, "second", "")
		require.NoError(t, err)

		assert.Equal(t, "aaaa0001", first.ID)
		assert.Equal(t, "bbbb0002", second.ID)
	})
}
