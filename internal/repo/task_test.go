package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/testutil"
)

func TestTaskRepo(t *testing.T) {
	pool, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	tasks := NewTaskRepo(pool)

	t.Run("create always starts at Normal", func(t *testing.T) {
		testutil.TruncateTables(t, pool)
		uid := testutil.SeedUser(t, pool, "a@x.com")

		created, err := tasks.Create(ctx, model.Task{UserID: uid, Text: "Buy cement", Priority: "High"})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, uid, created.UserID)
		assert.Equal(t, model.PriorityNormal, created.Priority)
	})

	t.Run("create for unknown user", func(t *testing.T) {
		testutil.TruncateTables(t, pool)

		_, err := tasks.Create(ctx, model.Task{UserID: 424242, Text: "orphan"})
		assert.ErrorIs(t, err, ErrorUnknownUser)
		assert.NotErrorIs(t, err, ErrorNotFound)
	})

	t.Run("list filters by owner, search and priority, newest first", func(t *testing.T) {
		testutil.TruncateTables(t, pool)
		alice := testutil.SeedUser(t, pool, "alice@x.com")
		bob := testutil.SeedUser(t, pool, "bob@x.com")

		ids := testutil.SeedTasks(t, pool, alice, "Buy cement", "Pour CEMENT slab", "Order bricks", "50% done")
		testutil.SeedTasks(t, pool, bob, "Bob's cement")
		_, err := pool.Exec(ctx, "UPDATE tasks SET priority = 'High' WHERE id = $1", ids[1])
		require.NoError(t, err)

		got, err := tasks.List(ctx, alice, model.TaskFilter{Search: "cement", Priority: model.PriorityAll})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, ids[1], got[0].ID)
		assert.Equal(t, ids[0], got[1].ID)

		got, err = tasks.List(ctx, alice, model.TaskFilter{Priority: model.PriorityHigh})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ids[1], got[0].ID)

		got, err = tasks.List(ctx, alice, model.TaskFilter{Search: "%"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ids[3], got[0].ID)

		got, err = tasks.List(ctx, alice, model.TaskFilter{Search: "nothing like this"})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("update touches only given fields", func(t *testing.T) {
		testutil.TruncateTables(t, pool)
		uid := testutil.SeedUser(t, pool, "a@x.com")
		ids := testutil.SeedTasks(t, pool, uid, "Buy cement")

		high := model.PriorityHigh
		require.NoError(t, tasks.Update(ctx, ids[0], uid, model.TaskPatch{Priority: &high}))

		got, err := tasks.GetOwned(ctx, ids[0], uid)
		require.NoError(t, err)
		assert.Equal(t, "Buy cement", got.Text)
		assert.Equal(t, model.PriorityHigh, got.Priority)

		assert.NoError(t, tasks.Update(ctx, ids[0], uid, model.TaskPatch{}))
	})

	t.Run("ownership is enforced on get, update and delete", func(t *testing.T) {
		testutil.TruncateTables(t, pool)
		alice := testutil.SeedUser(t, pool, "alice@x.com")
		bob := testutil.SeedUser(t, pool, "bob@x.com")
		ids := testutil.SeedTasks(t, pool, alice, "Buy cement")

		_, err := tasks.GetOwned(ctx, ids[0], bob)
		assert.ErrorIs(t, err, ErrorNotFound)

		text := "hijacked"
		assert.ErrorIs(t, tasks.Update(ctx, ids[0], bob, model.TaskPatch{Text: &text}), ErrorNotFound)
		assert.ErrorIs(t, tasks.Delete(ctx, ids[0], bob), ErrorNotFound)

		got, err := tasks.GetOwned(ctx, ids[0], alice)
		require.NoError(t, err)
		assert.Equal(t, "Buy cement", got.Text)

		require.NoError(t, tasks.Delete(ctx, ids[0], alice))
		assert.ErrorIs(t, tasks.Delete(ctx, ids[0], alice), ErrorNotFound)
	})
}
