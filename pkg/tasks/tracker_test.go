package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fycapp/fyc-backend/pkg/cache"
	"github.com/fycapp/fyc-backend/pkg/domain"
	"github.com/fycapp/fyc-backend/pkg/logger"
)

func setupTracker(t *testing.T) (*Tracker, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cacheClient := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = cacheClient.Close() })

	return NewTracker(cacheClient, time.Hour, logger.Nop()), mr
}

func TestTracker_CreateAndGet(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()

	params := map[string]string{"business_description": "bakery", "location": "Lyon"}
	task, err := tracker.Create(ctx, TypeSearch, params)
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)
	assert.Equal(t, StatusPending, task.Status)

	got, err := tracker.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, TypeSearch, got.Type)
	assert.Equal(t, params, got.Params)
	assert.Nil(t, got.Result)
}

func TestTracker_Get_NotFound(t *testing.T) {
	tracker, _ := setupTracker(t)

	_, err := tracker.Get(context.Background(), "no-such-task")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestTracker_Get_Expired(t *testing.T) {
	tracker, mr := setupTracker(t)
	ctx := context.Background()

	task, err := tracker.Create(ctx, TypeSearch, nil)
	require.NoError(t, err)

	// Expired records must report not found, not failed.
	mr.FastForward(2 * time.Hour)

	_, err = tracker.Get(ctx, task.ID)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestTracker_StatusProgression(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()

	task, err := tracker.Create(ctx, TypeSearch, nil)
	require.NoError(t, err)

	require.NoError(t, tracker.SetStatus(ctx, task.ID, StatusProcessing, nil, ""))
	got, err := tracker.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)

	result := &TaskResult{SearchID: "s-1", Total: 6}
	require.NoError(t, tracker.SetStatus(ctx, task.ID, StatusCompleted, result, ""))
	got, err = tracker.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "s-1", got.Result.SearchID)
	assert.Equal(t, 6, got.Result.Total)
}

func TestTracker_TerminalStatusIsSticky(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()

	task, err := tracker.Create(ctx, TypeLookup, nil)
	require.NoError(t, err)

	require.NoError(t, tracker.SetStatus(ctx, task.ID, StatusFailed, nil, "model returned no competitors"))

	// A late worker write must not revive the task.
	require.NoError(t, tracker.SetStatus(ctx, task.ID, StatusProcessing, nil, ""))

	got, err := tracker.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "model returned no competitors", got.Error)
}

func TestTracker_NoBackwardsTransition(t *testing.T) {
	tracker, _ := setupTracker(t)
	ctx := context.Background()

	task, err := tracker.Create(ctx, TypeSearch, nil)
	require.NoError(t, err)

	require.NoError(t, tracker.SetStatus(ctx, task.ID, StatusProcessing, nil, ""))
	require.NoError(t, tracker.SetStatus(ctx, task.ID, StatusPending, nil, ""))

	got, err := tracker.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)
}

func TestTracker_WriteRefreshesTTL(t *testing.T) {
	tracker, mr := setupTracker(t)
	ctx := context.Background()

	task, err := tracker.Create(ctx, TypeSearch, nil)
	require.NoError(t, err)

	mr.FastForward(30 * time.Minute)
	require.NoError(t, tracker.SetStatus(ctx, task.ID, StatusProcessing, nil, ""))

	assert.Equal(t, time.Hour, mr.TTL(taskKey(task.ID)))
}
