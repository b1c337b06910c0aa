package repository

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/maker-accounts/internal/model"
)

func TestMemory_CreateUniqueUsername(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()

	first, err := repo.Create(ctx, "alice", "h1")
	require.NoError(t, err)
	_, err = repo.Create(ctx, " alice ", "h2")
	assert.ErrorIs(t, err, ErrUsernameExists)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.AccountSummary{{ID: first.ID, Username: "alice"}}, list)
}

func TestMemory_DeleteFreesUsername(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()

	a, err := repo.Create(ctx, "alice", "h")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), ErrNotFound)

	_, err = repo.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	b, err := repo.Create(ctx, "alice", "h")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestMemory_SetPremium(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()
	a, err := repo.Create(ctx, "alice", "h")
	require.NoError(t, err)

	assert.ErrorIs(t, repo.SetPremium(ctx, a.ID, false), ErrNoChange)
	assert.NoError(t, repo.SetPremium(ctx, a.ID, true))
	assert.ErrorIs(t, repo.SetPremium(ctx, a.ID, true), ErrNoChange)
	assert.ErrorIs(t, repo.SetPremium(ctx, 999, true), ErrNotFound)
}

func TestMemory_IncreaseUsageBoundary(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()
	a, err := repo.Create(ctx, "alice", "h")
	require.NoError(t, err)

	_, err = repo.IncreaseUsage(ctx, a.ID, model.StandardStorageCeiling-1)
	require.NoError(t, err)

	u, err := repo.IncreaseUsage(ctx, a.ID, 1)
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Equal(t, model.StandardStorageCeiling-1, u.StorageUsed)
}

func TestMemory_IncreaseUsageNoOverflow(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()
	a, err := repo.Create(ctx, "alice", "h")
	require.NoError(t, err)

	_, err = repo.IncreaseUsage(ctx, a.ID, 1)
	require.NoError(t, err)

	u, err := repo.IncreaseUsage(ctx, a.ID, math.MaxInt64)
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Equal(t, int64(1), u.StorageUsed)

	u, err = repo.GetUsage(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.StorageUsed)
}

func TestMemory_DecreaseClamps(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()
	a, err := repo.Create(ctx, "alice", "h")
	require.NoError(t, err)

	_, err = repo.IncreaseUsage(ctx, a.ID, 10)
	require.NoError(t, err)
	u, err := repo.DecreaseUsage(ctx, a.ID, 50)
	require.NoError(t, err)
	assert.Zero(t, u.StorageUsed)

	_, err = repo.DecreaseUsage(ctx, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ConcurrentIncreaseNeverPassesCeiling(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()
	a, err := repo.Create(ctx, "alice", "h")
	require.NoError(t, err)

	const (
		workers = 64
		size    = int64(1_000_000)
	)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncreaseUsage(ctx, a.ID, size)
			if err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrLimitReached) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	u, err := repo.GetUsage(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, admitted*size, u.StorageUsed)
	assert.Less(t, u.StorageUsed, model.StandardStorageCeiling)
	assert.Equal(t, int64(15), admitted)
}
