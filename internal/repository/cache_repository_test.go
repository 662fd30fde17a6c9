package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "programs", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "programs", []string{"p1"}, time.Minute))
	require.NoError(t, repo.Delete(ctx, "programs"))
}

func TestSuppressionRepositoryWithoutClient(t *testing.T) {
	repo := NewSuppressionRepository(nil, "")
	ctx := context.Background()

	suppressed, err := repo.IsSuppressed(ctx, "blocked@example.edu")
	require.NoError(t, err)
	assert.False(t, suppressed)
	require.NoError(t, repo.Add(ctx, "blocked@example.edu"))
	require.NoError(t, repo.Remove(ctx, "blocked@example.edu"))
	assert.Equal(t, "mail:suppressed", repo.key)
	assert.Equal(t, "a@example.edu", normaliseEmail("  A@Example.EDU "))
}

func TestSuppressionRepositoryReportsRedisErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	repo := NewSuppressionRepository(client, "test:suppressed")

	_, err := repo.IsSuppressed(context.Background(), "a@example.edu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis sismember test:suppressed")
	assert.Contains(t, repo.Add(context.Background(), "a@example.edu").Error(), "redis sadd")
}
