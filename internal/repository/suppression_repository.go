package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// SuppressionRepository keeps the set of addresses mail must not be delivered to.
type SuppressionRepository struct {
	client *redis.Client
	key    string
}

// NewSuppressionRepository constructs a suppression list backed by the Redis set at key.
func NewSuppressionRepository(client *redis.Client, key string) *SuppressionRepository {
	if key == "" {
		key = "mail:suppressed"
	}
	return &SuppressionRepository{client: client, key: key}
}

// IsSuppressed reports whether email is on the list. A nil client suppresses nothing.
func (r *SuppressionRepository) IsSuppressed(ctx context.Context, email string) (bool, error) {
	if r.client == nil {
		return false, nil
	}
	ok, err := r.client.SIsMember(ctx, r.key, normaliseEmail(email)).Result()
	if err != nil {
		return false, fmt.Errorf("redis sismember %s: %w", r.key, err)
	}
	return ok, nil
}

// Add puts emails on the list.
func (r *SuppressionRepository) Add(ctx context.Context, emails ...string) error {
	if r.client == nil || len(emails) == 0 {
		return nil
	}
	members := make([]interface{}, len(emails))
	for i, e := range emails {
		members[i] = normaliseEmail(e)
	}
	if err := r.client.SAdd(ctx, r.key, members...).Err(); err != nil {
		return fmt.Errorf("redis sadd %s: %w", r.key, err)
	}
	return nil
}

// Remove takes emails off the list.
func (r *SuppressionRepository) Remove(ctx context.Context, emails ...string) error {
	if r.client == nil || len(emails) == 0 {
		return nil
	}
	members := make([]interface{}, len(emails))
	for i, e := range emails {
		members[i] = normaliseEmail(e)
	}
	if err := r.client.SRem(ctx, r.key, members...).Err(); err != nil {
		return fmt.Errorf("redis srem %s: %w", r.key, err)
	}
	return nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
