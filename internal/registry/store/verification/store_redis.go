package verification

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"attestry/internal/registry/models"
	"attestry/pkg/storagekey"
)

const keyNamespace = "verification"

// RedisStore keeps the attestation relation in Redis. Keys carry a blake2b
// digest prefix (ledger storage-map convention) plus the readable pair.
// Values are never expired or deleted: attestations are permanent.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(validatorID, ownerID models.AccountID) string {
	return storagekey.Concat(keyNamespace, string(validatorID), string(ownerID))
}

func (s *RedisStore) Exists(ctx context.Context, validatorID, ownerID models.AccountID) (bool, error) {
	n, err := s.client.Exists(ctx, key(validatorID, ownerID)).Result()
	if err != nil {
		return false, fmt.Errorf("verification exists: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Insert(ctx context.Context, validatorID, ownerID models.AccountID) error {
	if err := s.client.Set(ctx, key(validatorID, ownerID), "1", 0).Err(); err != nil {
		return fmt.Errorf("verification insert: %w", err)
	}
	return nil
}
