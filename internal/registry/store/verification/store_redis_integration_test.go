//go:build integration

package verification_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"attestry/internal/registry/store/verification"
	"attestry/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *verification.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = verification.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestExistsDefaultsFalse() {
	exists, err := s.store.Exists(context.Background(), "acct-bob", "acct-alice")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RedisStoreSuite) TestInsertThenExists() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, "acct-bob", "acct-alice"))

	exists, err := s.store.Exists(ctx, "acct-bob", "acct-alice")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *RedisStoreSuite) TestKeyIsDirectional() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, "acct-bob", "acct-alice"))

	exists, err := s.store.Exists(ctx, "acct-alice", "acct-bob")
	s.Require().NoError(err)
	s.False(exists)
}
