//go:build integration

package verification_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"attestry/internal/registry/store/verification"
	"attestry/pkg/platform/sentinel"
	"attestry/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *verification.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = verification.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "verifications"))
}

func (s *PostgresStoreSuite) TestExistsDefaultsFalse() {
	exists, err := s.store.Exists(context.Background(), "acct-bob", "acct-alice")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *PostgresStoreSuite) TestInsertThenExists() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, "acct-bob", "acct-alice"))

	exists, err := s.store.Exists(ctx, "acct-bob", "acct-alice")
	s.Require().NoError(err)
	s.True(exists)

	// directional key
	exists, err = s.store.Exists(ctx, "acct-alice", "acct-bob")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *PostgresStoreSuite) TestDuplicateInsertIsConflict() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, "acct-bob", "acct-alice"))

	err := s.store.Insert(ctx, "acct-bob", "acct-alice")
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}
