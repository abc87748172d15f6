package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"attestry/internal/registry/models"
	"attestry/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = New()
}

func testIdentity() models.Identity {
	return models.Identity{
		Name:         []byte("Alice"),
		Email:        []byte("a@x.com"),
		DocumentHash: []byte("deadbeef"),
	}
}

func (s *MemoryStoreSuite) TestFindMissing() {
	_, err := s.store.Find(context.Background(), "acct-alice")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, "acct-alice", testIdentity()))

	got, err := s.store.Find(ctx, "acct-alice")
	s.Require().NoError(err)
	s.Equal(testIdentity(), got)
}

func (s *MemoryStoreSuite) TestSaveOverwritesWholesale() {
	ctx := context.Background()
	first := testIdentity()
	first.Revoked = true
	s.Require().NoError(s.store.Save(ctx, "acct-alice", first))

	replacement := models.Identity{Name: []byte("Alice B"), Email: []byte("b@x.com"), DocumentHash: []byte("cafe")}
	s.Require().NoError(s.store.Save(ctx, "acct-alice", replacement))

	got, err := s.store.Find(ctx, "acct-alice")
	s.Require().NoError(err)
	s.Equal(replacement, got)
	s.False(got.Revoked)
}

func (s *MemoryStoreSuite) TestMutateExisting() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, "acct-alice", testIdentity()))

	s.Require().NoError(s.store.Mutate(ctx, "acct-alice", func(identity *models.Identity) {
		identity.Revoked = true
	}))

	got, err := s.store.Find(ctx, "acct-alice")
	s.Require().NoError(err)
	s.True(got.Revoked)
	s.Equal([]byte("Alice"), got.Name)
}

func (s *MemoryStoreSuite) TestMutateMissingIsNoOp() {
	ctx := context.Background()
	called := false
	s.Require().NoError(s.store.Mutate(ctx, "acct-ghost", func(identity *models.Identity) {
		called = true
	}))
	s.False(called)

	_, err := s.store.Find(ctx, "acct-ghost")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
