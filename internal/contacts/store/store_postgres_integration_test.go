//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"contactvault/internal/contacts/store"
	"contactvault/pkg/platform/sentinel"
	"contactvault/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.postgres.Exec(s.T(), `
		CREATE TABLE contacts (
		    user_id    TEXT        NOT NULL,
		    contact_id TEXT        NOT NULL,
		    cards      JSONB       NOT NULL,
		    created_at TIMESTAMPTZ NOT NULL,
		    updated_at TIMESTAMPTZ NOT NULL,
		    PRIMARY KEY (user_id, contact_id)
		)`)
	// Each save gets a strictly increasing timestamp so insertion order is
	// deterministic regardless of timer resolution.
	base := time.Now()
	var ticks int64
	s.store = store.NewPostgresStore(s.postgres.Pool, store.WithClock(func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Millisecond)
	}))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	s.postgres.Pool.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.postgres.Exec(s.T(), "TRUNCATE contacts")
}

func (s *PostgresStoreSuite) TestSaveAndGet() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, "user-1", makeContact("c1"), false))

	got, err := s.store.Get(ctx, "user-1", "c1")
	s.Require().NoError(err)
	s.Equal(makeContact("c1"), got)

	_, err = s.store.Get(ctx, "user-1", "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Get(ctx, "other-user", "c1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConflictWithoutOverwrite() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, "user-1", makeContact("c1"), false))

	err := s.store.Save(ctx, "user-1", makeContact("c1"), false)
	s.ErrorIs(err, sentinel.ErrConflict)

	updated := makeContact("c1")
	updated.Cards[0].Data = "FN:updated"
	s.Require().NoError(s.store.Save(ctx, "user-1", updated, true))

	got, err := s.store.Get(ctx, "user-1", "c1")
	s.Require().NoError(err)
	s.Equal("FN:updated", got.Cards[0].Data)
}

func (s *PostgresStoreSuite) TestListOrderedByInsertion() {
	ctx := context.Background()

	for _, id := range []string{"c3", "c1", "c2"} {
		s.Require().NoError(s.store.Save(ctx, "user-1", makeContact(id), false))
	}

	ids, err := s.store.ListIDs(ctx, "user-1")
	s.Require().NoError(err)
	s.Equal([]string{"c3", "c1", "c2"}, ids)
}

func (s *PostgresStoreSuite) TestDeleteAndClear() {
	ctx := context.Background()

	for _, id := range []string{"c1", "c2", "c3"} {
		s.Require().NoError(s.store.Save(ctx, "user-1", makeContact(id), false))
	}
	s.Require().NoError(s.store.Save(ctx, "user-2", makeContact("other"), false))

	s.Require().NoError(s.store.Delete(ctx, "user-1", []string{"c1", "c3", "missing"}))
	ids, err := s.store.ListIDs(ctx, "user-1")
	s.Require().NoError(err)
	s.Equal([]string{"c2"}, ids)

	s.Require().NoError(s.store.Clear(ctx, "user-1"))
	ids, err = s.store.ListIDs(ctx, "user-1")
	s.Require().NoError(err)
	s.Empty(ids)

	_, err = s.store.Get(ctx, "user-2", "other")
	s.NoError(err)
}
